package logstats

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	reportIndentConstant               = "    "
	reportFilePermissionsConstant      = 0o644
	reportMarshalErrorTemplateConstant = "unable to encode report: %w"
	reportWriteErrorTemplateConstant   = "unable to write report to %s: %w"
)

// CommitStatistics records the size information gathered for one commit.
type CommitStatistics struct {
	Timestamp string `json:"timestamp"`
	GitSize   int64  `json:"git_size"`
	AnnexSize int64  `json:"annex_size"`
	TotalSize int64  `json:"total_size"`
}

// Report maps commit hashes to their gathered statistics.
type Report map[string]CommitStatistics

// WriteReportFile serializes the report as indented JSON, overwriting any existing file.
func WriteReportFile(outputPath string, report Report) error {
	encodedReport, marshalError := json.MarshalIndent(report, "", reportIndentConstant)
	if marshalError != nil {
		return fmt.Errorf(reportMarshalErrorTemplateConstant, marshalError)
	}

	if writeError := os.WriteFile(outputPath, encodedReport, reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, outputPath, writeError)
	}

	return nil
}
