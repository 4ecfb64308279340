package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	expectedDefaultJobCountConstant  = 5
)

type readmeApplicationConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Tools struct {
		Scan struct {
			Jobs int    `yaml:"jobs"`
			Tool string `yaml:"tool"`
		} `yaml:"scan"`
		LogStats struct {
			Jobs int `yaml:"jobs"`
		} `yaml:"log_stats"`
	} `yaml:"tools"`
}

func TestReadmeConfigurationSnippetParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	var parsedConfiguration readmeApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &parsedConfiguration))

	require.Equal(testInstance, "info", parsedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", parsedConfiguration.Common.LogFormat)
	require.Equal(testInstance, expectedDefaultJobCountConstant, parsedConfiguration.Tools.Scan.Jobs)
	require.Equal(testInstance, expectedDefaultJobCountConstant, parsedConfiguration.Tools.LogStats.Jobs)
	require.Empty(testInstance, parsedConfiguration.Tools.Scan.Tool)
}
