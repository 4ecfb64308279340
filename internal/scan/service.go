package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	inputRootRequiredMessageConstant       = "input directory must be provided"
	outputRootRequiredMessageConstant      = "output directory must be provided"
	discovererNotConfiguredMessageConstant = "repository discoverer not configured"
	analysisToolMissingTemplateConstant    = "analysis tool not found at %s: %w"
	outputRootCreationTemplateConstant     = "unable to create output directory %s: %w"
	discoveryFailureTemplateConstant       = "repository discovery failed: %w"
	discoveredRepositoriesMessageConstant  = "discovered repositories"
	dispatchCompletedMessageConstant       = "dispatch completed"
	logFieldInputRootConstant              = "input_root"
	logFieldOutputRootConstant             = "output_root"
	logFieldRepositoryCountConstant        = "repository_count"
	logFieldJobCountConstant               = "job_count"
	logFieldFailureCountConstant           = "failure_count"
)

// ErrInputRootRequired indicates the input directory option was empty.
var ErrInputRootRequired = errors.New(inputRootRequiredMessageConstant)

// ErrOutputRootRequired indicates the output directory option was empty.
var ErrOutputRootRequired = errors.New(outputRootRequiredMessageConstant)

// ErrDiscovererNotConfigured indicates the discoverer dependency was missing.
var ErrDiscovererNotConfigured = errors.New(discovererNotConfiguredMessageConstant)

// Dependencies enumerates the collaborators required by the scan service.
type Dependencies struct {
	Discoverer MetadataDirectoryDiscoverer
	Logger     *zap.Logger
}

// Options configures one scan run.
type Options struct {
	InputRoot  string
	OutputRoot string
	JobCount   int
	ToolPath   string
}

// Summary reports the observable outcome of a scan run.
type Summary struct {
	Discovered int
	Processed  int
	Failed     int
}

// Service orchestrates preflight checks, discovery, path mapping, and dispatch.
type Service struct {
	discoverer MetadataDirectoryDiscoverer
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{discoverer: dependencies.Discoverer, logger: logger}, nil
}

// Run scans the input root and dispatches one analysis per discovered repository.
//
// The output root is created before dispatch regardless of whether any
// repositories are found. When a tool path is configured its existence is
// verified first; a missing tool aborts the run before any per-repository
// output directory is created.
func (service *Service) Run(executionContext context.Context, options Options, workerContext *WorkerContext) (Summary, error) {
	trimmedInputRoot := strings.TrimSpace(options.InputRoot)
	if len(trimmedInputRoot) == 0 {
		return Summary{}, ErrInputRootRequired
	}

	trimmedOutputRoot := strings.TrimSpace(options.OutputRoot)
	if len(trimmedOutputRoot) == 0 {
		return Summary{}, ErrOutputRootRequired
	}

	if len(options.ToolPath) > 0 {
		if _, statError := os.Stat(options.ToolPath); statError != nil {
			return Summary{}, fmt.Errorf(analysisToolMissingTemplateConstant, options.ToolPath, statError)
		}
	}

	if creationError := os.MkdirAll(trimmedOutputRoot, outputDirectoryPermissionsConstant); creationError != nil {
		return Summary{}, fmt.Errorf(outputRootCreationTemplateConstant, trimmedOutputRoot, creationError)
	}

	metadataDirectories, discoveryError := service.discoverer.DiscoverMetadataDirectories(trimmedInputRoot)
	if discoveryError != nil {
		return Summary{}, fmt.Errorf(discoveryFailureTemplateConstant, discoveryError)
	}

	service.logger.Info(
		discoveredRepositoriesMessageConstant,
		zap.String(logFieldInputRootConstant, trimmedInputRoot),
		zap.String(logFieldOutputRootConstant, trimmedOutputRoot),
		zap.Int(logFieldRepositoryCountConstant, len(metadataDirectories)),
	)

	pathMapper := NewOutputPathMapper(trimmedInputRoot, trimmedOutputRoot)
	workItems := make([]WorkItem, 0, len(metadataDirectories))
	for _, metadataDirectory := range metadataDirectories {
		workItems = append(workItems, WorkItem{
			MetadataDirectory: metadataDirectory,
			OutputPath:        pathMapper.MapToOutputPath(metadataDirectory),
		})
	}

	dispatcher, dispatcherError := NewDispatcher(options.JobCount, workerContext.Process)
	if dispatcherError != nil {
		return Summary{}, dispatcherError
	}

	dispatchSummary, dispatchError := dispatcher.Dispatch(executionContext, workItems)
	if dispatchError != nil {
		return Summary{}, dispatchError
	}

	service.logger.Info(
		dispatchCompletedMessageConstant,
		zap.Int(logFieldJobCountConstant, options.JobCount),
		zap.Int(logFieldRepositoryCountConstant, dispatchSummary.Processed),
		zap.Int(logFieldFailureCountConstant, dispatchSummary.Failed),
	)

	return Summary{
		Discovered: len(metadataDirectories),
		Processed:  dispatchSummary.Processed,
		Failed:     dispatchSummary.Failed,
	}, nil
}
