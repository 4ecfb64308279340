package scan

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repostats/internal/execshell"
	"github.com/temirov/repostats/internal/logstats"
	"github.com/temirov/repostats/internal/utils"
	pathutils "github.com/temirov/repostats/internal/utils/path"
)

const (
	commandUseConstant              = "scan INPUT_DIR OUTPUT_DIR"
	commandShortDescriptionConstant = "Analyze every repository under a directory tree"
	commandLongDescriptionConstant  = "scan discovers git repositories beneath INPUT_DIR and writes one JSON size report per repository under OUTPUT_DIR, mirroring the input tree, with a bounded number of concurrent workers."
	commandArgumentCountConstant    = 2
	jobsFlagNameConstant            = "jobs"
	jobsFlagDescriptionConstant     = "Number of repositories to analyze concurrently"
	toolFlagNameConstant            = "tool"
	toolFlagDescriptionConstant     = "Path to an external analysis executable invoked as <tool> REPO_DIR OUTPUT_FILE (built-in analyzer when unset)"
	successBannerConstant           = "All repositories processed successfully!\n"
	failureSummaryTemplateConstant  = "%d of %d repositories failed\n"
	failureSummaryErrorTemplate     = "%d of %d repositories failed"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the scan command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Discoverer            MetadataDirectoryDiscoverer
	ToolExecutor          ToolExecutor
	Analyzer              RepositoryAnalyzer
}

// Build constructs the scan command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ExactArgs(commandArgumentCountConstant),
		RunE:  builder.run,
	}

	command.Flags().Int(jobsFlagNameConstant, DefaultCommandConfiguration().Jobs, jobsFlagDescriptionConstant)
	command.Flags().String(toolFlagNameConstant, DefaultCommandConfiguration().Tool, toolFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	jobCount := configuration.Jobs
	if command.Flags().Changed(jobsFlagNameConstant) {
		flagJobCount, jobsFlagError := command.Flags().GetInt(jobsFlagNameConstant)
		if jobsFlagError != nil {
			return jobsFlagError
		}
		jobCount = flagJobCount
	}

	toolPath := configuration.Tool
	if command.Flags().Changed(toolFlagNameConstant) {
		flagToolPath, toolFlagError := command.Flags().GetString(toolFlagNameConstant)
		if toolFlagError != nil {
			return toolFlagError
		}
		toolPath = flagToolPath
	}

	homeExpander := pathutils.NewHomeExpander()
	inputRoot := homeExpander.Expand(arguments[0])
	outputRoot := homeExpander.Expand(arguments[1])

	logger := builder.resolveLogger()

	toolExecutor, analyzer, dependencyError := builder.resolveWorkerDependencies(logger)
	if dependencyError != nil {
		return dependencyError
	}

	workerContext := &WorkerContext{
		ToolPath:       toolPath,
		ToolExecutor:   toolExecutor,
		Analyzer:       analyzer,
		ProgressWriter: utils.NewFlushingWriter(command.OutOrStdout()),
	}

	service, serviceCreationError := NewService(Dependencies{
		Discoverer: builder.resolveDiscoverer(),
		Logger:     logger,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	summary, runError := service.Run(command.Context(), Options{
		InputRoot:  inputRoot,
		OutputRoot: outputRoot,
		JobCount:   jobCount,
		ToolPath:   toolPath,
	}, workerContext)
	if runError != nil {
		return runError
	}

	if summary.Failed > 0 {
		fmt.Fprintf(command.OutOrStdout(), failureSummaryTemplateConstant, summary.Failed, summary.Processed)
		return fmt.Errorf(failureSummaryErrorTemplate, summary.Failed, summary.Processed)
	}

	fmt.Fprint(command.OutOrStdout(), successBannerConstant)
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveDiscoverer() MetadataDirectoryDiscoverer {
	if builder.Discoverer != nil {
		return builder.Discoverer
	}
	return NewFilesystemDiscoverer()
}

func (builder *CommandBuilder) resolveWorkerDependencies(logger *zap.Logger) (ToolExecutor, RepositoryAnalyzer, error) {
	toolExecutor := builder.ToolExecutor
	analyzer := builder.Analyzer

	var shellExecutor *execshell.ShellExecutor
	if toolExecutor == nil || analyzer == nil {
		createdExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, nil, executorError
		}
		shellExecutor = createdExecutor
	}

	if toolExecutor == nil {
		toolExecutor = shellExecutor
	}

	if analyzer == nil {
		analysisService, analyzerError := logstats.NewService(logstats.Dependencies{
			GitExecutor: shellExecutor,
			Logger:      logger,
		})
		if analyzerError != nil {
			return nil, nil, analyzerError
		}
		analyzer = analysisService
	}

	return toolExecutor, analyzer, nil
}
