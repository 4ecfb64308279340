package logstats

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repostats/internal/execshell"
	pathutils "github.com/temirov/repostats/internal/utils/path"
)

const (
	commandUseConstant              = "log-stats REPO_DIR OUTPUT_FILE"
	commandShortDescriptionConstant = "Gather per-commit size statistics for one repository"
	commandLongDescriptionConstant  = "log-stats walks a repository's commit history and writes a JSON report mapping each commit to the size of its git objects and annexed files."
	commandArgumentCountConstant    = 2
	jobsFlagNameConstant            = "jobs"
	jobsFlagDescriptionConstant     = "Number of commits to process concurrently"
	reportSummaryTemplateConstant   = "Processed %d commits. Results saved to %s\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the log-stats command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           GitExecutor
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the log-stats command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ExactArgs(commandArgumentCountConstant),
		RunE:  builder.run,
	}

	command.Flags().Int(jobsFlagNameConstant, DefaultCommandConfiguration().Jobs, jobsFlagDescriptionConstant)

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

	homeExpander := pathutils.NewHomeExpander()
	repositoryPath := homeExpander.Expand(arguments[0])
	outputPath := homeExpander.Expand(arguments[1])

	logger := builder.resolveLogger()
	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}

	service, serviceCreationError := NewService(Dependencies{
		GitExecutor: gitExecutor,
		Logger:      logger,
		JobCount:    jobCount,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	report, collectError := service.CollectStatistics(command.Context(), repositoryPath)
	if collectError != nil {
		return collectError
	}

	if writeError := WriteReportFile(outputPath, report); writeError != nil {
		return writeError
	}

	fmt.Fprintf(command.OutOrStdout(), reportSummaryTemplateConstant, len(report), outputPath)
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

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}
