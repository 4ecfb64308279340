package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	gitExecutableNameConstant                 = "git"
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	executableNameRequiredMessageConstant     = "executable name must be provided"
	commandStartedMessageConstant             = "external command started"
	commandCompletedMessageConstant           = "external command completed"
	commandFailedMessageConstant              = "external command failed"
	commandFailedErrorTemplateConstant        = "%s %s failed with exit code %d%s"
	commandExecutionErrorTemplateConstant     = "%s %s failed: %v"
	standardErrorSuffixTemplateConstant       = ": %s"
	commandArgumentsJoinSeparatorConstant     = " "
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	emptyStringConstant                       = ""
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// ErrExecutableNameRequired indicates a command was submitted without an executable name.
var ErrExecutableNameRequired = errors.New(executableNameRequiredMessageConstant)

// CommandName identifies the executable to invoke.
type CommandName string

// CommandGit names the git executable used throughout repostats.
const CommandGit CommandName = CommandName(gitExecutableNameConstant)

// CommandDetails describes a single invocation of an executable.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error renders the failure with the exit code and any captured standard error output.
func (failure CommandFailedError) Error() string {
	standardErrorSuffix := emptyStringConstant
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(
		commandFailedErrorTemplateConstant,
		failure.Command.Name,
		strings.Join(failure.Command.Details.Arguments, commandArgumentsJoinSeparatorConstant),
		failure.Result.ExitCode,
		standardErrorSuffix,
	)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error renders the underlying execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(
		commandExecutionErrorTemplateConstant,
		failure.Command.Name,
		strings.Join(failure.Command.Details.Arguments, commandArgumentsJoinSeparatorConstant),
		failure.Cause,
	)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor coordinates command execution with structured logging.
type ShellExecutor struct {
	logger *zap.Logger
	runner CommandRunner
}

// NewShellExecutor constructs a ShellExecutor from the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{logger: logger, runner: runner}, nil
}

// Execute runs the supplied command, logging its lifecycle and translating failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(string(command.Name))) == 0 {
		return ExecutionResult{}, ErrExecutableNameRequired
	}

	executor.logger.Debug(
		commandStartedMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)

	executionResult, executionError := executor.runner.Run(executionContext, command)
	if executionError != nil {
		executor.logger.Debug(
			commandFailedMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Error(executionError),
		)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: executionError}
	}

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(
			commandFailedMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		commandCompletedMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)

	return executionResult, nil
}

// ExecuteGit runs git with the provided invocation details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteTool runs an arbitrary executable, typically a configured analysis tool.
func (executor *ShellExecutor) ExecuteTool(executionContext context.Context, executablePath string, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandName(executablePath), Details: details})
}
