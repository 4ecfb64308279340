package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/temirov/repostats/internal/execshell"
)

const (
	outputDirectoryPermissionsConstant       = 0o755
	processingLineTemplateConstant           = "Processing: %s\n"
	completedLineTemplateConstant            = "Completed: %s\n"
	failedLineTemplateConstant               = "Failed: %s (%v)\n"
	analyzerNotConfiguredMessageConstant     = "repository analyzer not configured"
	toolExecutorNotConfiguredMessageConstant = "tool executor not configured"
	outputDirectoryErrorTemplateConstant     = "unable to create output directory for %s: %w"
)

// ErrAnalyzerNotConfigured indicates no built-in analyzer was supplied for in-process analysis.
var ErrAnalyzerNotConfigured = errors.New(analyzerNotConfiguredMessageConstant)

// ErrToolExecutorNotConfigured indicates no executor was supplied for external tool invocation.
var ErrToolExecutorNotConfigured = errors.New(toolExecutorNotConfiguredMessageConstant)

// RepositoryAnalyzer produces a report file for a single repository.
type RepositoryAnalyzer interface {
	Analyze(executionContext context.Context, repositoryPath string, outputPath string) error
}

// ToolExecutor runs a configured external analysis executable.
type ToolExecutor interface {
	ExecuteTool(executionContext context.Context, executablePath string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// WorkerContext carries the collaborators each worker invocation needs.
// The analysis tool path travels as an explicit field rather than ambient
// process state, so the routine can be exercised directly in tests.
type WorkerContext struct {
	ToolPath       string
	ToolExecutor   ToolExecutor
	Analyzer       RepositoryAnalyzer
	ProgressWriter io.Writer
}

// Process handles one work item: it ensures the report's parent directory
// exists, brackets the analysis with progress lines, and runs either the
// configured external tool or the built-in analyzer.
func (workerContext *WorkerContext) Process(executionContext context.Context, item WorkItem) error {
	repositoryPath := item.RepositoryPath()

	if directoryError := os.MkdirAll(filepath.Dir(item.OutputPath), outputDirectoryPermissionsConstant); directoryError != nil {
		workerContext.writeProgress(failedLineTemplateConstant, repositoryPath, directoryError)
		return fmt.Errorf(outputDirectoryErrorTemplateConstant, item.OutputPath, directoryError)
	}

	workerContext.writeProgress(processingLineTemplateConstant, repositoryPath)

	analysisError := workerContext.analyze(executionContext, repositoryPath, item.OutputPath)
	if analysisError != nil {
		workerContext.writeProgress(failedLineTemplateConstant, repositoryPath, analysisError)
		return analysisError
	}

	workerContext.writeProgress(completedLineTemplateConstant, repositoryPath)
	return nil
}

func (workerContext *WorkerContext) analyze(executionContext context.Context, repositoryPath string, outputPath string) error {
	if len(workerContext.ToolPath) > 0 {
		if workerContext.ToolExecutor == nil {
			return ErrToolExecutorNotConfigured
		}
		_, executionError := workerContext.ToolExecutor.ExecuteTool(executionContext, workerContext.ToolPath, execshell.CommandDetails{
			Arguments: []string{repositoryPath, outputPath},
		})
		return executionError
	}

	if workerContext.Analyzer == nil {
		return ErrAnalyzerNotConfigured
	}
	return workerContext.Analyzer.Analyze(executionContext, repositoryPath, outputPath)
}

func (workerContext *WorkerContext) writeProgress(template string, arguments ...any) {
	if workerContext.ProgressWriter == nil {
		return
	}
	fmt.Fprintf(workerContext.ProgressWriter, template, arguments...)
}
