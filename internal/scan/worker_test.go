package scan_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repostats/internal/execshell"
	"github.com/temirov/repostats/internal/scan"
)

type recordingAnalyzer struct {
	analysisError      error
	writtenContent     []byte
	recordingMutex     sync.Mutex
	recordedRepository string
	recordedOutput     string
}

func (analyzer *recordingAnalyzer) Analyze(_ context.Context, repositoryPath string, outputPath string) error {
	analyzer.recordingMutex.Lock()
	analyzer.recordedRepository = repositoryPath
	analyzer.recordedOutput = outputPath
	analyzer.recordingMutex.Unlock()
	if analyzer.analysisError != nil {
		return analyzer.analysisError
	}
	return os.WriteFile(outputPath, analyzer.writtenContent, testFilePermissionsConstant)
}

type recordingToolExecutor struct {
	executionError  error
	recordedTool    string
	recordedDetails execshell.CommandDetails
}

func (executor *recordingToolExecutor) ExecuteTool(_ context.Context, executablePath string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedTool = executablePath
	executor.recordedDetails = details
	return execshell.ExecutionResult{}, executor.executionError
}

func TestWorkerProcessCreatesParentDirectoriesAndBracketsAnalysis(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	outputPath := filepath.Join(temporaryDirectory, "reports", "root", "repoA.json")

	analyzer := &recordingAnalyzer{writtenContent: []byte("{}")}
	var progressBuffer bytes.Buffer
	workerContext := &scan.WorkerContext{Analyzer: analyzer, ProgressWriter: &progressBuffer}

	item := scan.WorkItem{MetadataDirectory: "/input/root/repoA/.git", OutputPath: outputPath}
	require.NoError(testInstance, workerContext.Process(context.Background(), item))

	require.Equal(testInstance, "/input/root/repoA", analyzer.recordedRepository)
	require.Equal(testInstance, outputPath, analyzer.recordedOutput)
	require.FileExists(testInstance, outputPath)

	progressOutput := progressBuffer.String()
	require.Contains(testInstance, progressOutput, "Processing: /input/root/repoA\n")
	require.Contains(testInstance, progressOutput, "Completed: /input/root/repoA\n")
}

func TestWorkerProcessOverwritesExistingReports(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	outputPath := filepath.Join(temporaryDirectory, "repoA.json")
	require.NoError(testInstance, os.WriteFile(outputPath, []byte("stale"), testFilePermissionsConstant))

	analyzer := &recordingAnalyzer{writtenContent: []byte("fresh")}
	workerContext := &scan.WorkerContext{Analyzer: analyzer}

	item := scan.WorkItem{MetadataDirectory: "/input/repoA/.git", OutputPath: outputPath}
	require.NoError(testInstance, workerContext.Process(context.Background(), item))

	writtenContent, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, []byte("fresh"), writtenContent)
}

func TestWorkerProcessReportsAnalysisFailures(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	outputPath := filepath.Join(temporaryDirectory, "repoA.json")

	analysisFailure := errors.New("tool crashed")
	analyzer := &recordingAnalyzer{analysisError: analysisFailure}
	var progressBuffer bytes.Buffer
	workerContext := &scan.WorkerContext{Analyzer: analyzer, ProgressWriter: &progressBuffer}

	item := scan.WorkItem{MetadataDirectory: "/input/repoA/.git", OutputPath: outputPath}
	processError := workerContext.Process(context.Background(), item)
	require.ErrorIs(testInstance, processError, analysisFailure)
	require.Contains(testInstance, progressBuffer.String(), "Failed: /input/repoA")
}

func TestWorkerProcessInvokesConfiguredExternalTool(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	outputPath := filepath.Join(temporaryDirectory, "reports", "repoA.json")

	toolExecutor := &recordingToolExecutor{}
	workerContext := &scan.WorkerContext{ToolPath: "/opt/analysis/log-stats", ToolExecutor: toolExecutor}

	item := scan.WorkItem{MetadataDirectory: "/input/repoA/.git", OutputPath: outputPath}
	require.NoError(testInstance, workerContext.Process(context.Background(), item))

	require.Equal(testInstance, "/opt/analysis/log-stats", toolExecutor.recordedTool)
	require.Equal(testInstance, []string{"/input/repoA", outputPath}, toolExecutor.recordedDetails.Arguments)
	require.DirExists(testInstance, filepath.Dir(outputPath))
}

func TestWorkerProcessRequiresAnalyzerWhenNoToolConfigured(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	workerContext := &scan.WorkerContext{}

	item := scan.WorkItem{MetadataDirectory: "/input/repoA/.git", OutputPath: filepath.Join(temporaryDirectory, "repoA.json")}
	processError := workerContext.Process(context.Background(), item)
	require.ErrorIs(testInstance, processError, scan.ErrAnalyzerNotConfigured)
}
