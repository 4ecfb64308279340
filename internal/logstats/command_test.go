package logstats_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repostats/internal/logstats"
)

func buildLogStatsCommand(testInstance *testing.T, executor *scriptedGitExecutor) (*cobra.Command, *bytes.Buffer) {
	testInstance.Helper()

	builder := logstats.CommandBuilder{GitExecutor: executor}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetContext(context.Background())

	return command, &outputBuffer
}

func TestLogStatsCommandWritesReportAndSummary(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	outputPath := filepath.Join(temporaryDirectory, "project.json")

	command, outputBuffer := buildLogStatsCommand(testInstance, annexFreeExecutor())
	command.SetArgs([]string{testRepositoryPathConstant, outputPath})
	require.NoError(testInstance, command.Execute())

	require.FileExists(testInstance, outputPath)
	require.Contains(testInstance, outputBuffer.String(), fmt.Sprintf("Processed 2 commits. Results saved to %s", outputPath))
}

func TestLogStatsCommandRejectsMissingArguments(testInstance *testing.T) {
	command, _ := buildLogStatsCommand(testInstance, annexFreeExecutor())
	command.SetArgs([]string{testRepositoryPathConstant})
	require.Error(testInstance, command.Execute())
}

func TestLogStatsCommandSurfacesCollectionFailures(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	outputPath := filepath.Join(temporaryDirectory, "project.json")

	executor := annexFreeExecutor()
	executor.failures["log --format=%H %ct"] = struct{}{}

	command, _ := buildLogStatsCommand(testInstance, executor)
	command.SetArgs([]string{testRepositoryPathConstant, outputPath})

	require.ErrorIs(testInstance, command.Execute(), errScriptedCommandFailure)
	require.NoFileExists(testInstance, outputPath)
}
