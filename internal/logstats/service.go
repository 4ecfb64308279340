package logstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/repostats/internal/execshell"
)

const (
	defaultCommitWorkerCountConstant = 5

	gitLogSubcommandConstant              = "log"
	gitLogFormatFlagConstant              = "--format=%H %ct"
	gitLSTreeSubcommandConstant           = "ls-tree"
	gitLSTreeRecursiveFlagConstant        = "-r"
	gitLSTreeLongFlagConstant             = "-l"
	gitShowRefSubcommandConstant          = "show-ref"
	gitShowRefVerifyFlagConstant          = "--verify"
	gitShowRefQuietFlagConstant           = "--quiet"
	gitAnnexBranchReferenceConstant       = "refs/heads/git-annex"
	gitForEachRefSubcommandConstant       = "for-each-ref"
	gitForEachRefFormatFlagConstant       = "--format=%(refname)"
	gitRemoteReferencePrefixConstant      = "refs/remotes"
	gitAnnexRemoteReferenceSuffixConstant = "/git-annex"
	gitAnnexSubcommandConstant            = "annex"
	gitAnnexInfoSubcommandConstant        = "info"
	gitAnnexBytesFlagConstant             = "--bytes"
	gitAnnexJSONFlagConstant              = "--json"
	annexTreeSizeFieldNameConstant        = "size of annexed files in tree"

	blobObjectTypeConstant    = "blob"
	symlinkObjectModeConstant = "120000"
	lineSeparatorConstant     = "\n"
	tabSeparatorConstant      = "\t"

	gitExecutorMissingMessageConstant  = "git executor not configured"
	commitListingErrorTemplateConstant = "unable to list commits in %s: %w"
	treeSizeErrorTemplateConstant      = "unable to measure tree of commit %s: %w"

	annexDetectedMessageConstant     = "git-annex branch detected; annex sizes will be calculated"
	annexNotDetectedMessageConstant  = "no git-annex branch found; only git object sizes will be calculated"
	annexSizeFailureMessageConstant  = "unable to retrieve annex size; recording zero"
	commitsDiscoveredMessageConstant = "commits discovered"
	logFieldRepositoryConstant       = "repository"
	logFieldCommitConstant           = "commit"
	logFieldCommitCountConstant      = "commit_count"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor runs git commands on behalf of the analyzer.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies enumerates external collaborators required by the analyzer.
type Dependencies struct {
	GitExecutor GitExecutor
	Logger      *zap.Logger
	JobCount    int
}

// Service gathers per-commit size statistics for git repositories.
type Service struct {
	executor GitExecutor
	logger   *zap.Logger
	jobCount int
}

type commitRecord struct {
	hash      string
	timestamp time.Time
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	jobCount := dependencies.JobCount
	if jobCount < 1 {
		jobCount = defaultCommitWorkerCountConstant
	}

	return &Service{executor: dependencies.GitExecutor, logger: logger, jobCount: jobCount}, nil
}

// Analyze collects statistics for every commit reachable from HEAD and writes the JSON report.
func (service *Service) Analyze(executionContext context.Context, repositoryPath string, outputPath string) error {
	report, collectError := service.CollectStatistics(executionContext, repositoryPath)
	if collectError != nil {
		return collectError
	}
	return WriteReportFile(outputPath, report)
}

// CollectStatistics walks the commit history and gathers size data for each commit.
func (service *Service) CollectStatistics(executionContext context.Context, repositoryPath string) (Report, error) {
	annexAvailable := service.repositoryUsesAnnex(executionContext, repositoryPath)
	if annexAvailable {
		service.logger.Info(annexDetectedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	} else {
		service.logger.Info(annexNotDetectedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	}

	commits, listError := service.listCommits(executionContext, repositoryPath)
	if listError != nil {
		return nil, listError
	}

	service.logger.Info(
		commitsDiscoveredMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.Int(logFieldCommitCountConstant, len(commits)),
	)

	report := make(Report, len(commits))
	var reportMutex sync.Mutex

	commitGroup, groupContext := errgroup.WithContext(executionContext)
	commitGroup.SetLimit(service.jobCount)

	for _, commit := range commits {
		processedCommit := commit
		commitGroup.Go(func() error {
			gitSize, treeError := service.commitTreeSize(groupContext, repositoryPath, processedCommit.hash)
			if treeError != nil {
				return treeError
			}

			var annexSize int64
			if annexAvailable {
				annexSize = service.commitAnnexSize(groupContext, repositoryPath, processedCommit.hash)
			}

			reportMutex.Lock()
			report[processedCommit.hash] = CommitStatistics{
				Timestamp: processedCommit.timestamp.Format(time.RFC3339),
				GitSize:   gitSize,
				AnnexSize: annexSize,
				TotalSize: gitSize + annexSize,
			}
			reportMutex.Unlock()

			return nil
		})
	}

	if waitError := commitGroup.Wait(); waitError != nil {
		return nil, waitError
	}

	return report, nil
}

// repositoryUsesAnnex reports whether a git-annex branch exists locally or on any remote.
func (service *Service) repositoryUsesAnnex(executionContext context.Context, repositoryPath string) bool {
	_, localError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitShowRefSubcommandConstant, gitShowRefVerifyFlagConstant, gitShowRefQuietFlagConstant, gitAnnexBranchReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if localError == nil {
		return true
	}

	remoteResult, remoteError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitForEachRefSubcommandConstant, gitForEachRefFormatFlagConstant, gitRemoteReferencePrefixConstant},
		WorkingDirectory: repositoryPath,
	})
	if remoteError != nil {
		return false
	}

	for _, referenceName := range strings.Split(strings.TrimSpace(remoteResult.StandardOutput), lineSeparatorConstant) {
		if strings.HasSuffix(strings.TrimSpace(referenceName), gitAnnexRemoteReferenceSuffixConstant) {
			return true
		}
	}
	return false
}

// listCommits enumerates every commit reachable from HEAD with its committer timestamp.
func (service *Service) listCommits(executionContext context.Context, repositoryPath string) ([]commitRecord, error) {
	logResult, logError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitLogFormatFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if logError != nil {
		return nil, fmt.Errorf(commitListingErrorTemplateConstant, repositoryPath, logError)
	}

	var commits []commitRecord
	for _, line := range strings.Split(logResult.StandardOutput, lineSeparatorConstant) {
		lineFields := strings.Fields(line)
		if len(lineFields) != 2 {
			continue
		}

		committedEpoch, epochError := strconv.ParseInt(lineFields[1], 10, 64)
		if epochError != nil {
			continue
		}

		commits = append(commits, commitRecord{
			hash:      lineFields[0],
			timestamp: time.Unix(committedEpoch, 0).UTC(),
		})
	}

	return commits, nil
}

// commitTreeSize sums the sizes of all blobs in the commit's tree, excluding symlinks.
func (service *Service) commitTreeSize(executionContext context.Context, repositoryPath string, commitHash string) (int64, error) {
	treeResult, treeError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLSTreeSubcommandConstant, gitLSTreeRecursiveFlagConstant, gitLSTreeLongFlagConstant, commitHash},
		WorkingDirectory: repositoryPath,
	})
	if treeError != nil {
		return 0, fmt.Errorf(treeSizeErrorTemplateConstant, commitHash, treeError)
	}

	var totalSize int64
	for _, line := range strings.Split(treeResult.StandardOutput, lineSeparatorConstant) {
		metadataColumns := strings.Fields(strings.SplitN(line, tabSeparatorConstant, 2)[0])
		if len(metadataColumns) != 4 {
			continue
		}
		if metadataColumns[1] != blobObjectTypeConstant {
			continue
		}
		if metadataColumns[0] == symlinkObjectModeConstant {
			continue
		}

		blobSize, sizeError := strconv.ParseInt(metadataColumns[3], 10, 64)
		if sizeError != nil {
			continue
		}
		totalSize += blobSize
	}

	return totalSize, nil
}

// commitAnnexSize returns the size of annexed files in the commit's tree, degrading to zero on failure.
func (service *Service) commitAnnexSize(executionContext context.Context, repositoryPath string, commitHash string) int64 {
	annexResult, annexError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitAnnexSubcommandConstant, gitAnnexInfoSubcommandConstant, gitAnnexBytesFlagConstant, gitAnnexJSONFlagConstant, commitHash},
		WorkingDirectory: repositoryPath,
	})
	if annexError != nil {
		service.logger.Debug(
			annexSizeFailureMessageConstant,
			zap.String(logFieldCommitConstant, commitHash),
			zap.Error(annexError),
		)
		return 0
	}

	var annexInformation map[string]any
	if unmarshalError := json.Unmarshal([]byte(annexResult.StandardOutput), &annexInformation); unmarshalError != nil {
		service.logger.Debug(
			annexSizeFailureMessageConstant,
			zap.String(logFieldCommitConstant, commitHash),
			zap.Error(unmarshalError),
		)
		return 0
	}

	// The field may read "819104023 (+ 7 unknown size)"; only the leading
	// token is the byte count.
	switch fieldValue := annexInformation[annexTreeSizeFieldNameConstant].(type) {
	case string:
		valueTokens := strings.Fields(fieldValue)
		if len(valueTokens) == 0 {
			return 0
		}
		parsedSize, parseError := strconv.ParseInt(valueTokens[0], 10, 64)
		if parseError != nil {
			return 0
		}
		return parsedSize
	case float64:
		return int64(fieldValue)
	default:
		return 0
	}
}
