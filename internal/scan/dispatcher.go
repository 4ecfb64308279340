package scan

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	taskNotConfiguredMessageConstant = "dispatch task not configured"
	invalidJobCountMessageConstant   = "job count must be a positive integer"
)

// ErrTaskNotConfigured indicates the dispatcher was constructed without a task function.
var ErrTaskNotConfigured = errors.New(taskNotConfiguredMessageConstant)

// ErrInvalidJobCount indicates the requested worker count was not positive.
var ErrInvalidJobCount = errors.New(invalidJobCountMessageConstant)

// WorkItem pairs a discovered metadata directory with its target report path.
type WorkItem struct {
	MetadataDirectory string
	OutputPath        string
}

// RepositoryPath returns the repository working tree containing the metadata directory.
func (item WorkItem) RepositoryPath() string {
	return filepath.Dir(item.MetadataDirectory)
}

// TaskFunction processes a single work item.
type TaskFunction func(executionContext context.Context, item WorkItem) error

// DispatchSummary reports the aggregate outcome of a dispatch run.
type DispatchSummary struct {
	Processed int
	Failed    int
}

// Dispatcher fans work items out across a bounded pool of concurrent workers.
type Dispatcher struct {
	jobCount int
	task     TaskFunction
}

// NewDispatcher constructs a dispatcher running at most jobCount tasks concurrently.
func NewDispatcher(jobCount int, task TaskFunction) (*Dispatcher, error) {
	if task == nil {
		return nil, ErrTaskNotConfigured
	}
	if jobCount < 1 {
		return nil, ErrInvalidJobCount
	}
	return &Dispatcher{jobCount: jobCount, task: task}, nil
}

// Dispatch runs the task for every work item and reports how many failed.
// Individual task failures do not cancel the remaining items; only a context
// cancellation stops the run early.
func (dispatcher *Dispatcher) Dispatch(executionContext context.Context, items []WorkItem) (DispatchSummary, error) {
	workerGroup, groupContext := errgroup.WithContext(executionContext)
	workerGroup.SetLimit(dispatcher.jobCount)

	var failureCount atomic.Int64
	for _, item := range items {
		dispatchedItem := item
		workerGroup.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			if taskError := dispatcher.task(groupContext, dispatchedItem); taskError != nil {
				failureCount.Add(1)
			}
			return nil
		})
	}

	if waitError := workerGroup.Wait(); waitError != nil {
		return DispatchSummary{}, waitError
	}

	return DispatchSummary{
		Processed: len(items),
		Failed:    int(failureCount.Load()),
	}, nil
}
