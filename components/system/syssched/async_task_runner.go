package syssched

import (
	"context"
	"sync"
	"time"

	"github.com/open-control-systems/netwatch/components/status"
)

// AsyncTaskRunnerParams represents various options for AsyncTaskRunner.
type AsyncTaskRunnerParams struct {
	// UpdateInterval - how often to run the task.
	UpdateInterval time.Duration

	// RunOnStart - run the task immediately, without waiting for the first interval.
	RunOnStart bool
}

// AsyncTaskRunner periodically runs task in the standalone goroutine.
//
// Remarks:
//   - Task runs never overlap. If a run takes longer than UpdateInterval, the missed
//     ticks are dropped, not queued.
type AsyncTaskRunner struct {
	ctx     context.Context
	cancel  context.CancelFunc
	doneCh  chan struct{}
	task    Task
	handler ErrorHandler
	params  AsyncTaskRunnerParams

	mu      sync.Mutex
	started bool
}

// NewAsyncTaskRunner is an initialization of AsyncTaskRunner.
//
// Parameters:
//   - ctx - parent context, the runner exits when it's cancelled.
//   - task to run periodically.
//   - handler to handle task errors, can be nil.
//   - params - various runner options.
func NewAsyncTaskRunner(
	ctx context.Context,
	task Task,
	handler ErrorHandler,
	params AsyncTaskRunnerParams,
) *AsyncTaskRunner {
	ctx, cancel := context.WithCancel(ctx)

	return &AsyncTaskRunner{
		ctx:     ctx,
		cancel:  cancel,
		doneCh:  make(chan struct{}),
		task:    task,
		handler: handler,
		params:  params,
	}
}

// Start begins asynchronous task processing.
func (r *AsyncTaskRunner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return status.StatusInvalidState
	}

	if r.params.UpdateInterval <= 0 {
		return status.StatusInvalidArg
	}

	r.started = true

	go r.run()

	return nil
}

// Stop ends asynchronous task processing and waits for the running task to complete.
func (r *AsyncTaskRunner) Stop() error {
	r.cancel()

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()

	if started {
		<-r.doneCh
	}

	return nil
}

// Done is closed when the runner goroutine exits.
//
// Remarks:
//   - Never closed if the runner wasn't started.
func (r *AsyncTaskRunner) Done() <-chan struct{} {
	return r.doneCh
}

func (r *AsyncTaskRunner) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.params.UpdateInterval)
	defer ticker.Stop()

	if r.params.RunOnStart {
		r.runTask(ticker)
	}

	for {
		select {
		case <-ticker.C:
			r.runTask(ticker)

		case <-r.ctx.Done():
			return
		}
	}
}

func (r *AsyncTaskRunner) runTask(ticker *time.Ticker) {
	if r.ctx.Err() != nil {
		return
	}

	if err := r.task.Run(); err != nil {
		if r.handler != nil {
			r.handler.HandleError(err)
		}
	}

	// Drop the tick that fired while the task was running.
	select {
	case <-ticker.C:
	default:
	}
}
