package syssched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/netwatch/components/status"
)

type testAsyncTaskRunnerTask struct {
	mu        sync.Mutex
	err       error
	delay     time.Duration
	callCount int
	running   int
	overlaps  int
}

func (t *testAsyncTaskRunnerTask) Run() error {
	t.mu.Lock()
	t.callCount++
	t.running++
	if t.running > 1 {
		t.overlaps++
	}
	delay := t.delay
	err := t.err
	t.mu.Unlock()

	time.Sleep(delay)

	t.mu.Lock()
	t.running--
	t.mu.Unlock()

	return err
}

func (t *testAsyncTaskRunnerTask) getCallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.callCount
}

func (t *testAsyncTaskRunnerTask) getOverlaps() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.overlaps
}

type testAsyncTaskRunnerErrorHandler struct {
	mu   sync.Mutex
	errs []error
}

func (h *testAsyncTaskRunnerErrorHandler) HandleError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.errs = append(h.errs, err)
}

func (h *testAsyncTaskRunnerErrorHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.errs)
}

func TestAsyncTaskRunnerRunOnStart(t *testing.T) {
	task := &testAsyncTaskRunnerTask{}

	runner := NewAsyncTaskRunner(context.Background(), task, nil, AsyncTaskRunnerParams{
		UpdateInterval: time.Hour,
		RunOnStart:     true,
	})
	require.Nil(t, runner.Start())

	for task.getCallCount() < 1 {
		time.Sleep(time.Millisecond * 10)
	}

	require.Nil(t, runner.Stop())
	require.Equal(t, 1, task.getCallCount())
}

func TestAsyncTaskRunnerHandleError(t *testing.T) {
	task := &testAsyncTaskRunnerTask{
		err: status.StatusError,
	}
	handler := &testAsyncTaskRunnerErrorHandler{}

	runner := NewAsyncTaskRunner(context.Background(), task, handler, AsyncTaskRunnerParams{
		UpdateInterval: time.Millisecond * 20,
	})
	require.Nil(t, runner.Start())

	for handler.count() < 2 {
		time.Sleep(time.Millisecond * 10)
	}

	require.Nil(t, runner.Stop())

	handler.mu.Lock()
	defer handler.mu.Unlock()

	for _, err := range handler.errs {
		require.True(t, errors.Is(err, status.StatusError))
	}
}

func TestAsyncTaskRunnerNoOverlap(t *testing.T) {
	task := &testAsyncTaskRunnerTask{
		delay: time.Millisecond * 50,
	}

	runner := NewAsyncTaskRunner(context.Background(), task, nil, AsyncTaskRunnerParams{
		UpdateInterval: time.Millisecond * 10,
	})
	require.Nil(t, runner.Start())

	time.Sleep(time.Millisecond * 300)

	require.Nil(t, runner.Stop())
	require.Equal(t, 0, task.getOverlaps())

	// Each run takes 5 intervals, missed ticks must be dropped.
	require.Less(t, task.getCallCount(), 10)
}

func TestAsyncTaskRunnerStartTwice(t *testing.T) {
	runner := NewAsyncTaskRunner(
		context.Background(),
		&testAsyncTaskRunnerTask{},
		nil,
		AsyncTaskRunnerParams{UpdateInterval: time.Hour},
	)

	require.Nil(t, runner.Start())
	require.Equal(t, status.StatusInvalidState, runner.Start())
	require.Nil(t, runner.Stop())
}

func TestAsyncTaskRunnerInvalidInterval(t *testing.T) {
	runner := NewAsyncTaskRunner(
		context.Background(),
		&testAsyncTaskRunnerTask{},
		nil,
		AsyncTaskRunnerParams{},
	)

	require.Equal(t, status.StatusInvalidArg, runner.Start())
	require.Nil(t, runner.Stop())
}

func TestAsyncTaskRunnerStopNoStart(t *testing.T) {
	runner := NewAsyncTaskRunner(
		context.Background(),
		&testAsyncTaskRunnerTask{},
		nil,
		AsyncTaskRunnerParams{UpdateInterval: time.Hour},
	)

	require.Nil(t, runner.Stop())
}

func TestAsyncTaskRunnerParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	runner := NewAsyncTaskRunner(ctx, &testAsyncTaskRunnerTask{}, nil, AsyncTaskRunnerParams{
		UpdateInterval: time.Hour,
	})
	require.Nil(t, runner.Start())

	cancel()

	select {
	case <-runner.Done():
	case <-time.After(time.Second * 5):
		require.Fail(t, "runner didn't exit on context cancel")
	}
}
