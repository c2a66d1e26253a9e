package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func startScheduler(t *testing.T, s *Scheduler) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestScheduler_RunsImmediately(t *testing.T) {
	runner := &mockScanRunner{report: domain.ScanReport{NewChunks: 4}}
	store := memory.NewSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(time.Hour), store, runner)

	startScheduler(t, s)

	assert.Eventually(t, func() bool { return runner.Calls() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())

	history, err := s.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, 4, history[0].ItemsProcessed)
	assert.Equal(t, domain.TaskIDDirectoryScan, history[0].TaskID)
	assert.NotEmpty(t, history[0].RunID)

	task, err := store.GetTask(context.Background(), domain.TaskIDDirectoryScan)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, time.Hour, task.Interval)
	assert.False(t, task.LastSuccess.IsZero())
}

func TestScheduler_Interval(t *testing.T) {
	runner := &mockScanRunner{}
	s := NewScheduler(domain.DefaultSchedulerConfig(20*time.Millisecond), memory.NewSchedulerStore(), runner)

	startScheduler(t, s)

	assert.Eventually(t, func() bool { return runner.Calls() >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestScheduler_Trigger(t *testing.T) {
	runner := &mockScanRunner{}
	s := NewScheduler(domain.DefaultSchedulerConfig(time.Hour), memory.NewSchedulerStore(), runner)

	startScheduler(t, s)
	require.Eventually(t, func() bool { return runner.Calls() == 1 }, 2*time.Second, 5*time.Millisecond)

	s.Trigger()

	assert.Eventually(t, func() bool { return runner.Calls() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestScheduler_TriggerCoalesces(t *testing.T) {
	s := NewScheduler(domain.DefaultSchedulerConfig(time.Hour), memory.NewSchedulerStore(), &mockScanRunner{})

	// Not started, so nothing drains the channel
	s.Trigger()
	s.Trigger()
	s.Trigger()

	assert.Len(t, s.trigger, 1)
}

func TestScheduler_RecordsFailure(t *testing.T) {
	runner := &mockScanRunner{err: errors.New("walk failed")}
	store := memory.NewSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(time.Hour), store, runner)

	startScheduler(t, s)
	require.Eventually(t, func() bool { return runner.Calls() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())

	history, err := s.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.Equal(t, "walk failed", history[0].Error)

	task, err := store.GetTask(context.Background(), domain.TaskIDDirectoryScan)
	require.NoError(t, err)
	assert.Equal(t, "walk failed", task.LastError)
}

func TestScheduler_StopReturnsFromStart(t *testing.T) {
	s := NewScheduler(domain.DefaultSchedulerConfig(time.Hour), memory.NewSchedulerStore(), &mockScanRunner{})

	_, done := startScheduler(t, s)
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestScheduler_ContextCancel(t *testing.T) {
	s := NewScheduler(domain.DefaultSchedulerConfig(time.Hour), memory.NewSchedulerStore(), &mockScanRunner{})

	cancel, done := startScheduler(t, s)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestScheduler_Disabled(t *testing.T) {
	runner := &mockScanRunner{}
	s := NewScheduler(domain.SchedulerConfig{Enabled: false}, memory.NewSchedulerStore(), runner)

	err := s.Start(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, runner.Calls())
}

func TestScheduler_TaskDisabled(t *testing.T) {
	runner := &mockScanRunner{}
	cfg := domain.SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]domain.TaskConfig{
			domain.TaskIDDirectoryScan: {Enabled: false, Interval: time.Second},
		},
	}
	s := NewScheduler(cfg, memory.NewSchedulerStore(), runner)

	cancel, done := startScheduler(t, s)
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, runner.Calls())
}

func TestScheduler_StopWhenNotRunning(t *testing.T) {
	s := NewScheduler(domain.DefaultSchedulerConfig(time.Hour), memory.NewSchedulerStore(), &mockScanRunner{})

	assert.NoError(t, s.Stop())
}
