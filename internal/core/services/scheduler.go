package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// ScanRunner runs one ingestion pass.
type ScanRunner interface {
	Scan(ctx context.Context) (domain.ScanReport, error)
}

// Scheduler runs the directory scan on an interval and on demand.
// Runs never overlap.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	scanner ScanRunner

	trigger chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	scanner ScanRunner,
) *Scheduler {
	return &Scheduler{
		config:  config,
		store:   store,
		scanner: scanner,
		trigger: make(chan struct{}, 1),
	}
}

// Start runs a scan immediately and then on every interval tick or trigger.
// It blocks until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Info("scheduler disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	task, err := s.ensureTask(ctx)
	if err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
		return err
	}
	if !task.Enabled {
		logger.Info("scheduler: %s disabled", task.ID)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		}
	}

	return s.run(ctx, stopCh, task)
}

// Trigger requests an extra scan. Requests made while one is pending are coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Stop gracefully shuts down the scheduler, waiting for a running scan.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// History returns the most recent scan results, newest first.
func (s *Scheduler) History(ctx context.Context, limit int) ([]domain.TaskResult, error) {
	return s.store.GetTaskHistory(ctx, domain.TaskIDDirectoryScan, limit)
}

// ensureTask creates or updates the scan task in the store.
func (s *Scheduler) ensureTask(ctx context.Context) (*domain.ScheduledTask, error) {
	cfg := s.config.GetTaskConfig(domain.TaskIDDirectoryScan)
	if cfg.Interval <= 0 {
		cfg.Interval = domain.DefaultScanInterval
	}

	task, err := s.store.GetTask(ctx, domain.TaskIDDirectoryScan)
	if err != nil {
		return nil, err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:   domain.TaskIDDirectoryScan,
			Name: "Directory Scan",
		}
	}
	task.Interval = cfg.Interval
	task.Enabled = cfg.Enabled
	task.NextRun = time.Now()

	if err := s.store.SaveTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}, task *domain.ScheduledTask) error {
	s.runTask(ctx, task)

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runTask(ctx, task)
		case <-s.trigger:
			logger.Debug("scheduler: scan triggered")
			s.runTask(ctx, task)
		}
	}
}

// runTask executes one scan and records its result.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	result := &domain.TaskResult{
		RunID:     uuid.New().String(),
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	report, err := s.scanner.Scan(ctx)

	result.EndedAt = time.Now()
	result.ItemsProcessed = report.NewChunks
	if err != nil {
		result.Error = err.Error()
		task.LastError = err.Error()
		logger.Error("scheduler: %s failed: %v", task.ID, err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	// Bookkeeping must outlive a cancelled scan
	bookCtx := context.WithoutCancel(ctx)

	if saveErr := s.store.SaveTask(bookCtx, task); saveErr != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(bookCtx, result); recordErr != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(bookCtx, domain.TaskHistoryLimit); pruneErr != nil {
		logger.Warn("scheduler: failed to prune history: %v", pruneErr)
	}
}
