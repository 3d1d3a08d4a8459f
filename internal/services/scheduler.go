package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
)

// ErrRunInFlight is returned when a run is requested while another is active.
var ErrRunInFlight = errors.New("scheduler: a run is already in flight")

// SchedulerDeps bundles constructor inputs for the run scheduler.
type SchedulerDeps struct {
	Sync       SyncService
	Interval   time.Duration
	RunOnStart bool
	Logger     *zap.Logger
}

// Scheduler owns the periodic execution of synchronization runs and retains
// the most recent run report for the ops surface. Runs never overlap.
type Scheduler struct {
	sync       SyncService
	interval   time.Duration
	runOnStart bool
	logger     *zap.Logger

	mu      sync.Mutex
	running bool
	latest  *domain.RunReport
}

// NewScheduler constructs a Scheduler from its dependencies.
func NewScheduler(deps SchedulerDeps) (*Scheduler, error) {
	if deps.Sync == nil {
		return nil, errors.New("scheduler: sync service is required")
	}
	if deps.Interval <= 0 {
		return nil, errors.New("scheduler: a positive interval is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		sync:       deps.Sync,
		interval:   deps.Interval,
		runOnStart: deps.RunOnStart,
		logger:     logger,
	}, nil
}

// Start blocks, executing a run every interval until the context is
// cancelled. A failed run is logged; the next tick is the retry mechanism.
func (s *Scheduler) Start(ctx context.Context) {
	if s.runOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Trigger executes a run immediately, typically on behalf of the ops API.
func (s *Scheduler) Trigger(ctx context.Context) (domain.RunReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return domain.RunReport{}, ErrRunInFlight
	}
	s.running = true
	s.mu.Unlock()

	report, err := s.sync.Run(ctx)

	s.mu.Lock()
	s.running = false
	s.latest = &report
	s.mu.Unlock()

	return report, err
}

// Latest returns the most recent run report, if any run has finished.
func (s *Scheduler) Latest() (domain.RunReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return domain.RunReport{}, false
	}
	return *s.latest, true
}

func (s *Scheduler) runOnce(ctx context.Context) {
	report, err := s.Trigger(ctx)
	if errors.Is(err, ErrRunInFlight) {
		s.logger.Warn("skipping scheduled run, previous run still active")
		return
	}
	if err != nil {
		s.logger.Error("scheduled run failed", zap.String("run_id", report.RunID), zap.Error(err))
	}
}
