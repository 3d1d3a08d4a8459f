package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
)

// stubSync returns a scripted report, optionally blocking until released so
// tests can hold a run open.
type stubSync struct {
	report  domain.RunReport
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (s *stubSync) Run(ctx context.Context) (domain.RunReport, error) {
	s.calls++
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return s.report, s.err
}

func TestNewSchedulerValidatesDeps(t *testing.T) {
	if _, err := NewScheduler(SchedulerDeps{Interval: time.Minute}); err == nil {
		t.Fatal("expected error for missing sync service")
	}
	if _, err := NewScheduler(SchedulerDeps{Sync: &stubSync{}}); err == nil {
		t.Fatal("expected error for missing interval")
	}
}

func TestTriggerReturnsReportAndRetainsIt(t *testing.T) {
	sync := &stubSync{report: domain.RunReport{RunID: "RUN-1", Created: 2}}
	scheduler, err := NewScheduler(SchedulerDeps{Sync: sync, Interval: time.Minute})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if _, ok := scheduler.Latest(); ok {
		t.Fatal("expected no report before the first run")
	}

	report, err := scheduler.Trigger(context.Background())
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if report.RunID != "RUN-1" || report.Created != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	latest, ok := scheduler.Latest()
	if !ok || latest.RunID != "RUN-1" {
		t.Fatalf("expected latest report RUN-1, got ok=%v %+v", ok, latest)
	}
}

func TestTriggerRejectsOverlappingRuns(t *testing.T) {
	sync := &stubSync{
		report:  domain.RunReport{RunID: "RUN-1"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	scheduler, err := NewScheduler(SchedulerDeps{Sync: sync, Interval: time.Minute})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scheduler.Trigger(context.Background())
	}()

	<-sync.started
	if _, err := scheduler.Trigger(context.Background()); !errors.Is(err, ErrRunInFlight) {
		t.Fatalf("expected ErrRunInFlight while a run is active, got %v", err)
	}

	close(sync.release)
	<-done

	if sync.calls != 1 {
		t.Fatalf("expected the overlapping trigger to be rejected before Run, got %d calls", sync.calls)
	}
}

func TestTriggerRetainsReportOfFailedRun(t *testing.T) {
	sync := &stubSync{report: domain.RunReport{RunID: "RUN-ERR"}, err: errors.New("feed unreachable")}
	scheduler, err := NewScheduler(SchedulerDeps{Sync: sync, Interval: time.Minute})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if _, err := scheduler.Trigger(context.Background()); err == nil {
		t.Fatal("expected the run error to propagate")
	}
	if latest, ok := scheduler.Latest(); !ok || latest.RunID != "RUN-ERR" {
		t.Fatalf("expected failed run to still be retained, got ok=%v %+v", ok, latest)
	}

	if _, err := scheduler.Trigger(context.Background()); errors.Is(err, ErrRunInFlight) {
		t.Fatal("a finished run must release the in-flight guard")
	}
}
