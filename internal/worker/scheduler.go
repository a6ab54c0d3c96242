package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// Scanner runs one reminder scan as of a date.
type Scanner interface {
	ProcessDueReminders(ctx context.Context, asOf core.Date) (services.ScanResult, error)
}

// Scheduler runs reminder scans on a fixed interval, starting with one scan
// as soon as it is started.
type Scheduler struct {
	scanner  Scanner
	interval time.Duration
	now      func() time.Time

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a scheduler. now defaults to time.Now.
func NewScheduler(scanner Scanner, interval time.Duration, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{scanner: scanner, interval: interval, now: now}
}

// Start begins the scan loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scan interval must be positive, got %v", s.interval)
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("reminder scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Reminder scheduler started", "interval", s.interval)
	return nil
}

// Stop signals the loop and waits for the running scan to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Reminder scheduler stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Reminder scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Scan immediately on startup
	s.RunOnce(ctx)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single scan as of today.
func (s *Scheduler) RunOnce(ctx context.Context) {
	asOf := core.DateOf(s.now())
	start := time.Now()
	res, err := s.scanner.ProcessDueReminders(ctx, asOf)
	if err != nil {
		slog.ErrorContext(ctx, "Reminder scan failed", "as_of", asOf.String(), "error", err)
		return
	}
	slog.InfoContext(ctx, "Reminder scan finished",
		"as_of", asOf.String(),
		"created", res.Created,
		"published", res.Published,
		"duration", time.Since(start))
}
