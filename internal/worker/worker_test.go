package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

type fakeWriter struct {
	rows []core.Reminder
	err  error
}

func (f *fakeWriter) AppendReminder(_ context.Context, r core.Reminder) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, r)
	return "Reminders!A2:G2", nil
}

func TestReminderWorker_HandleReminderMessage(t *testing.T) {
	r := core.Reminder{UserID: "u1", Kind: core.ReminderLoan, Key: "loan_due:l1:2024-06-12", DueDate: core.NewDate(2024, 6, 12)}
	msg := amqp.NewReminderMessage(r)

	t.Run("writes the reminder", func(t *testing.T) {
		w := &fakeWriter{}
		if err := NewReminderWorker(w).HandleReminderMessage(context.Background(), msg); err != nil {
			t.Fatalf("HandleReminderMessage: %v", err)
		}
		if len(w.rows) != 1 || w.rows[0].Key != r.Key {
			t.Errorf("rows = %+v", w.rows)
		}
	})

	t.Run("writer failure is returned for requeue", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("rate limited")}
		err := NewReminderWorker(w).HandleReminderMessage(context.Background(), msg)
		if err == nil || !strings.Contains(err.Error(), "rate limited") {
			t.Errorf("expected wrapped writer error, got %v", err)
		}
	})

	t.Run("missing writer", func(t *testing.T) {
		if err := NewReminderWorker(nil).HandleReminderMessage(context.Background(), msg); err == nil {
			t.Error("expected error without writer")
		}
	})
}

type fakeScanner struct {
	mu    sync.Mutex
	dates []core.Date
	err   error
}

func (f *fakeScanner) ProcessDueReminders(_ context.Context, asOf core.Date) (services.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dates = append(f.dates, asOf)
	return services.ScanResult{Created: 1}, f.err
}

func (f *fakeScanner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dates)
}

func TestScheduler_StartStop(t *testing.T) {
	scanner := &fakeScanner{}
	fixed := time.Date(2024, 6, 10, 23, 30, 0, 0, time.UTC)
	s := NewScheduler(scanner, 10*time.Millisecond, func() time.Time { return fixed })

	if s.IsRunning() {
		t.Fatal("scheduler should not be running initially")
	}
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for scanner.calls() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if scanner.calls() < 2 {
		t.Fatalf("expected the initial scan and at least one tick, got %d", scanner.calls())
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should be stopped")
	}
	if err := s.Stop(stopCtx); err != nil {
		t.Errorf("Stop on a stopped scheduler should be a no-op: %v", err)
	}

	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	if !scanner.dates[0].Equal(core.NewDate(2024, 6, 10)) {
		t.Errorf("scan date = %s, want 2024-06-10", scanner.dates[0])
	}
}

func TestScheduler_RunOnceSurvivesErrors(t *testing.T) {
	scanner := &fakeScanner{err: errors.New("store unavailable")}
	s := NewScheduler(scanner, time.Hour, nil)
	s.RunOnce(context.Background())
	s.RunOnce(context.Background())
	if scanner.calls() != 2 {
		t.Errorf("calls = %d, want 2", scanner.calls())
	}
}

func TestScheduler_RejectsZeroInterval(t *testing.T) {
	if err := NewScheduler(&fakeScanner{}, 0, nil).Start(context.Background()); err == nil {
		t.Error("expected error for zero interval")
	}
}
