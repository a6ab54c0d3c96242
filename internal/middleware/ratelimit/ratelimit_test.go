package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour, Now: clock.Now})
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestLimiter_Allow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request in the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own budget")
	}

	clock.Advance(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("a new window should reset the budget")
	}

	if got := rl.GetMetrics(); got.TotalHits != 1 || got.ClientCount != 2 {
		t.Errorf("GetMetrics() = %+v, want 1 hit and 2 clients", got)
	}
}

func TestLimiter_WindowDoesNotSlide(t *testing.T) {
	rl, clock := newTestLimiter(t, 2)

	rl.Allow("c")
	clock.Advance(40 * time.Second)
	rl.Allow("c")
	clock.Advance(10 * time.Second)
	if rl.Allow("c") {
		t.Error("requests inside the first minute should count against it")
	}
	clock.Advance(10 * time.Second)
	if !rl.Allow("c") {
		t.Error("the window should reset one minute after it opened")
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, 10)

	rl.Allow("old")
	clock.Advance(9 * time.Minute)
	rl.Allow("fresh")
	clock.Advance(2 * time.Minute)

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Errorf("cleanupStaleEntries() removed %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(Config{})
	rl.Stop()
	rl.Stop()
	if rl.requestsPerMinute != DefaultConfig().RequestsPerMinute {
		t.Errorf("requestsPerMinute = %d, want default", rl.requestsPerMinute)
	}
}

func TestMiddleware(t *testing.T) {
	rl, clock := newTestLimiter(t, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ip := func(*http.Request) string { return "10.0.0.1" }

	t.Run("default rejection", func(t *testing.T) {
		h := rl.Middleware(ip, nil)(next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/loans", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("first request status = %d", rec.Code)
		}

		clock.Advance(15 * time.Second)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/loans", nil))
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second request status = %d, want 429", rec.Code)
		}
		if got := rec.Header().Get("Retry-After"); got != "45" {
			t.Errorf("Retry-After = %q, want 45", got)
		}
	})

	t.Run("custom rejection", func(t *testing.T) {
		called := false
		h := rl.Middleware(ip, func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusTooManyRequests)
		})(next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if !called || rec.Code != http.StatusTooManyRequests {
			t.Errorf("onLimit called = %v, status = %d", called, rec.Code)
		}
	})
}
