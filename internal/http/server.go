// Package http serves the calculators and the stored records as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Deps are the collaborators of the API server. Records and Dashboard are
// required; the rest may be left zero.
type Deps struct {
	Records   *services.RecordService
	Dashboard *services.DashboardService

	// CalcCache stores encoded calculator responses. Nil disables caching.
	CalcCache cache.Cache[[]byte]
	// Ready probes the record backend for /readyz.
	Ready func(ctx context.Context) error
	// Now is the server clock used when a request carries no as_of.
	Now func() time.Time

	RateLimitPerMinute int
	BlockSuspicious    bool
	Logger             *log.Logger
}

type Server struct {
	http.Server
	records   *services.RecordService
	dashboard *services.DashboardService
	calcCache cache.Cache[[]byte]
	ready     func(context.Context) error
	now       func() time.Time
	calcLog   *log.StructuredLogger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP, Handler: slog.Default().Handler()})
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	detector := security.NewDetector()
	s := &Server{
		records:   deps.Records,
		dashboard: deps.Dashboard,
		calcCache: deps.CalcCache,
		ready:     deps.Ready,
		now:       now,
		calcLog:   log.NewStructuredLogger(logger.WithComponent(log.ComponentCalc)),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector:  detector,
		tracer:    trace.NewMiddleware(detector.ExtractClientIP),
		started:   time.Now(),
	}

	api := http.NewServeMux()
	s.routes(api)

	limited := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded", RequestID: trace.GetRequestID(r.Context())})
	})(api)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.HandleFunc("GET /readyz", s.handleReady)
	root.HandleFunc("GET /metrics", s.handleMetrics)
	root.Handle("/api/", limited)

	var handler http.Handler = root
	handler = detector.Middleware(deps.BlockSuspicious)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/calc/emi", calcHandler(s, "emi", s.calcEMI))
	mux.HandleFunc("POST /api/calc/schedule", calcHandler(s, "schedule", s.calcSchedule))
	mux.HandleFunc("POST /api/calc/payoff", calcHandler(s, "payoff", s.calcPayoff))
	mux.HandleFunc("POST /api/calc/sip", calcHandler(s, "sip", s.calcSIP))
	mux.HandleFunc("POST /api/calc/goal", calcHandler(s, "goal", s.calcGoal))
	mux.HandleFunc("POST /api/calc/stepup", calcHandler(s, "stepup", s.calcStepUp))
	mux.HandleFunc("POST /api/calc/tax", calcHandler(s, "tax", s.calcTax))
	mux.HandleFunc("POST /api/calc/advance-tax", calcHandler(s, "advance-tax", s.calcAdvanceTax))
	mux.HandleFunc("POST /api/calc/penalty", calcHandler(s, "penalty", s.calcPenalty))
	mux.HandleFunc("POST /api/calc/expiry", calcHandler(s, "expiry", s.calcExpiry))
	mux.HandleFunc("POST /api/calc/budget", calcHandler(s, "budget", s.calcBudget))

	mux.HandleFunc("POST /api/loans", createHandler(s, s.records.CreateLoan))
	mux.HandleFunc("POST /api/sips", createHandler(s, s.records.CreateSIP))
	mux.HandleFunc("POST /api/taxes", createHandler(s, s.records.CreateTax))
	mux.HandleFunc("POST /api/violations", createHandler(s, s.records.CreateViolation))
	mux.HandleFunc("POST /api/documents", createHandler(s, s.records.CreateDocument))
	mux.HandleFunc("POST /api/expenses", createHandler(s, s.records.CreateExpense))
	mux.HandleFunc("POST /api/debts", createHandler(s, s.records.CreateDebt))
	mux.HandleFunc("POST /api/stocks", createHandler(s, s.records.CreateStock))
	mux.HandleFunc("PUT /api/budget", s.handleSetBudget)

	mux.HandleFunc("GET /api/loans", viewHandler(s, s.records.LoanViews))
	mux.HandleFunc("GET /api/sips", viewHandler(s, s.records.SIPViews))
	mux.HandleFunc("GET /api/taxes", viewHandler(s, s.records.TaxViews))
	mux.HandleFunc("GET /api/violations", viewHandler(s, s.records.ViolationViews))
	mux.HandleFunc("GET /api/documents/alerts", viewHandler(s, s.records.DocumentAlerts))
	mux.HandleFunc("GET /api/stocks", viewHandler(s, func(ctx context.Context, userID string, _ core.Date) ([]services.StockView, error) {
		return s.records.StockViews(ctx, userID)
	}))
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/loans/{id}/export", s.handleExportSchedule)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
