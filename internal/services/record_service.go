package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amortization"
	"fintrack/internal/core"
	"fintrack/internal/investment"
	"fintrack/internal/log"
	"fintrack/internal/penalty"
	"fintrack/internal/sheets"
	"fintrack/internal/tax"
)

// RecordService fills in derived fields before records are stored and turns
// stored records into dated views. Create methods always store a new record:
// an ID supplied by the caller is discarded.
type RecordService struct {
	store    sheets.RecordStore
	exporter sheets.ScheduleExporter
	logger   *log.StructuredLogger
}

// NewRecordService creates a record service. exporter may be nil, in which
// case schedule export is unavailable.
func NewRecordService(store sheets.RecordStore, exporter sheets.ScheduleExporter, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentStorage, Handler: slog.Default().Handler()})
	}
	return &RecordService{
		store:    store,
		exporter: exporter,
		logger:   log.NewStructuredLogger(logger),
	}
}

// CreateLoan derives the EMI and total payable, defaults the due date to the
// end of the tenure and stores the loan.
func (s *RecordService) CreateLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	l.ID = ""
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}
	sum, err := amortization.Summarize(l.Principal.Float(), l.AnnualRate, l.TenureMonths)
	if err != nil {
		return core.Loan{}, err
	}
	l.EMI = core.MoneyFromFloat(sum.EMI)
	l.TotalPayable = core.MoneyFromFloat(sum.TotalPayable)
	if l.DueDate.IsEmpty() && !l.StartDate.IsEmpty() {
		l.DueDate = l.StartDate.AddMonths(l.TenureMonths)
	}
	if l.Status == "" {
		l.Status = core.StatusActive
	}

	saved, err := s.store.SaveLoan(ctx, l)
	if err != nil {
		return core.Loan{}, fmt.Errorf("save loan: %w", err)
	}
	s.logger.LogRecordSaved(ctx, string(KindLoan), saved.ID, saved.UserID, saved.Principal.Cents)
	return saved, nil
}

// CreateSIP derives the maturity value, with step-up when configured.
func (s *RecordService) CreateSIP(ctx context.Context, p core.SIP) (core.SIP, error) {
	p.ID = ""
	if err := p.Validate(); err != nil {
		return core.SIP{}, err
	}
	proj, err := investment.ProjectStepUpSIP(p.MonthlyAmount.Float(), p.AnnualRate, p.DurationMonths, p.StepUpPercent)
	if err != nil {
		return core.SIP{}, err
	}
	p.MaturityValue = core.MoneyFromFloat(proj.MaturityValue)
	if p.Status == "" {
		p.Status = core.StatusActive
	}

	saved, err := s.store.SaveSIP(ctx, p)
	if err != nil {
		return core.SIP{}, fmt.Errorf("save sip: %w", err)
	}
	s.logger.LogRecordSaved(ctx, string(KindSIP), saved.ID, saved.UserID, saved.MonthlyAmount.Cents)
	return saved, nil
}

// CreateTax computes the liability after deductions. A zero rate is looked
// up in the old-regime slabs.
func (s *RecordService) CreateTax(ctx context.Context, t core.TaxEntry) (core.TaxEntry, error) {
	t.ID = ""
	if err := t.Validate(); err != nil {
		return core.TaxEntry{}, err
	}
	if _, err := tax.ParseFinancialYear(t.FinancialYear); err != nil {
		return core.TaxEntry{}, err
	}
	if t.RatePercent == 0 {
		rate, err := tax.BracketRate(t.TaxableIncome.Float(), tax.OldRegime)
		if err != nil {
			return core.TaxEntry{}, err
		}
		t.RatePercent = rate
	}
	comp, err := tax.Compute(t.TaxableIncome.Float(), t.RatePercent, t.Deductions.Float())
	if err != nil {
		return core.TaxEntry{}, err
	}
	t.TaxAmount = core.MoneyFromFloat(comp.FinalTax)
	if t.Status == "" {
		t.Status = core.StatusPending
	}

	saved, err := s.store.SaveTax(ctx, t)
	if err != nil {
		return core.TaxEntry{}, fmt.Errorf("save tax: %w", err)
	}
	s.logger.LogRecordSaved(ctx, string(KindTax), saved.ID, saved.UserID, saved.TaxAmount.Cents)
	return saved, nil
}

// CreateViolation fills the payment due date from the offence date.
func (s *RecordService) CreateViolation(ctx context.Context, v core.Violation) (core.Violation, error) {
	v.ID = ""
	if err := v.Validate(); err != nil {
		return core.Violation{}, err
	}
	if v.DueDate.IsEmpty() {
		v.DueDate = penalty.ViolationDueDate(v.ViolationDate)
	}
	if v.Status == "" {
		v.Status = core.StatusPending
	}

	saved, err := s.store.SaveViolation(ctx, v)
	if err != nil {
		return core.Violation{}, fmt.Errorf("save violation: %w", err)
	}
	s.logger.LogRecordSaved(ctx, string(KindViolation), saved.ID, saved.UserID, saved.FineAmount.Cents)
	return saved, nil
}

func (s *RecordService) CreateDocument(ctx context.Context, d core.Document) (core.Document, error) {
	d.ID = ""
	if err := d.Validate(); err != nil {
		return core.Document{}, err
	}
	saved, err := s.store.SaveDocument(ctx, d)
	if err != nil {
		return core.Document{}, fmt.Errorf("save document: %w", err)
	}
	s.logger.LogRecordSaved(ctx, string(KindDocument), saved.ID, saved.UserID, 0)
	return saved, nil
}

func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = ""
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	saved, err := s.store.SaveExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.logger.LogRecordSaved(ctx, string(KindExpense), saved.ID, saved.UserID, saved.Amount.Cents)
	return saved, nil
}

func (s *RecordService) CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	d.ID = ""
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	if d.Status == "" {
		d.Status = core.StatusPending
	}
	saved, err := s.store.SaveDebt(ctx, d)
	if err != nil {
		return core.Debt{}, fmt.Errorf("save debt: %w", err)
	}
	s.logger.LogRecordSaved(ctx, string(KindDebt), saved.ID, saved.UserID, saved.Amount.Cents)
	return saved, nil
}

func (s *RecordService) CreateStock(ctx context.Context, st core.Stock) (core.Stock, error) {
	st.ID = ""
	if err := st.Validate(); err != nil {
		return core.Stock{}, err
	}
	if st.Status == "" {
		st.Status = core.StatusHolding
	}
	saved, err := s.store.SaveStock(ctx, st)
	if err != nil {
		return core.Stock{}, fmt.Errorf("save stock: %w", err)
	}
	s.logger.LogRecordSaved(ctx, string(KindStock), saved.ID, saved.UserID, 0)
	return saved, nil
}

// SetBudget replaces the user's budget for one month.
func (s *RecordService) SetBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.store.SetBudget(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget set",
		log.FieldUserID, b.UserID,
		"year", b.Year,
		"month", b.Month,
		log.FieldAmountCents, b.Total.Cents,
		"categories", len(b.Categories))
	return nil
}

// LoanView is a stored loan as of a date.
type LoanView struct {
	core.Loan
	Overdue bool `json:"overdue"`
}

func (s *RecordService) LoanViews(ctx context.Context, userID string, asOf core.Date) ([]LoanView, error) {
	loans, err := s.store.ListLoans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	out := make([]LoanView, 0, len(loans))
	for _, l := range loans {
		out = append(out, LoanView{Loan: l, Overdue: IsOverdue(KindLoan, l.DueDate, l.Status, asOf)})
	}
	return out, nil
}

// SIPView is a stored SIP with its progress. Progress is nil when the SIP
// has no start date.
type SIPView struct {
	core.SIP
	Progress *investment.Progress `json:"progress,omitempty"`
}

func (s *RecordService) SIPViews(ctx context.Context, userID string, asOf core.Date) ([]SIPView, error) {
	sips, err := s.store.ListSIPs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sips: %w", err)
	}
	out := make([]SIPView, 0, len(sips))
	for _, p := range sips {
		view := SIPView{SIP: p}
		if !p.StartDate.IsEmpty() {
			prog, err := investment.TrackProgress(p.MonthlyAmount.Float(), p.AnnualRate, p.DurationMonths, p.StepUpPercent, p.StartDate, asOf)
			if err != nil {
				return nil, fmt.Errorf("sip %s progress: %w", p.ID, err)
			}
			view.Progress = &prog
		}
		out = append(out, view)
	}
	return out, nil
}

// TaxView is a stored tax entry with its assessment.
type TaxView struct {
	core.TaxEntry
	Assessment tax.Assessment `json:"assessment"`
}

func (s *RecordService) TaxViews(ctx context.Context, userID string, asOf core.Date) ([]TaxView, error) {
	entries, err := s.store.ListTaxes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list taxes: %w", err)
	}
	out := make([]TaxView, 0, len(entries))
	for _, t := range entries {
		a, err := tax.Assess(t, asOf)
		if err != nil {
			return nil, fmt.Errorf("tax %s: %w", t.ID, err)
		}
		out = append(out, TaxView{TaxEntry: t, Assessment: a})
	}
	return out, nil
}

// ViolationView is a stored violation with its penalty assessment.
type ViolationView struct {
	core.Violation
	Assessment penalty.Assessment `json:"assessment"`
}

func (s *RecordService) ViolationViews(ctx context.Context, userID string, asOf core.Date) ([]ViolationView, error) {
	violations, err := s.store.ListViolations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	out := make([]ViolationView, 0, len(violations))
	for _, v := range violations {
		a, err := penalty.Assess(v, asOf)
		if err != nil {
			return nil, fmt.Errorf("violation %s: %w", v.ID, err)
		}
		out = append(out, ViolationView{Violation: v, Assessment: a})
	}
	return out, nil
}

// DocumentAlerts lists the user's documents that are expired or expiring soon.
func (s *RecordService) DocumentAlerts(ctx context.Context, userID string, asOf core.Date) ([]penalty.Alert, error) {
	docs, err := s.store.ListDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	alerts := penalty.CheckDocuments(docs, asOf)
	if alerts == nil {
		alerts = []penalty.Alert{}
	}
	return alerts, nil
}

// StockView is a stored holding valued at its current price.
type StockView struct {
	core.Stock
	Position investment.Position `json:"position"`
}

func (s *RecordService) StockViews(ctx context.Context, userID string) ([]StockView, error) {
	stocks, err := s.store.ListStocks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	out := make([]StockView, 0, len(stocks))
	for _, st := range stocks {
		pos, err := investment.EvaluatePosition(st.Quantity, st.BuyPrice, st.CurrentPrice)
		if err != nil {
			return nil, fmt.Errorf("stock %s: %w", st.ID, err)
		}
		out = append(out, StockView{Stock: st, Position: pos})
	}
	return out, nil
}

// ErrExportUnavailable is returned when no schedule exporter is configured.
var ErrExportUnavailable = errors.New("schedule export not configured")

// ExportLoanSchedule writes the amortization schedule of one stored loan to
// the configured exporter and returns where it was written.
func (s *RecordService) ExportLoanSchedule(ctx context.Context, userID, loanID string) (string, error) {
	if s.exporter == nil {
		return "", ErrExportUnavailable
	}
	loans, err := s.store.ListLoans(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list loans: %w", err)
	}
	for _, l := range loans {
		if l.ID != loanID {
			continue
		}
		rows, err := amortization.Rows(l.Principal.Float(), l.AnnualRate, l.TenureMonths)
		if err != nil {
			return "", err
		}
		ref, err := s.exporter.ExportSchedule(ctx, l, rows)
		if err != nil {
			return "", fmt.Errorf("export schedule: %w", err)
		}
		return ref, nil
	}
	return "", fmt.Errorf("loan %s: %w", loanID, core.ErrNotFound)
}
