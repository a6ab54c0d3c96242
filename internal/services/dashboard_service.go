package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

const (
	// UpcomingWindowDays bounds the dashboard's upcoming dues list.
	UpcomingWindowDays = 7
	// TopCategoryCount is how many spending categories the dashboard shows.
	TopCategoryCount = 3
)

// UpcomingDue is a payment falling due soon.
type UpcomingDue struct {
	Kind     RecordKind `json:"kind"`
	RecordID string     `json:"record_id"`
	Title    string     `json:"title"`
	DueDate  core.Date  `json:"due_date"`
	Amount   core.Money `json:"amount"`
	DaysLeft int        `json:"days_left"`
}

// DebtSummary totals debts by settlement state.
type DebtSummary struct {
	Pending      core.Money `json:"pending"`
	Paid         core.Money `json:"paid"`
	PendingCount int        `json:"pending_count"`
	PaidCount    int        `json:"paid_count"`
}

// DaySpend is the total spent on one day.
type DaySpend struct {
	Date   core.Date  `json:"date"`
	Amount core.Money `json:"amount"`
}

// Dashboard is the monthly overview for one user.
type Dashboard struct {
	UserID        string                `json:"user_id"`
	AsOf          core.Date             `json:"as_of"`
	Budget        budget.Snapshot       `json:"budget"`
	TopCategories []core.CategoryAmount `json:"top_categories"`
	BiggestDay    *DaySpend             `json:"biggest_day,omitempty"`
	UpcomingDues  []UpcomingDue         `json:"upcoming_dues"`
	OverdueCount  int                   `json:"overdue_count"`
	Debts         DebtSummary           `json:"debts"`
}

// DashboardService composes the dashboard from stored records.
type DashboardService struct {
	store sheets.RecordStore
}

func NewDashboardService(store sheets.RecordStore) *DashboardService {
	return &DashboardService{store: store}
}

// Build loads the user's records concurrently and aggregates the calendar
// month containing asOf.
func (s *DashboardService) Build(ctx context.Context, userID string, asOf core.Date) (Dashboard, error) {
	if asOf.IsEmpty() {
		return Dashboard{}, core.ErrInvalidDate
	}
	start, end := budget.MonthPeriod(asOf.Year(), asOf.Month())

	var (
		expenses   []core.Expense
		monthly    *core.Budget
		loans      []core.Loan
		debts      []core.Debt
		violations []core.Violation
		taxes      []core.TaxEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, err = s.store.ListExpenses(gctx, userID, start, end)
		return err
	})
	g.Go(func() error {
		b, err := s.store.GetBudget(gctx, userID, asOf.Year(), asOf.Month())
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		monthly = &b
		return nil
	})
	g.Go(func() (err error) {
		loans, err = s.store.ListLoans(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		debts, err = s.store.ListDebts(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		violations, err = s.store.ListViolations(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		taxes, err = s.store.ListTaxes(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard records: %w", err)
	}

	txs := budget.FromExpenses(expenses)
	in := budget.Input{Transactions: txs, PeriodStart: start, PeriodEnd: end, AsOf: asOf}
	if monthly != nil {
		total := monthly.Total
		in.TotalBudget = &total
		in.CategoryBudgets = monthly.Categories
	}
	snap, err := budget.Aggregate(in)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		UserID:        userID,
		AsOf:          asOf,
		Budget:        snap,
		TopCategories: budget.TopCategories(snap, TopCategoryCount),
		UpcomingDues:  UpcomingDues(asOf, loans, debts, violations, taxes),
		OverdueCount:  countOverdue(asOf, loans, debts, violations, taxes),
		Debts:         SummarizeDebts(debts),
	}
	if day, total, ok := budget.BiggestDay(txs, start, end); ok {
		d.BiggestDay = &DaySpend{Date: day, Amount: total}
	}

	slog.DebugContext(ctx, "Dashboard built",
		"user_id", userID,
		"as_of", asOf.String(),
		"expenses", len(expenses),
		"upcoming", len(d.UpcomingDues))
	return d, nil
}

// UpcomingDues lists open payments due strictly after asOf and strictly
// before asOf plus UpcomingWindowDays, earliest first.
func UpcomingDues(asOf core.Date, loans []core.Loan, debts []core.Debt, violations []core.Violation, taxes []core.TaxEntry) []UpcomingDue {
	limit := asOf.AddDays(UpcomingWindowDays)
	out := []UpcomingDue{}
	add := func(kind RecordKind, open bool, id, title string, due core.Date, amount core.Money) {
		if !open || due.IsEmpty() || !due.After(asOf) || !due.Before(limit) {
			return
		}
		out = append(out, UpcomingDue{
			Kind:     kind,
			RecordID: id,
			Title:    title,
			DueDate:  due,
			Amount:   amount,
			DaysLeft: due.DaysUntil(asOf),
		})
	}

	for _, l := range loans {
		add(KindLoan, owed(l.Status), l.ID, l.Lender, l.DueDate, l.EMI)
	}
	for _, d := range debts {
		add(KindDebt, owed(d.Status), d.ID, d.Creditor, d.DueDate, d.Amount)
	}
	for _, v := range violations {
		add(KindViolation, v.Status.IsOpen(), v.ID, v.Offence, v.DueDate, v.FineAmount)
	}
	for _, t := range taxes {
		add(KindTax, t.Status.IsOpen(), t.ID, "Tax "+t.FinancialYear, t.DueDate, t.TaxAmount)
	}

	slices.SortFunc(out, func(a, b UpcomingDue) int {
		if c := a.DueDate.Compare(b.DueDate.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return out
}

func countOverdue(asOf core.Date, loans []core.Loan, debts []core.Debt, violations []core.Violation, taxes []core.TaxEntry) int {
	n := 0
	for _, l := range loans {
		if IsOverdue(KindLoan, l.DueDate, l.Status, asOf) {
			n++
		}
	}
	for _, d := range debts {
		if IsOverdue(KindDebt, d.DueDate, d.Status, asOf) {
			n++
		}
	}
	for _, v := range violations {
		if IsOverdue(KindViolation, v.DueDate, v.Status, asOf) {
			n++
		}
	}
	for _, t := range taxes {
		if IsOverdue(KindTax, t.DueDate, t.Status, asOf) {
			n++
		}
	}
	return n
}

// SummarizeDebts totals settled and still-open debts. Cancelled debts are
// left out of both.
func SummarizeDebts(debts []core.Debt) DebtSummary {
	var s DebtSummary
	for _, d := range debts {
		switch {
		case d.Status.IsSettled():
			s.Paid = s.Paid.Add(d.Amount)
			s.PaidCount++
		case d.Status.IsOpen():
			s.Pending = s.Pending.Add(d.Amount)
			s.PendingCount++
		}
	}
	return s
}
