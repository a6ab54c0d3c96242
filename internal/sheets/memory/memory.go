package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

type budgetKey struct {
	user        string
	year, month int
}

// Store keeps every record in process memory. It is the default backend and
// the fake used by service tests.
type Store struct {
	mu         sync.Mutex
	loans      []core.Loan
	sips       []core.SIP
	taxes      []core.TaxEntry
	violations []core.Violation
	documents  []core.Document
	expenses   []core.Expense
	debts      []core.Debt
	stocks     []core.Stock
	budgets    map[budgetKey]core.Budget
	reminders  []core.Reminder
	users      []string
}

func New() *Store {
	return &Store{budgets: map[budgetKey]core.Budget{}}
}

// upsert replaces the item with the same ID or appends it, assigning an ID
// when the item has none.
func upsert[T any](items []T, item T, id func(*T) *string) ([]T, T) {
	ref := id(&item)
	if *ref == "" {
		*ref = uuid.NewString()
	}
	for i := range items {
		if *id(&items[i]) == *ref {
			items[i] = item
			return items, item
		}
	}
	return append(items, item), item
}

func byUser[T any](items []T, userID string, owner func(T) string) []T {
	out := make([]T, 0)
	for _, it := range items {
		if owner(it) == userID {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) touch(userID string) {
	if !slices.Contains(s.users, userID) {
		s.users = append(s.users, userID)
	}
}

func (s *Store) SaveLoan(_ context.Context, l core.Loan) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(l.UserID)
	s.loans, l = upsert(s.loans, l, func(x *core.Loan) *string { return &x.ID })
	return l, nil
}

func (s *Store) ListLoans(_ context.Context, userID string) ([]core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byUser(s.loans, userID, func(x core.Loan) string { return x.UserID }), nil
}

func (s *Store) SaveSIP(_ context.Context, p core.SIP) (core.SIP, error) {
	if err := p.Validate(); err != nil {
		return core.SIP{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(p.UserID)
	s.sips, p = upsert(s.sips, p, func(x *core.SIP) *string { return &x.ID })
	return p, nil
}

func (s *Store) ListSIPs(_ context.Context, userID string) ([]core.SIP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byUser(s.sips, userID, func(x core.SIP) string { return x.UserID }), nil
}

func (s *Store) SaveTax(_ context.Context, t core.TaxEntry) (core.TaxEntry, error) {
	if err := t.Validate(); err != nil {
		return core.TaxEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(t.UserID)
	s.taxes, t = upsert(s.taxes, t, func(x *core.TaxEntry) *string { return &x.ID })
	return t, nil
}

func (s *Store) ListTaxes(_ context.Context, userID string) ([]core.TaxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byUser(s.taxes, userID, func(x core.TaxEntry) string { return x.UserID }), nil
}

func (s *Store) SaveViolation(_ context.Context, v core.Violation) (core.Violation, error) {
	if err := v.Validate(); err != nil {
		return core.Violation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(v.UserID)
	s.violations, v = upsert(s.violations, v, func(x *core.Violation) *string { return &x.ID })
	return v, nil
}

func (s *Store) ListViolations(_ context.Context, userID string) ([]core.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byUser(s.violations, userID, func(x core.Violation) string { return x.UserID }), nil
}

func (s *Store) SaveDocument(_ context.Context, d core.Document) (core.Document, error) {
	if err := d.Validate(); err != nil {
		return core.Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(d.UserID)
	s.documents, d = upsert(s.documents, d, func(x *core.Document) *string { return &x.ID })
	return d, nil
}

func (s *Store) ListDocuments(_ context.Context, userID string) ([]core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byUser(s.documents, userID, func(x core.Document) string { return x.UserID }), nil
}

func (s *Store) SaveExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(e.UserID)
	s.expenses, e = upsert(s.expenses, e, func(x *core.Expense) *string { return &x.ID })
	return e, nil
}

// ListExpenses returns the user's expenses dated within [start, end]. A zero
// bound leaves that side open.
func (s *Store) ListExpenses(_ context.Context, userID string, start, end core.Date) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if !start.IsZero() && e.Date.Before(start) {
			continue
		}
		if !end.IsZero() && e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) SaveDebt(_ context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(d.UserID)
	s.debts, d = upsert(s.debts, d, func(x *core.Debt) *string { return &x.ID })
	return d, nil
}

func (s *Store) ListDebts(_ context.Context, userID string) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byUser(s.debts, userID, func(x core.Debt) string { return x.UserID }), nil
}

func (s *Store) SaveStock(_ context.Context, st core.Stock) (core.Stock, error) {
	if err := st.Validate(); err != nil {
		return core.Stock{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(st.UserID)
	s.stocks, st = upsert(s.stocks, st, func(x *core.Stock) *string { return &x.ID })
	return st, nil
}

func (s *Store) ListStocks(_ context.Context, userID string) ([]core.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byUser(s.stocks, userID, func(x core.Stock) string { return x.UserID }), nil
}

func (s *Store) SetBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(b.UserID)
	s.budgets[budgetKey{b.UserID, b.Year, b.Month}] = b
	return nil
}

func (s *Store) GetBudget(_ context.Context, userID string, year, month int) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budgetKey{userID, year, month}]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %s %04d-%02d: %w", userID, year, month, core.ErrNotFound)
	}
	return b, nil
}

func (s *Store) SaveReminder(_ context.Context, r core.Reminder) (core.Reminder, bool, error) {
	if err := r.Validate(); err != nil {
		return core.Reminder{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reminders {
		if existing.Key == r.Key {
			return existing, false, nil
		}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.touch(r.UserID)
	s.reminders = append(s.reminders, r)
	return r, true, nil
}

func (s *Store) ListReminders(_ context.Context, userID string) ([]core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return byUser(s.reminders, userID, func(x core.Reminder) string { return x.UserID }), nil
}

func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users), nil
}
