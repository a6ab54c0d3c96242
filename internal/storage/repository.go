package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (r *SQLiteRepository) SaveLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}
	ensureID(&l.ID)
	if err := r.queries.UpsertLoan(ctx, l); err != nil {
		return core.Loan{}, fmt.Errorf("save loan: %w", err)
	}
	slog.DebugContext(ctx, "Loan saved to SQLite", "id", l.ID, "user_id", l.UserID)
	return l, nil
}

func (r *SQLiteRepository) ListLoans(ctx context.Context, userID string) ([]core.Loan, error) {
	loans, err := r.queries.ListLoans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

func (r *SQLiteRepository) SaveSIP(ctx context.Context, s core.SIP) (core.SIP, error) {
	if err := s.Validate(); err != nil {
		return core.SIP{}, err
	}
	ensureID(&s.ID)
	if err := r.queries.UpsertSIP(ctx, s); err != nil {
		return core.SIP{}, fmt.Errorf("save sip: %w", err)
	}
	slog.DebugContext(ctx, "SIP saved to SQLite", "id", s.ID, "user_id", s.UserID)
	return s, nil
}

func (r *SQLiteRepository) ListSIPs(ctx context.Context, userID string) ([]core.SIP, error) {
	sips, err := r.queries.ListSIPs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sips: %w", err)
	}
	return sips, nil
}

func (r *SQLiteRepository) SaveTax(ctx context.Context, t core.TaxEntry) (core.TaxEntry, error) {
	if err := t.Validate(); err != nil {
		return core.TaxEntry{}, err
	}
	ensureID(&t.ID)
	if err := r.queries.UpsertTax(ctx, t); err != nil {
		return core.TaxEntry{}, fmt.Errorf("save tax entry: %w", err)
	}
	slog.DebugContext(ctx, "Tax entry saved to SQLite", "id", t.ID, "user_id", t.UserID)
	return t, nil
}

func (r *SQLiteRepository) ListTaxes(ctx context.Context, userID string) ([]core.TaxEntry, error) {
	taxes, err := r.queries.ListTaxes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list taxes: %w", err)
	}
	return taxes, nil
}

func (r *SQLiteRepository) SaveViolation(ctx context.Context, v core.Violation) (core.Violation, error) {
	if err := v.Validate(); err != nil {
		return core.Violation{}, err
	}
	ensureID(&v.ID)
	if err := r.queries.UpsertViolation(ctx, v); err != nil {
		return core.Violation{}, fmt.Errorf("save violation: %w", err)
	}
	slog.DebugContext(ctx, "Violation saved to SQLite", "id", v.ID, "user_id", v.UserID)
	return v, nil
}

func (r *SQLiteRepository) ListViolations(ctx context.Context, userID string) ([]core.Violation, error) {
	violations, err := r.queries.ListViolations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	return violations, nil
}

func (r *SQLiteRepository) SaveDocument(ctx context.Context, d core.Document) (core.Document, error) {
	if err := d.Validate(); err != nil {
		return core.Document{}, err
	}
	ensureID(&d.ID)
	if err := r.queries.UpsertDocument(ctx, d); err != nil {
		return core.Document{}, fmt.Errorf("save document: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) ListDocuments(ctx context.Context, userID string) ([]core.Document, error) {
	docs, err := r.queries.ListDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (r *SQLiteRepository) SaveExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	ensureID(&e.ID)
	if err := r.queries.UpsertExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())

	return e, nil
}

// ListExpenses returns the user's expenses dated within [start, end]. A zero
// bound leaves that side open.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string, start, end core.Date) ([]core.Expense, error) {
	expenses, err := r.queries.ListExpensesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) SaveDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	ensureID(&d.ID)
	if err := r.queries.UpsertDebt(ctx, d); err != nil {
		return core.Debt{}, fmt.Errorf("save debt: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context, userID string) ([]core.Debt, error) {
	debts, err := r.queries.ListDebts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return debts, nil
}

func (r *SQLiteRepository) SaveStock(ctx context.Context, s core.Stock) (core.Stock, error) {
	if err := s.Validate(); err != nil {
		return core.Stock{}, err
	}
	ensureID(&s.ID)
	if err := r.queries.UpsertStock(ctx, s); err != nil {
		return core.Stock{}, fmt.Errorf("save stock: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListStocks(ctx context.Context, userID string) ([]core.Stock, error) {
	stocks, err := r.queries.ListStocks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return stocks, nil
}

// SetBudget replaces the month's budget lines in one transaction.
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteBudget(ctx, b.UserID, b.Year, b.Month); err != nil {
		return fmt.Errorf("clear budget: %w", err)
	}
	if err := q.InsertBudgetLine(ctx, b.UserID, b.Year, b.Month, "", b.Total.Cents); err != nil {
		return fmt.Errorf("insert budget total: %w", err)
	}
	for category, limit := range b.Categories {
		if err := q.InsertBudgetLine(ctx, b.UserID, b.Year, b.Month, category, limit.Cents); err != nil {
			return fmt.Errorf("insert budget for %s: %w", category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"user_id", b.UserID,
		"year", b.Year,
		"month", b.Month,
		"categories", len(b.Categories))
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID string, year, month int) (core.Budget, error) {
	lines, err := r.queries.ListBudgetLines(ctx, userID, year, month)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	if len(lines) == 0 {
		return core.Budget{}, fmt.Errorf("budget %s %04d-%02d: %w", userID, year, month, core.ErrNotFound)
	}

	b := core.Budget{UserID: userID, Year: year, Month: month}
	for _, line := range lines {
		if line.Category == "" {
			b.Total = core.Money{Cents: line.AmountCents}
			continue
		}
		if b.Categories == nil {
			b.Categories = make(map[string]core.Money)
		}
		b.Categories[line.Category] = core.Money{Cents: line.AmountCents}
	}
	return b, nil
}

// SaveReminder inserts the reminder unless one with the same key exists, in
// which case the stored reminder is returned with created=false.
func (r *SQLiteRepository) SaveReminder(ctx context.Context, rem core.Reminder) (core.Reminder, bool, error) {
	if err := rem.Validate(); err != nil {
		return core.Reminder{}, false, err
	}
	ensureID(&rem.ID)

	res, err := r.queries.InsertReminder(ctx, rem)
	if err != nil {
		return core.Reminder{}, false, fmt.Errorf("insert reminder: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return rem, true, nil
	}

	existing, err := r.queries.GetReminderByKey(ctx, rem.Key)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Reminder{}, false, fmt.Errorf("reminder %s: %w", rem.Key, core.ErrNotFound)
	}
	if err != nil {
		return core.Reminder{}, false, fmt.Errorf("get reminder by key: %w", err)
	}
	return existing, false, nil
}

func (r *SQLiteRepository) ListReminders(ctx context.Context, userID string) ([]core.Reminder, error) {
	reminders, err := r.queries.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]string, error) {
	users, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
