package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// rowScanner is the common part of *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func queryList[T any](ctx context.Context, q *Queries, query string, scan func(rowScanner) (T, error), args ...any) ([]T, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// dateText stores dates as YYYY-MM-DD text so range filters compare lexically.
func dateText(d core.Date) string {
	return d.String()
}

func parseDates(texts []string, dst ...*core.Date) error {
	for i, s := range texts {
		d, err := core.ParseDate(s)
		if err != nil {
			return fmt.Errorf("stored date column %d: %w", i, err)
		}
		*dst[i] = d
	}
	return nil
}

const upsertLoan = `-- name: UpsertLoan :exec
INSERT INTO loans (id, user_id, lender, principal_cents, annual_rate, tenure_months, start_date, due_date, emi_cents, total_payable_cents, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    lender = excluded.lender,
    principal_cents = excluded.principal_cents,
    annual_rate = excluded.annual_rate,
    tenure_months = excluded.tenure_months,
    start_date = excluded.start_date,
    due_date = excluded.due_date,
    emi_cents = excluded.emi_cents,
    total_payable_cents = excluded.total_payable_cents,
    status = excluded.status
`

func (q *Queries) UpsertLoan(ctx context.Context, l core.Loan) error {
	_, err := q.db.ExecContext(ctx, upsertLoan,
		l.ID, l.UserID, l.Lender, l.Principal.Cents, l.AnnualRate, l.TenureMonths,
		dateText(l.StartDate), dateText(l.DueDate), l.EMI.Cents, l.TotalPayable.Cents, string(l.Status))
	return err
}

const listLoans = `-- name: ListLoans :many
SELECT id, user_id, lender, principal_cents, annual_rate, tenure_months, start_date, due_date, emi_cents, total_payable_cents, status
FROM loans WHERE user_id = ? ORDER BY created_at, rowid
`

func (q *Queries) ListLoans(ctx context.Context, userID string) ([]core.Loan, error) {
	return queryList(ctx, q, listLoans, func(r rowScanner) (core.Loan, error) {
		var l core.Loan
		var start, due, status string
		if err := r.Scan(&l.ID, &l.UserID, &l.Lender, &l.Principal.Cents, &l.AnnualRate, &l.TenureMonths,
			&start, &due, &l.EMI.Cents, &l.TotalPayable.Cents, &status); err != nil {
			return l, err
		}
		l.Status = core.Status(status)
		err := parseDates([]string{start, due}, &l.StartDate, &l.DueDate)
		return l, err
	}, userID)
}

const upsertSIP = `-- name: UpsertSIP :exec
INSERT INTO sips (id, user_id, fund_name, monthly_amount_cents, annual_rate, duration_months, step_up_percent, start_date, maturity_value_cents, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    fund_name = excluded.fund_name,
    monthly_amount_cents = excluded.monthly_amount_cents,
    annual_rate = excluded.annual_rate,
    duration_months = excluded.duration_months,
    step_up_percent = excluded.step_up_percent,
    start_date = excluded.start_date,
    maturity_value_cents = excluded.maturity_value_cents,
    status = excluded.status
`

func (q *Queries) UpsertSIP(ctx context.Context, s core.SIP) error {
	_, err := q.db.ExecContext(ctx, upsertSIP,
		s.ID, s.UserID, s.FundName, s.MonthlyAmount.Cents, s.AnnualRate, s.DurationMonths,
		s.StepUpPercent, dateText(s.StartDate), s.MaturityValue.Cents, string(s.Status))
	return err
}

const listSIPs = `-- name: ListSIPs :many
SELECT id, user_id, fund_name, monthly_amount_cents, annual_rate, duration_months, step_up_percent, start_date, maturity_value_cents, status
FROM sips WHERE user_id = ? ORDER BY created_at, rowid
`

func (q *Queries) ListSIPs(ctx context.Context, userID string) ([]core.SIP, error) {
	return queryList(ctx, q, listSIPs, func(r rowScanner) (core.SIP, error) {
		var s core.SIP
		var start, status string
		if err := r.Scan(&s.ID, &s.UserID, &s.FundName, &s.MonthlyAmount.Cents, &s.AnnualRate, &s.DurationMonths,
			&s.StepUpPercent, &start, &s.MaturityValue.Cents, &status); err != nil {
			return s, err
		}
		s.Status = core.Status(status)
		err := parseDates([]string{start}, &s.StartDate)
		return s, err
	}, userID)
}

const upsertTax = `-- name: UpsertTax :exec
INSERT INTO taxes (id, user_id, financial_year, taxable_income_cents, rate_percent, deductions_cents, tax_amount_cents, due_date, status, advance_tax_payer)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    financial_year = excluded.financial_year,
    taxable_income_cents = excluded.taxable_income_cents,
    rate_percent = excluded.rate_percent,
    deductions_cents = excluded.deductions_cents,
    tax_amount_cents = excluded.tax_amount_cents,
    due_date = excluded.due_date,
    status = excluded.status,
    advance_tax_payer = excluded.advance_tax_payer
`

func (q *Queries) UpsertTax(ctx context.Context, t core.TaxEntry) error {
	_, err := q.db.ExecContext(ctx, upsertTax,
		t.ID, t.UserID, t.FinancialYear, t.TaxableIncome.Cents, t.RatePercent, t.Deductions.Cents,
		t.TaxAmount.Cents, dateText(t.DueDate), string(t.Status), t.AdvanceTaxPayer)
	return err
}

const listTaxes = `-- name: ListTaxes :many
SELECT id, user_id, financial_year, taxable_income_cents, rate_percent, deductions_cents, tax_amount_cents, due_date, status, advance_tax_payer
FROM taxes WHERE user_id = ? ORDER BY created_at, rowid
`

func (q *Queries) ListTaxes(ctx context.Context, userID string) ([]core.TaxEntry, error) {
	return queryList(ctx, q, listTaxes, func(r rowScanner) (core.TaxEntry, error) {
		var t core.TaxEntry
		var due, status string
		if err := r.Scan(&t.ID, &t.UserID, &t.FinancialYear, &t.TaxableIncome.Cents, &t.RatePercent, &t.Deductions.Cents,
			&t.TaxAmount.Cents, &due, &status, &t.AdvanceTaxPayer); err != nil {
			return t, err
		}
		t.Status = core.Status(status)
		err := parseDates([]string{due}, &t.DueDate)
		return t, err
	}, userID)
}

const upsertViolation = `-- name: UpsertViolation :exec
INSERT INTO violations (id, user_id, vehicle_number, offence, location, fine_amount_cents, violation_date, due_date, reminder_days, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    vehicle_number = excluded.vehicle_number,
    offence = excluded.offence,
    location = excluded.location,
    fine_amount_cents = excluded.fine_amount_cents,
    violation_date = excluded.violation_date,
    due_date = excluded.due_date,
    reminder_days = excluded.reminder_days,
    status = excluded.status
`

func (q *Queries) UpsertViolation(ctx context.Context, v core.Violation) error {
	_, err := q.db.ExecContext(ctx, upsertViolation,
		v.ID, v.UserID, v.VehicleNumber, v.Offence, v.Location, v.FineAmount.Cents,
		dateText(v.ViolationDate), dateText(v.DueDate), v.ReminderDays, string(v.Status))
	return err
}

const listViolations = `-- name: ListViolations :many
SELECT id, user_id, vehicle_number, offence, location, fine_amount_cents, violation_date, due_date, reminder_days, status
FROM violations WHERE user_id = ? ORDER BY created_at, rowid
`

func (q *Queries) ListViolations(ctx context.Context, userID string) ([]core.Violation, error) {
	return queryList(ctx, q, listViolations, func(r rowScanner) (core.Violation, error) {
		var v core.Violation
		var on, due, status string
		if err := r.Scan(&v.ID, &v.UserID, &v.VehicleNumber, &v.Offence, &v.Location, &v.FineAmount.Cents,
			&on, &due, &v.ReminderDays, &status); err != nil {
			return v, err
		}
		v.Status = core.Status(status)
		err := parseDates([]string{on, due}, &v.ViolationDate, &v.DueDate)
		return v, err
	}, userID)
}

const upsertDocument = `-- name: UpsertDocument :exec
INSERT INTO vehicle_documents (id, user_id, vehicle_number, kind, number, expiry_date)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    vehicle_number = excluded.vehicle_number,
    kind = excluded.kind,
    number = excluded.number,
    expiry_date = excluded.expiry_date
`

func (q *Queries) UpsertDocument(ctx context.Context, d core.Document) error {
	_, err := q.db.ExecContext(ctx, upsertDocument,
		d.ID, d.UserID, d.VehicleNumber, string(d.Kind), d.Number, dateText(d.ExpiryDate))
	return err
}

const listDocuments = `-- name: ListDocuments :many
SELECT id, user_id, vehicle_number, kind, number, expiry_date
FROM vehicle_documents WHERE user_id = ? ORDER BY created_at, rowid
`

func (q *Queries) ListDocuments(ctx context.Context, userID string) ([]core.Document, error) {
	return queryList(ctx, q, listDocuments, func(r rowScanner) (core.Document, error) {
		var d core.Document
		var kind, expiry string
		if err := r.Scan(&d.ID, &d.UserID, &d.VehicleNumber, &kind, &d.Number, &expiry); err != nil {
			return d, err
		}
		d.Kind = core.DocumentKind(kind)
		err := parseDates([]string{expiry}, &d.ExpiryDate)
		return d, err
	}, userID)
}

const upsertExpense = `-- name: UpsertExpense :exec
INSERT INTO expenses (id, user_id, date, description, amount_cents, category, payment_mode)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    date = excluded.date,
    description = excluded.description,
    amount_cents = excluded.amount_cents,
    category = excluded.category,
    payment_mode = excluded.payment_mode
`

func (q *Queries) UpsertExpense(ctx context.Context, e core.Expense) error {
	_, err := q.db.ExecContext(ctx, upsertExpense,
		e.ID, e.UserID, dateText(e.Date), e.Description, e.Amount.Cents, e.Category, e.PaymentMode)
	return err
}

const listExpensesInRange = `-- name: ListExpensesInRange :many
SELECT id, user_id, date, description, amount_cents, category, payment_mode
FROM expenses
WHERE user_id = ?1
  AND (?2 = '' OR date >= ?2)
  AND (?3 = '' OR date <= ?3)
ORDER BY date, rowid
`

func (q *Queries) ListExpensesInRange(ctx context.Context, userID string, start, end core.Date) ([]core.Expense, error) {
	return queryList(ctx, q, listExpensesInRange, func(r rowScanner) (core.Expense, error) {
		var e core.Expense
		var on string
		if err := r.Scan(&e.ID, &e.UserID, &on, &e.Description, &e.Amount.Cents, &e.Category, &e.PaymentMode); err != nil {
			return e, err
		}
		err := parseDates([]string{on}, &e.Date)
		return e, err
	}, userID, dateText(start), dateText(end))
}

const upsertDebt = `-- name: UpsertDebt :exec
INSERT INTO debts (id, user_id, creditor, amount_cents, due_date, status, note)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    creditor = excluded.creditor,
    amount_cents = excluded.amount_cents,
    due_date = excluded.due_date,
    status = excluded.status,
    note = excluded.note
`

func (q *Queries) UpsertDebt(ctx context.Context, d core.Debt) error {
	_, err := q.db.ExecContext(ctx, upsertDebt,
		d.ID, d.UserID, d.Creditor, d.Amount.Cents, dateText(d.DueDate), string(d.Status), d.Note)
	return err
}

const listDebts = `-- name: ListDebts :many
SELECT id, user_id, creditor, amount_cents, due_date, status, note
FROM debts WHERE user_id = ? ORDER BY created_at, rowid
`

func (q *Queries) ListDebts(ctx context.Context, userID string) ([]core.Debt, error) {
	return queryList(ctx, q, listDebts, func(r rowScanner) (core.Debt, error) {
		var d core.Debt
		var due, status string
		if err := r.Scan(&d.ID, &d.UserID, &d.Creditor, &d.Amount.Cents, &due, &status, &d.Note); err != nil {
			return d, err
		}
		d.Status = core.Status(status)
		err := parseDates([]string{due}, &d.DueDate)
		return d, err
	}, userID)
}

const upsertStock = `-- name: UpsertStock :exec
INSERT INTO stocks (id, user_id, symbol, quantity, buy_price, current_price, status)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    symbol = excluded.symbol,
    quantity = excluded.quantity,
    buy_price = excluded.buy_price,
    current_price = excluded.current_price,
    status = excluded.status
`

func (q *Queries) UpsertStock(ctx context.Context, s core.Stock) error {
	_, err := q.db.ExecContext(ctx, upsertStock,
		s.ID, s.UserID, s.Symbol, s.Quantity, s.BuyPrice, s.CurrentPrice, string(s.Status))
	return err
}

const listStocks = `-- name: ListStocks :many
SELECT id, user_id, symbol, quantity, buy_price, current_price, status
FROM stocks WHERE user_id = ? ORDER BY created_at, rowid
`

func (q *Queries) ListStocks(ctx context.Context, userID string) ([]core.Stock, error) {
	return queryList(ctx, q, listStocks, func(r rowScanner) (core.Stock, error) {
		var s core.Stock
		var status string
		if err := r.Scan(&s.ID, &s.UserID, &s.Symbol, &s.Quantity, &s.BuyPrice, &s.CurrentPrice, &status); err != nil {
			return s, err
		}
		s.Status = core.Status(status)
		return s, nil
	}, userID)
}

const deleteBudget = `-- name: DeleteBudget :exec
DELETE FROM budgets WHERE user_id = ? AND year = ? AND month = ?
`

func (q *Queries) DeleteBudget(ctx context.Context, userID string, year, month int) error {
	_, err := q.db.ExecContext(ctx, deleteBudget, userID, year, month)
	return err
}

const insertBudgetLine = `-- name: InsertBudgetLine :exec
INSERT INTO budgets (user_id, year, month, category, amount_cents) VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) InsertBudgetLine(ctx context.Context, userID string, year, month int, category string, cents int64) error {
	_, err := q.db.ExecContext(ctx, insertBudgetLine, userID, year, month, category, cents)
	return err
}

type BudgetLine struct {
	Category    string
	AmountCents int64
}

const listBudgetLines = `-- name: ListBudgetLines :many
SELECT category, amount_cents FROM budgets WHERE user_id = ? AND year = ? AND month = ? ORDER BY category
`

func (q *Queries) ListBudgetLines(ctx context.Context, userID string, year, month int) ([]BudgetLine, error) {
	return queryList(ctx, q, listBudgetLines, func(r rowScanner) (BudgetLine, error) {
		var b BudgetLine
		err := r.Scan(&b.Category, &b.AmountCents)
		return b, err
	}, userID, year, month)
}

const insertReminder = `-- name: InsertReminder :execresult
INSERT INTO reminders (id, user_id, kind, record_id, reminder_key, due_date, amount_cents, message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(reminder_key) DO NOTHING
`

func (q *Queries) InsertReminder(ctx context.Context, r core.Reminder) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertReminder,
		r.ID, r.UserID, string(r.Kind), r.RecordID, r.Key, dateText(r.DueDate), r.Amount.Cents, r.Message)
}

const reminderColumns = `id, user_id, kind, record_id, reminder_key, due_date, amount_cents, message`

func scanReminder(r rowScanner) (core.Reminder, error) {
	var rem core.Reminder
	var kind, due string
	if err := r.Scan(&rem.ID, &rem.UserID, &kind, &rem.RecordID, &rem.Key, &due, &rem.Amount.Cents, &rem.Message); err != nil {
		return rem, err
	}
	rem.Kind = core.ReminderKind(kind)
	err := parseDates([]string{due}, &rem.DueDate)
	return rem, err
}

const getReminderByKey = `-- name: GetReminderByKey :one
SELECT ` + reminderColumns + ` FROM reminders WHERE reminder_key = ?
`

func (q *Queries) GetReminderByKey(ctx context.Context, key string) (core.Reminder, error) {
	return scanReminder(q.db.QueryRowContext(ctx, getReminderByKey, key))
}

const listReminders = `-- name: ListReminders :many
SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = ? ORDER BY due_date, rowid
`

func (q *Queries) ListReminders(ctx context.Context, userID string) ([]core.Reminder, error) {
	return queryList(ctx, q, listReminders, scanReminder, userID)
}

const listUsers = `-- name: ListUsers :many
SELECT user_id FROM loans
UNION SELECT user_id FROM sips
UNION SELECT user_id FROM taxes
UNION SELECT user_id FROM violations
UNION SELECT user_id FROM vehicle_documents
UNION SELECT user_id FROM expenses
UNION SELECT user_id FROM debts
UNION SELECT user_id FROM stocks
UNION SELECT user_id FROM budgets
ORDER BY 1
`

func (q *Queries) ListUsers(ctx context.Context) ([]string, error) {
	return queryList(ctx, q, listUsers, func(r rowScanner) (string, error) {
		var id string
		err := r.Scan(&id)
		return id, err
	})
}
