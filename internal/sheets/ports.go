package sheets

import (
	"context"

	"fintrack/internal/amortization"
	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	LoanStore interface {
		SaveLoan(ctx context.Context, l core.Loan) (core.Loan, error)
		ListLoans(ctx context.Context, userID string) ([]core.Loan, error)
	}

	SIPStore interface {
		SaveSIP(ctx context.Context, s core.SIP) (core.SIP, error)
		ListSIPs(ctx context.Context, userID string) ([]core.SIP, error)
	}

	TaxStore interface {
		SaveTax(ctx context.Context, t core.TaxEntry) (core.TaxEntry, error)
		ListTaxes(ctx context.Context, userID string) ([]core.TaxEntry, error)
	}

	ViolationStore interface {
		SaveViolation(ctx context.Context, v core.Violation) (core.Violation, error)
		ListViolations(ctx context.Context, userID string) ([]core.Violation, error)
	}

	DocumentStore interface {
		SaveDocument(ctx context.Context, d core.Document) (core.Document, error)
		ListDocuments(ctx context.Context, userID string) ([]core.Document, error)
	}

	// ExpenseStore lists expenses whose date falls inside [start, end].
	ExpenseStore interface {
		SaveExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		ListExpenses(ctx context.Context, userID string, start, end core.Date) ([]core.Expense, error)
	}

	DebtStore interface {
		SaveDebt(ctx context.Context, d core.Debt) (core.Debt, error)
		ListDebts(ctx context.Context, userID string) ([]core.Debt, error)
	}

	StockStore interface {
		SaveStock(ctx context.Context, s core.Stock) (core.Stock, error)
		ListStocks(ctx context.Context, userID string) ([]core.Stock, error)
	}

	// BudgetStore returns core.ErrNotFound when no budget is set for the month.
	BudgetStore interface {
		SetBudget(ctx context.Context, b core.Budget) error
		GetBudget(ctx context.Context, userID string, year, month int) (core.Budget, error)
	}

	// ReminderStore keeps reminders unique by key. SaveReminder reports
	// created=false when a reminder with the same key already exists.
	ReminderStore interface {
		SaveReminder(ctx context.Context, r core.Reminder) (saved core.Reminder, created bool, err error)
		ListReminders(ctx context.Context, userID string) ([]core.Reminder, error)
	}

	// UserLister enumerates users owning at least one record.
	UserLister interface {
		ListUsers(ctx context.Context) ([]string, error)
	}

	// RecordStore is everything the services need from a backend.
	RecordStore interface {
		LoanStore
		SIPStore
		TaxStore
		ViolationStore
		DocumentStore
		ExpenseStore
		DebtStore
		StockStore
		BudgetStore
		ReminderStore
		UserLister
	}

	// ReminderWriter appends reminders to an external sheet.
	ReminderWriter interface {
		AppendReminder(ctx context.Context, r core.Reminder) (rowRef string, err error)
	}

	// ScheduleExporter writes a loan's amortization schedule to an external sheet.
	ScheduleExporter interface {
		ExportSchedule(ctx context.Context, loan core.Loan, rows []amortization.Row) (sheetName string, err error)
	}
)
