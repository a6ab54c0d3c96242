package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amortization"
	"fintrack/internal/core"
	"fintrack/internal/investment"
	"fintrack/internal/sheets/memory"
)

type fakeExporter struct {
	loan core.Loan
	rows []amortization.Row
	err  error
}

func (f *fakeExporter) ExportSchedule(_ context.Context, loan core.Loan, rows []amortization.Row) (string, error) {
	f.loan, f.rows = loan, rows
	if f.err != nil {
		return "", f.err
	}
	return "Schedule " + loan.Lender, nil
}

func rupees(r int64) core.Money { return core.Money{Cents: r * 100} }

func TestRecordService_CreateLoan(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewRecordService(store, nil, nil)

	saved, err := svc.CreateLoan(ctx, core.Loan{
		UserID:       "u1",
		Lender:       "HDFC",
		Principal:    rupees(100000),
		AnnualRate:   12,
		TenureMonths: 12,
		StartDate:    core.NewDate(2024, 1, 31),
	})
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if saved.EMI.Cents != 888488 {
		t.Errorf("EMI = %d cents, want 888488", saved.EMI.Cents)
	}
	if saved.TotalPayable.Cents < saved.Principal.Cents {
		t.Errorf("total payable %v below principal", saved.TotalPayable)
	}
	if !saved.DueDate.Equal(core.NewDate(2025, 1, 31)) {
		t.Errorf("due date = %s, want 2025-01-31", saved.DueDate)
	}
	if saved.Status != core.StatusActive {
		t.Errorf("status = %q, want Active", saved.Status)
	}

	loans, _ := store.ListLoans(ctx, "u1")
	if len(loans) != 1 || loans[0].EMI != saved.EMI {
		t.Errorf("stored loans = %+v", loans)
	}
}

func TestRecordService_CreateIgnoresCallerID(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewRecordService(store, nil, nil)

	first, err := svc.CreateLoan(ctx, core.Loan{UserID: "u1", Lender: "HDFC", Principal: rupees(100000), AnnualRate: 12, TenureMonths: 12})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateLoan(ctx, core.Loan{
		ID: first.ID, UserID: "u1", Lender: "SBI", Principal: rupees(5000), AnnualRate: 10, TenureMonths: 6,
		EMI: rupees(1), TotalPayable: rupees(1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID == first.ID {
		t.Fatalf("create reused caller ID %s", first.ID)
	}
	if second.EMI == rupees(1) {
		t.Errorf("derived EMI taken from the request: %v", second.EMI)
	}

	loans, _ := store.ListLoans(ctx, "u1")
	if len(loans) != 2 {
		t.Fatalf("stored loans = %d, want 2", len(loans))
	}
	for _, l := range loans {
		if l.ID == first.ID && l.Lender != "HDFC" {
			t.Errorf("first loan overwritten: %+v", l)
		}
	}

	debt, err := svc.CreateDebt(ctx, core.Debt{ID: "chosen", UserID: "u1", Creditor: "Ravi", Amount: rupees(500), DueDate: core.NewDate(2024, 7, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if debt.ID == "chosen" {
		t.Error("debt kept the caller ID")
	}
}

func TestRecordService_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewRecordService(store, nil, nil)

	tests := []struct {
		name string
		call func() error
	}{
		{"loan without tenure", func() error {
			_, err := svc.CreateLoan(ctx, core.Loan{UserID: "u1", Lender: "SBI", Principal: rupees(1000), AnnualRate: 9})
			return err
		}},
		{"sip with negative step-up", func() error {
			_, err := svc.CreateSIP(ctx, core.SIP{UserID: "u1", FundName: "Index", MonthlyAmount: rupees(500), AnnualRate: 12, DurationMonths: 12, StepUpPercent: -5})
			return err
		}},
		{"tax with malformed year", func() error {
			_, err := svc.CreateTax(ctx, core.TaxEntry{UserID: "u1", FinancialYear: "next year", TaxableIncome: rupees(500000)})
			return err
		}},
		{"violation without date", func() error {
			_, err := svc.CreateViolation(ctx, core.Violation{UserID: "u1", VehicleNumber: "KA01AB1234", FineAmount: rupees(500)})
			return err
		}},
		{"expense without category", func() error {
			_, err := svc.CreateExpense(ctx, core.Expense{UserID: "u1", Date: core.NewDate(2024, 1, 1), Description: "Tea", Amount: rupees(20)})
			return err
		}},
		{"stock without quantity", func() error {
			_, err := svc.CreateStock(ctx, core.Stock{UserID: "u1", Symbol: "INFY", BuyPrice: 1500})
			return err
		}},
		{"budget with bad month", func() error {
			return svc.SetBudget(ctx, core.Budget{UserID: "u1", Year: 2024, Month: 13})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if users, _ := store.ListUsers(ctx); len(users) != 0 {
		t.Errorf("invalid records must not be stored, users = %v", users)
	}
}

func TestRecordService_CreateTax(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.New(), nil, nil)

	tests := []struct {
		name      string
		entry     core.TaxEntry
		wantRate  float64
		wantCents int64
	}{
		{
			name:      "rate looked up from slabs",
			entry:     core.TaxEntry{UserID: "u1", FinancialYear: "2024-25", TaxableIncome: rupees(600000), Deductions: rupees(150000)},
			wantRate:  20,
			wantCents: 9000000,
		},
		{
			name:      "explicit rate kept",
			entry:     core.TaxEntry{UserID: "u1", FinancialYear: "2024-25", TaxableIncome: rupees(600000), RatePercent: 10},
			wantRate:  10,
			wantCents: 6000000,
		},
		{
			name:      "deductions above income floor at zero",
			entry:     core.TaxEntry{UserID: "u1", FinancialYear: "2024", TaxableIncome: rupees(400000), Deductions: rupees(500000)},
			wantRate:  5,
			wantCents: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved, err := svc.CreateTax(ctx, tt.entry)
			if err != nil {
				t.Fatalf("CreateTax: %v", err)
			}
			if saved.RatePercent != tt.wantRate {
				t.Errorf("rate = %v, want %v", saved.RatePercent, tt.wantRate)
			}
			if saved.TaxAmount.Cents != tt.wantCents {
				t.Errorf("tax = %d cents, want %d", saved.TaxAmount.Cents, tt.wantCents)
			}
			if saved.Status != core.StatusPending {
				t.Errorf("status = %q, want Pending", saved.Status)
			}
		})
	}
}

func TestRecordService_CreateSIPAndViolation(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.New(), nil, nil)

	sip, err := svc.CreateSIP(ctx, core.SIP{UserID: "u1", FundName: "Nifty 50", MonthlyAmount: rupees(1000), AnnualRate: 12, DurationMonths: 12})
	if err != nil {
		t.Fatalf("CreateSIP: %v", err)
	}
	want, _ := investment.ProjectSIP(1000, 12, 12)
	if sip.MaturityValue != core.MoneyFromFloat(want.MaturityValue) {
		t.Errorf("maturity = %v, want %v", sip.MaturityValue, core.MoneyFromFloat(want.MaturityValue))
	}

	v, err := svc.CreateViolation(ctx, core.Violation{UserID: "u1", VehicleNumber: "KA01AB1234", Offence: "Speeding", FineAmount: rupees(1000), ViolationDate: core.NewDate(2024, 5, 1)})
	if err != nil {
		t.Fatalf("CreateViolation: %v", err)
	}
	if !v.DueDate.Equal(core.NewDate(2024, 5, 31)) {
		t.Errorf("due date = %s, want 2024-05-31", v.DueDate)
	}

	own := core.NewDate(2024, 5, 20)
	v2, _ := svc.CreateViolation(ctx, core.Violation{UserID: "u1", VehicleNumber: "KA01AB1234", FineAmount: rupees(500), ViolationDate: core.NewDate(2024, 5, 1), DueDate: own})
	if !v2.DueDate.Equal(own) {
		t.Errorf("explicit due date overwritten: %s", v2.DueDate)
	}
}

func TestRecordService_Views(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.New(), nil, nil)
	asOf := core.NewDate(2024, 7, 15)

	if _, err := svc.CreateViolation(ctx, core.Violation{UserID: "u1", VehicleNumber: "KA01", FineAmount: rupees(1000), ViolationDate: core.NewDate(2024, 5, 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateViolation(ctx, core.Violation{UserID: "u1", VehicleNumber: "KA01", FineAmount: rupees(500), ViolationDate: core.NewDate(2024, 5, 1), Status: core.StatusPaid}); err != nil {
		t.Fatal(err)
	}
	violations, err := svc.ViolationViews(ctx, "u1", asOf)
	if err != nil {
		t.Fatalf("ViolationViews: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("got %d violations", len(violations))
	}
	// 45 days late: two started periods.
	if a := violations[0].Assessment; a.Penalty != 200 || !a.Overdue || a.TotalPayable != 1200 {
		t.Errorf("pending violation assessment = %+v", a)
	}
	if a := violations[1].Assessment; a.Penalty != 0 || a.Overdue {
		t.Errorf("paid violation must not accrue: %+v", a)
	}

	if _, err := svc.CreateLoan(ctx, core.Loan{UserID: "u1", Lender: "SBI", Principal: rupees(50000), AnnualRate: 10, TenureMonths: 6, DueDate: core.NewDate(2024, 7, 1)}); err != nil {
		t.Fatal(err)
	}
	loans, _ := svc.LoanViews(ctx, "u1", asOf)
	if len(loans) != 1 || !loans[0].Overdue {
		t.Errorf("loan past due should be overdue: %+v", loans)
	}

	if _, err := svc.CreateSIP(ctx, core.SIP{UserID: "u1", FundName: "Flexi", MonthlyAmount: rupees(2000), AnnualRate: 12, DurationMonths: 24, StartDate: core.NewDate(2024, 1, 15)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateSIP(ctx, core.SIP{UserID: "u1", FundName: "Undated", MonthlyAmount: rupees(2000), AnnualRate: 12, DurationMonths: 24}); err != nil {
		t.Fatal(err)
	}
	sips, _ := svc.SIPViews(ctx, "u1", asOf)
	if len(sips) != 2 || sips[0].Progress == nil || sips[0].Progress.MonthsElapsed != 6 {
		t.Errorf("sip progress = %+v", sips)
	}
	if sips[1].Progress != nil {
		t.Error("undated SIP should carry no progress")
	}

	if _, err := svc.CreateStock(ctx, core.Stock{UserID: "u1", Symbol: "TCS", Quantity: 10, BuyPrice: 100, CurrentPrice: 125}); err != nil {
		t.Fatal(err)
	}
	stocks, _ := svc.StockViews(ctx, "u1")
	if len(stocks) != 1 || stocks[0].Position.GainLoss != 250 || stocks[0].Status != core.StatusHolding {
		t.Errorf("stock view = %+v", stocks)
	}

	if _, err := svc.CreateDocument(ctx, core.Document{UserID: "u1", VehicleNumber: "KA01", Kind: core.DocInsurance, ExpiryDate: core.NewDate(2024, 7, 20)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateDocument(ctx, core.Document{UserID: "u1", VehicleNumber: "KA01", Kind: core.DocPollution, ExpiryDate: core.NewDate(2025, 1, 1)}); err != nil {
		t.Fatal(err)
	}
	alerts, _ := svc.DocumentAlerts(ctx, "u1", asOf)
	if len(alerts) != 1 || alerts[0].Kind != core.DocInsurance || alerts[0].DaysLeft != 5 {
		t.Errorf("alerts = %+v", alerts)
	}
	if empty, _ := svc.DocumentAlerts(ctx, "nobody", asOf); empty == nil {
		t.Error("alerts should be an empty slice, not nil")
	}
}

func TestRecordService_ExportLoanSchedule(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	if _, err := NewRecordService(store, nil, nil).ExportLoanSchedule(ctx, "u1", "x"); !errors.Is(err, ErrExportUnavailable) {
		t.Fatalf("expected ErrExportUnavailable, got %v", err)
	}

	exp := &fakeExporter{}
	svc := NewRecordService(store, exp, nil)
	loan, err := svc.CreateLoan(ctx, core.Loan{UserID: "u1", Lender: "ICICI", Principal: rupees(120000), AnnualRate: 0, TenureMonths: 12})
	if err != nil {
		t.Fatal(err)
	}

	ref, err := svc.ExportLoanSchedule(ctx, "u1", loan.ID)
	if err != nil {
		t.Fatalf("ExportLoanSchedule: %v", err)
	}
	if ref != "Schedule ICICI" || len(exp.rows) != 12 || exp.loan.ID != loan.ID {
		t.Errorf("ref=%q rows=%d loan=%s", ref, len(exp.rows), exp.loan.ID)
	}
	if exp.rows[0].Principal != 10000 || exp.rows[0].Interest != 0 {
		t.Errorf("zero-rate first row = %+v", exp.rows[0])
	}

	if _, err := svc.ExportLoanSchedule(ctx, "u1", "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	exp.err = errors.New("quota exceeded")
	if _, err := svc.ExportLoanSchedule(ctx, "u1", loan.ID); err == nil {
		t.Error("expected exporter error to surface")
	}
}
