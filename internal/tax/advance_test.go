package tax

import (
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestAdvanceTaxSchedule(t *testing.T) {
	got := AdvanceTaxSchedule(2024)
	want := []struct {
		quarter string
		date    string
		pct     float64
	}{
		{"Q1", "2024-06-15", 15},
		{"Q2", "2024-09-15", 45},
		{"Q3", "2024-12-15", 75},
		{"Q4", "2025-03-15", 100},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i, w := range want {
		if got[i].Quarter != w.quarter || got[i].DueDate.String() != w.date || got[i].CumulativePercent != w.pct {
			t.Errorf("installment %d = %+v, want %+v", i, got[i], w)
		}
		if i > 0 && !got[i].DueDate.After(got[i-1].DueDate) {
			t.Errorf("installment %d not after %d", i, i-1)
		}
	}
}

func TestInstallmentAmounts(t *testing.T) {
	amounts, err := InstallmentAmounts(AdvanceTaxSchedule(2024), 100000)
	if err != nil {
		t.Fatal(err)
	}
	payable := []float64{15000, 30000, 30000, 25000}
	for i, a := range amounts {
		if a.Payable != payable[i] {
			t.Errorf("%s payable = %v, want %v", a.Quarter, a.Payable, payable[i])
		}
	}
	if amounts[3].Cumulative != 100000 {
		t.Errorf("final cumulative = %v", amounts[3].Cumulative)
	}
}

func TestNextInstallment(t *testing.T) {
	schedule := AdvanceTaxSchedule(2024)
	tests := []struct {
		asOf   string
		want   string
		wantOK bool
	}{
		{"2024-04-01", "Q1", true},
		{"2024-06-15", "Q1", true},
		{"2024-06-16", "Q2", true},
		{"2025-01-10", "Q4", true},
		{"2025-03-16", "", false},
	}
	for _, tt := range tests {
		got, ok := NextInstallment(schedule, core.MustParseDate(tt.asOf))
		if ok != tt.wantOK || got.Quarter != tt.want {
			t.Errorf("NextInstallment(%s) = %s %v, want %s %v", tt.asOf, got.Quarter, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseFinancialYear(t *testing.T) {
	good := map[string]int{"2024-25": 2024, "2024-2025": 2024, "2099-00": 2099, " 2023 ": 2023}
	for in, want := range good {
		got, err := ParseFinancialYear(in)
		if err != nil || got != want {
			t.Errorf("ParseFinancialYear(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "24-25", "2024-26", "2024-2026", "2024-5", "abcd-ef"} {
		if _, err := ParseFinancialYear(in); err == nil {
			t.Errorf("ParseFinancialYear(%q) expected error", in)
		}
	}
}

func TestFinancialYearOf(t *testing.T) {
	if got := FinancialYearOf(core.NewDate(2025, 3, 31)); got != 2024 {
		t.Errorf("got %d", got)
	}
	if got := FinancialYearOf(core.NewDate(2025, 4, 1)); got != 2025 {
		t.Errorf("got %d", got)
	}
	if got := FormatFinancialYear(2024); got != "2024-25" {
		t.Errorf("got %s", got)
	}
}

func TestAssess(t *testing.T) {
	entry := core.TaxEntry{
		UserID:          "u1",
		FinancialYear:   "2024-25",
		TaxableIncome:   core.Money{Cents: 70_000_000},
		RatePercent:     20,
		Deductions:      core.Money{Cents: 15_000_000},
		DueDate:         core.NewDate(2025, 7, 31),
		Status:          core.StatusPending,
		AdvanceTaxPayer: true,
	}
	a, err := Assess(entry, core.NewDate(2024, 8, 1))
	if err != nil {
		t.Fatal(err)
	}
	if a.Computation.FinalTax != 110000 {
		t.Errorf("FinalTax = %v", a.Computation.FinalTax)
	}
	if a.NextInstallment == nil || a.NextInstallment.Quarter != "Q2" || a.NextPayable != 33000 {
		t.Errorf("next installment = %+v payable %v", a.NextInstallment, a.NextPayable)
	}
	if a.DaysRemaining == nil || *a.DaysRemaining != 364 || a.Overdue {
		t.Errorf("days remaining = %v overdue %v", a.DaysRemaining, a.Overdue)
	}

	entry.Status = core.StatusPaid
	a, _ = Assess(entry, core.NewDate(2025, 9, 1))
	if a.Overdue || a.DaysRemaining != nil || a.NextInstallment != nil {
		t.Errorf("paid entries must not accrue: %+v", a)
	}

	entry.Status = core.StatusPending
	a, _ = Assess(entry, core.NewDate(2025, 8, 2))
	if !a.Overdue || *a.DaysRemaining != -2 {
		t.Errorf("expected overdue by 2 days, got %+v", a)
	}
}

func TestAssessInstallmentEdgeCases(t *testing.T) {
	entry := core.TaxEntry{
		UserID:          "u1",
		FinancialYear:   "2024-25",
		TaxableIncome:   core.Money{Cents: 10_000_000},
		RatePercent:     20,
		Deductions:      core.Money{Cents: 50_000_000},
		Status:          core.StatusPending,
		AdvanceTaxPayer: true,
	}
	a, err := Assess(entry, core.NewDate(2024, 8, 1))
	if err != nil {
		t.Fatalf("deductions above income: %v", err)
	}
	if a.Computation.FinalTax != 0 || a.NextPayable != 0 || a.NextInstallment == nil {
		t.Errorf("zero liability = %+v", a)
	}

	entry.FinancialYear = "2024-26"
	if _, err := Assess(entry, core.NewDate(2024, 8, 1)); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
