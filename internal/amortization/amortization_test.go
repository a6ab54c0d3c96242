package amortization

import (
	"errors"
	"math"
	"testing"

	"fintrack/internal/core"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEMI(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		tenure    int
		want      float64
		tol       float64
	}{
		{"home loan", 500000, 10, 60, 10623.52, 0.005},
		{"single month", 1000, 12, 1, 1010, 1e-9},
		{"zero rate", 120000, 0, 12, 10000, 0},
		{"zero rate uneven", 100, 0, 3, 100.0 / 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EMI(tt.principal, tt.rate, tt.tenure)
			if err != nil {
				t.Fatalf("EMI() error = %v", err)
			}
			if !approx(got, tt.want, tt.tol) {
				t.Errorf("EMI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEMIInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		tenure    int
		want      error
	}{
		{"zero principal", 0, 10, 12, core.ErrInvalidAmount},
		{"negative principal", -5, 10, 12, core.ErrInvalidAmount},
		{"NaN principal", math.NaN(), 10, 12, core.ErrInvalidAmount},
		{"zero tenure", 1000, 10, 0, core.ErrInvalidTenure},
		{"negative rate", 1000, -1, 12, core.ErrInvalidRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EMI(tt.principal, tt.rate, tt.tenure)
			if !errors.Is(err, tt.want) || !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("EMI() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(500000, 10, 60)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(s.TotalPayable, 637411, 1) {
		t.Errorf("TotalPayable = %v", s.TotalPayable)
	}
	if !approx(s.TotalInterest, 137411, 1) {
		t.Errorf("TotalInterest = %v", s.TotalInterest)
	}
}

func TestScheduleProperties(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		tenure    int
	}{
		{500000, 10, 60},
		{250000, 0, 24},
		{1e7, 8.5, 240},
		{5000, 36, 1},
	}
	for _, c := range cases {
		rows, err := Rows(c.principal, c.rate, c.tenure)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != c.tenure {
			t.Fatalf("len(rows) = %d, want %d", len(rows), c.tenure)
		}
		var sum float64
		for i, r := range rows {
			if r.Month != i+1 {
				t.Fatalf("row %d has month %d", i, r.Month)
			}
			if r.Balance < 0 {
				t.Fatalf("negative balance at month %d", r.Month)
			}
			sum += r.Principal
		}
		if math.Abs(sum-c.principal)/c.principal > 1e-6 {
			t.Errorf("sum of principal = %v, want %v", sum, c.principal)
		}
		if last := rows[len(rows)-1]; last.Balance > BalanceTolerance {
			t.Errorf("final balance = %v", last.Balance)
		}
	}
}

func TestScheduleIsRestartable(t *testing.T) {
	seq, err := Schedule(500000, 10, 60)
	if err != nil {
		t.Fatal(err)
	}
	var first, second []Row
	for r := range seq {
		first = append(first, r)
	}
	for r := range seq {
		second = append(second, r)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs between runs", i+1)
		}
	}
}

func TestScheduleEarlyBreak(t *testing.T) {
	seq, _ := Schedule(500000, 10, 60)
	n := 0
	for r := range seq {
		n++
		if r.Month == 3 {
			break
		}
	}
	if n != 3 {
		t.Fatalf("consumed %d rows, want 3", n)
	}
}

func TestEarlyPayoff(t *testing.T) {
	t.Run("zero rate halves the tenure", func(t *testing.T) {
		res, err := EarlyPayoff(120000, 0, 12, 10000)
		if err != nil {
			t.Fatal(err)
		}
		if res.MonthsToPayoff != 6 || res.MonthsSaved != 6 || !res.PaidOff {
			t.Errorf("got %+v", res)
		}
		if res.TotalInterestPaid != 0 || res.TotalInterestSaved != 0 {
			t.Errorf("interest should be zero, got %+v", res)
		}
	})

	t.Run("extra payment saves interest", func(t *testing.T) {
		res, err := EarlyPayoff(500000, 10, 60, 5000)
		if err != nil {
			t.Fatal(err)
		}
		base, _ := Summarize(500000, 10, 60)
		if !res.PaidOff || res.MonthsToPayoff >= 60 {
			t.Fatalf("expected early payoff, got %+v", res)
		}
		if res.TotalInterestSaved <= 0 {
			t.Fatalf("expected savings, got %+v", res)
		}
		if !approx(res.TotalInterestPaid+res.TotalInterestSaved, base.TotalInterest, 1e-6) {
			t.Errorf("paid + saved = %v, want %v", res.TotalInterestPaid+res.TotalInterestSaved, base.TotalInterest)
		}
	})

	t.Run("no extra reproduces schedule", func(t *testing.T) {
		res, err := EarlyPayoff(500000, 10, 60, 0)
		if err != nil {
			t.Fatal(err)
		}
		if res.MonthsToPayoff != 60 || !res.PaidOff || !approx(res.TotalInterestSaved, 0, 1e-4) {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("negative extra never pays off", func(t *testing.T) {
		res, err := EarlyPayoff(500000, 10, 60, -20000)
		if err != nil {
			t.Fatal(err)
		}
		if res.PaidOff || res.MonthsToPayoff != 60 || res.RemainingBalance <= 0 {
			t.Errorf("expected non-convergent result, got %+v", res)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		if _, err := EarlyPayoff(500000, 10, 0, 100); !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
		if _, err := EarlyPayoff(500000, 10, 12, math.Inf(1)); !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("expected invalid input for infinite extra, got %v", err)
		}
	})
}

func TestDeterministic(t *testing.T) {
	a, _ := EMI(734512.77, 9.35, 97)
	b, _ := EMI(734512.77, 9.35, 97)
	if a != b {
		t.Fatalf("EMI not deterministic: %v vs %v", a, b)
	}
}
