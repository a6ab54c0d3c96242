package tax

import (
	"errors"
	"math"
	"testing"

	"fintrack/internal/core"
)

func TestBracketRate(t *testing.T) {
	tests := []struct {
		income float64
		want   float64
	}{
		{0, 0},
		{250000, 0},
		{250001, 5},
		{500000, 5},
		{700000, 20},
		{1000000, 20},
		{1000001, 30},
		{5e7, 30},
	}
	for _, tt := range tests {
		got, err := BracketRate(tt.income, OldRegime)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("BracketRate(%v) = %v, want %v", tt.income, got, tt.want)
		}
	}
}

func TestBracketRateAboveFiniteTable(t *testing.T) {
	table := []Bracket{{100, 1}, {200, 2}}
	got, err := BracketRate(500, table)
	if err != nil || got != 2 {
		t.Fatalf("got %v, %v; want last rate 2", got, err)
	}
}

func TestBracketRateInvalid(t *testing.T) {
	cases := map[string][]Bracket{
		"empty":      nil,
		"descending": {{500, 5}, {100, 1}},
		"duplicate":  {{100, 1}, {100, 2}},
		"negative":   {{100, -1}},
		"NaN bound":  {{math.NaN(), 1}},
	}
	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := BracketRate(10, table); !errors.Is(err, core.ErrInvalidBrackets) {
				t.Errorf("expected ErrInvalidBrackets, got %v", err)
			}
		})
	}
	if _, err := BracketRate(-1, OldRegime); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected invalid input for negative income, got %v", err)
	}
}

func TestCompute(t *testing.T) {
	c, err := Compute(700000, 20, 150000)
	if err != nil {
		t.Fatal(err)
	}
	if c.OriginalTax != 140000 || c.FinalTax != 110000 || c.Savings != 30000 {
		t.Errorf("got %+v", c)
	}
}

func TestComputeDeductionsAboveIncome(t *testing.T) {
	c, err := Compute(100000, 5, 250000)
	if err != nil {
		t.Fatal(err)
	}
	if c.FinalTax != 0 || c.Savings != 5000 {
		t.Errorf("got %+v", c)
	}
}

func TestComputeInvalid(t *testing.T) {
	if _, err := Compute(100, -1, 0); !errors.Is(err, core.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
	if _, err := Compute(100, 5, -1); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestComputeWithBrackets(t *testing.T) {
	c, err := ComputeWithBrackets(700000, 150000, OldRegime)
	if err != nil {
		t.Fatal(err)
	}
	if c.RatePercent != 20 || c.FinalTax != 110000 {
		t.Errorf("got %+v", c)
	}
}
