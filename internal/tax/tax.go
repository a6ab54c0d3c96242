// Package tax determines bracket rates, deduction-adjusted liabilities and the
// advance-tax installment calendar.
package tax

import (
	"math"

	"fintrack/internal/core"
)

// Bracket applies RatePercent to any income up to and including UpperBound.
// The last bracket of a table conventionally has an infinite upper bound.
type Bracket struct {
	UpperBound  float64 `json:"upper_bound"`
	RatePercent float64 `json:"rate_percent"`
}

// OldRegime is the default bracket table.
var OldRegime = []Bracket{
	{UpperBound: 250000, RatePercent: 0},
	{UpperBound: 500000, RatePercent: 5},
	{UpperBound: 1000000, RatePercent: 20},
	{UpperBound: math.Inf(1), RatePercent: 30},
}

// Computation is the tax due on an income with and without deductions.
type Computation struct {
	TaxableIncome float64 `json:"taxable_income"`
	RatePercent   float64 `json:"rate_percent"`
	Deductions    float64 `json:"deductions"`
	OriginalTax   float64 `json:"original_tax"`
	FinalTax      float64 `json:"final_tax"`
	Savings       float64 `json:"savings"`
}

// ValidateBrackets checks that a table is non-empty with strictly ascending
// bounds and non-negative rates.
func ValidateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return core.ErrInvalidBrackets
	}
	for i, b := range brackets {
		if math.IsNaN(b.UpperBound) || !(b.RatePercent >= 0) {
			return core.ErrInvalidBrackets
		}
		if i > 0 && !(b.UpperBound > brackets[i-1].UpperBound) {
			return core.ErrInvalidBrackets
		}
	}
	return nil
}

// BracketRate returns the rate of the first bracket whose upper bound is at
// least income. The whole income is taxed at that single rate; brackets are
// not layered. Income above every bound takes the last bracket's rate.
func BracketRate(income float64, brackets []Bracket) (float64, error) {
	if !(income >= 0) || math.IsInf(income, 0) {
		return 0, core.ErrInvalidAmount
	}
	if err := ValidateBrackets(brackets); err != nil {
		return 0, err
	}
	for _, b := range brackets {
		if income <= b.UpperBound {
			return b.RatePercent, nil
		}
	}
	return brackets[len(brackets)-1].RatePercent, nil
}

// Compute applies ratePercent to taxableIncome before and after deductions.
// Deductions larger than the income floor the final tax at zero.
func Compute(taxableIncome, ratePercent, deductions float64) (Computation, error) {
	switch {
	case !(taxableIncome >= 0) || math.IsInf(taxableIncome, 0):
		return Computation{}, core.ErrInvalidAmount
	case !(ratePercent >= 0) || math.IsInf(ratePercent, 0):
		return Computation{}, core.ErrInvalidRate
	case !(deductions >= 0) || math.IsInf(deductions, 0):
		return Computation{}, core.Invalidf("deductions must not be negative")
	}
	original := taxableIncome * ratePercent / 100
	final := max(0, (taxableIncome-deductions)*ratePercent/100)
	return Computation{
		TaxableIncome: taxableIncome,
		RatePercent:   ratePercent,
		Deductions:    deductions,
		OriginalTax:   original,
		FinalTax:      final,
		Savings:       max(0, original-final),
	}, nil
}

// ComputeWithBrackets looks the rate up in brackets and then calls Compute.
func ComputeWithBrackets(taxableIncome, deductions float64, brackets []Bracket) (Computation, error) {
	rate, err := BracketRate(taxableIncome, brackets)
	if err != nil {
		return Computation{}, err
	}
	return Compute(taxableIncome, rate, deductions)
}
