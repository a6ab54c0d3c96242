// Package investment projects systematic investment plans and values equity
// holdings. Contributions are made at the start of each month (annuity due).
package investment

import (
	"iter"
	"math"

	"fintrack/internal/amortization"
	"fintrack/internal/core"
)

// Projection is the outcome of a SIP at maturity.
type Projection struct {
	MaturityValue float64 `json:"maturity_value"`
	TotalInvested float64 `json:"total_invested"`
	TotalGains    float64 `json:"total_gains"`
}

// Contribution is one monthly installment of a SIP and its value at maturity.
type Contribution struct {
	Month       int     `json:"month"`
	Amount      float64 `json:"amount"`
	FutureValue float64 `json:"future_value"`
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validate(amount, annualRatePercent float64, months int) error {
	switch {
	case !(amount > 0) || !finite(amount):
		return core.ErrInvalidAmount
	case !(annualRatePercent >= 0) || !finite(annualRatePercent):
		return core.ErrInvalidRate
	case months < 1:
		return core.ErrInvalidTenure
	}
	return nil
}

// annuityDueFactor is the value at maturity of one unit paid at the start of
// each of n months, compounded monthly at r.
func annuityDueFactor(r float64, n int) float64 {
	if r == 0 {
		return float64(n)
	}
	return (math.Pow(1+r, float64(n)) - 1) / r * (1 + r)
}

// ProjectSIP returns the future value of a fixed monthly SIP.
func ProjectSIP(monthlyAmount, annualRatePercent float64, months int) (Projection, error) {
	if err := validate(monthlyAmount, annualRatePercent, months); err != nil {
		return Projection{}, err
	}
	r := amortization.MonthlyRate(annualRatePercent)
	fv := monthlyAmount * annuityDueFactor(r, months)
	invested := monthlyAmount * float64(months)
	return Projection{MaturityValue: fv, TotalInvested: invested, TotalGains: fv - invested}, nil
}

// RequiredMonthlySIP is the inverse of ProjectSIP: the monthly amount that
// grows to target over the given months.
func RequiredMonthlySIP(target, annualRatePercent float64, months int) (float64, error) {
	if err := validate(target, annualRatePercent, months); err != nil {
		return 0, err
	}
	r := amortization.MonthlyRate(annualRatePercent)
	return target / annuityDueFactor(r, months), nil
}

// Contributions yields each month's contribution of a step-up SIP. The amount
// grows by stepUpPercent at months 13, 25, 37 and so on; each contribution
// compounds for the months remaining to maturity, its own month included.
func Contributions(initialAmount, annualRatePercent float64, months int, stepUpPercent float64) (iter.Seq[Contribution], error) {
	if err := validate(initialAmount, annualRatePercent, months); err != nil {
		return nil, err
	}
	if !(stepUpPercent >= 0) || !finite(stepUpPercent) {
		return nil, core.Invalidf("step-up percent must not be negative")
	}
	r := amortization.MonthlyRate(annualRatePercent)
	step := 1 + stepUpPercent/100

	return func(yield func(Contribution) bool) {
		amount := initialAmount
		for m := 1; m <= months; m++ {
			if m > 1 && (m-1)%12 == 0 {
				amount *= step
			}
			c := Contribution{
				Month:       m,
				Amount:      amount,
				FutureValue: amount * math.Pow(1+r, float64(months-m+1)),
			}
			if !yield(c) {
				return
			}
		}
	}, nil
}

// ProjectStepUpSIP sums the compounded contributions of a step-up SIP. With a
// zero step-up it matches ProjectSIP.
func ProjectStepUpSIP(initialAmount, annualRatePercent float64, months int, stepUpPercent float64) (Projection, error) {
	seq, err := Contributions(initialAmount, annualRatePercent, months, stepUpPercent)
	if err != nil {
		return Projection{}, err
	}
	var p Projection
	for c := range seq {
		p.MaturityValue += c.FutureValue
		p.TotalInvested += c.Amount
	}
	p.TotalGains = p.MaturityValue - p.TotalInvested
	return p, nil
}
