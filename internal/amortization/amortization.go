// Package amortization computes loan installments, repayment schedules and
// prepayment scenarios. Every function is pure and safe for concurrent use.
package amortization

import (
	"iter"
	"math"
	"slices"

	"fintrack/internal/core"
)

// BalanceTolerance is the residual balance treated as fully repaid.
const BalanceTolerance = 0.01

// Row is one month of an amortization schedule.
type Row struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// Summary holds the headline figures of a loan.
type Summary struct {
	EMI           float64 `json:"emi"`
	TotalPayable  float64 `json:"total_payable"`
	TotalInterest float64 `json:"total_interest"`
}

// EarlyPayoffResult describes a loan repaid with a fixed extra amount each
// month. PaidOff is false when the balance is still outstanding at the end of
// the original tenure; MonthsToPayoff is then the tenure itself.
type EarlyPayoffResult struct {
	MonthsToPayoff     int     `json:"months_to_payoff"`
	MonthsSaved        int     `json:"months_saved"`
	TotalInterestPaid  float64 `json:"total_interest_paid"`
	TotalInterestSaved float64 `json:"total_interest_saved"`
	RemainingBalance   float64 `json:"remaining_balance"`
	PaidOff            bool    `json:"paid_off"`
}

func validate(principal, annualRatePercent float64, tenureMonths int) error {
	switch {
	case !(principal > 0) || math.IsInf(principal, 0):
		return core.ErrInvalidAmount
	case !(annualRatePercent >= 0) || math.IsInf(annualRatePercent, 0):
		return core.ErrInvalidRate
	case tenureMonths < 1:
		return core.ErrInvalidTenure
	}
	return nil
}

// MonthlyRate converts an annual percentage into a monthly fraction.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 12 / 100
}

// EMI returns the equated monthly installment. A zero rate degenerates to
// straight-line repayment principal/tenure.
func EMI(principal, annualRatePercent float64, tenureMonths int) (float64, error) {
	if err := validate(principal, annualRatePercent, tenureMonths); err != nil {
		return 0, err
	}
	return emi(principal, MonthlyRate(annualRatePercent), tenureMonths), nil
}

func emi(principal, r float64, n int) float64 {
	if r == 0 {
		return principal / float64(n)
	}
	growth := math.Pow(1+r, float64(n))
	return principal * r * growth / (growth - 1)
}

// Summarize returns the EMI together with total payable and total interest.
func Summarize(principal, annualRatePercent float64, tenureMonths int) (Summary, error) {
	e, err := EMI(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return Summary{}, err
	}
	total := e * float64(tenureMonths)
	return Summary{EMI: e, TotalPayable: total, TotalInterest: total - principal}, nil
}

// Schedule returns the month-by-month repayment schedule as a lazy sequence of
// exactly tenureMonths rows. The sequence can be ranged over any number of
// times and yields identical rows each time.
func Schedule(principal, annualRatePercent float64, tenureMonths int) (iter.Seq[Row], error) {
	if err := validate(principal, annualRatePercent, tenureMonths); err != nil {
		return nil, err
	}
	r := MonthlyRate(annualRatePercent)
	payment := emi(principal, r, tenureMonths)

	return func(yield func(Row) bool) {
		balance := principal
		for month := 1; month <= tenureMonths; month++ {
			interest := balance * r
			principalPart := payment - interest
			balance = max(balance-principalPart, 0)
			row := Row{
				Month:     month,
				Payment:   payment,
				Principal: principalPart,
				Interest:  interest,
				Balance:   balance,
			}
			if !yield(row) {
				return
			}
		}
	}, nil
}

// Rows collects the full schedule.
func Rows(principal, annualRatePercent float64, tenureMonths int) ([]Row, error) {
	seq, err := Schedule(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// EarlyPayoff simulates paying extraMonthly on top of the EMI every month.
// The simulation never runs past the original tenure. A zero or negative
// extra amount is accepted and simply reproduces the regular schedule.
func EarlyPayoff(principal, annualRatePercent float64, tenureMonths int, extraMonthly float64) (EarlyPayoffResult, error) {
	if err := validate(principal, annualRatePercent, tenureMonths); err != nil {
		return EarlyPayoffResult{}, err
	}
	if math.IsNaN(extraMonthly) || math.IsInf(extraMonthly, 0) {
		return EarlyPayoffResult{}, core.Invalidf("extra payment must be finite")
	}

	r := MonthlyRate(annualRatePercent)
	payment := emi(principal, r, tenureMonths)
	baselineInterest := payment*float64(tenureMonths) - principal

	balance := principal
	paid := 0.0
	month := 0
	for balance > BalanceTolerance && month < tenureMonths {
		month++
		interest := balance * r
		principalPart := min(payment+extraMonthly-interest, balance)
		balance -= principalPart
		paid += interest
	}

	balance = max(balance, 0)
	res := EarlyPayoffResult{
		MonthsToPayoff:     month,
		MonthsSaved:        tenureMonths - month,
		TotalInterestPaid:  paid,
		TotalInterestSaved: max(baselineInterest-paid, 0),
		RemainingBalance:   balance,
		PaidOff:            balance <= BalanceTolerance,
	}
	return res, nil
}
