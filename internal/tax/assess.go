package tax

import (
	"fintrack/internal/core"
)

// Assessment is the display state of a stored tax entry as of a date.
type Assessment struct {
	Computation     Computation  `json:"computation"`
	DaysRemaining   *int         `json:"days_remaining,omitempty"`
	Overdue         bool         `json:"overdue"`
	NextInstallment *Installment `json:"next_installment,omitempty"`
	NextPayable     float64      `json:"next_payable"`
}

// Assess recomputes the entry's liability and, while the entry is still open,
// reports the countdown to its due date and the next advance-tax checkpoint.
func Assess(entry core.TaxEntry, asOf core.Date) (Assessment, error) {
	comp, err := Compute(entry.TaxableIncome.Float(), entry.RatePercent, entry.Deductions.Float())
	if err != nil {
		return Assessment{}, err
	}
	a := Assessment{Computation: comp}
	if !entry.Status.IsOpen() {
		return a, nil
	}

	if !entry.DueDate.IsEmpty() {
		days := entry.DueDate.DaysUntil(asOf)
		a.DaysRemaining = &days
		a.Overdue = days < 0
	}

	if entry.AdvanceTaxPayer {
		start, err := ParseFinancialYear(entry.FinancialYear)
		if err != nil {
			return Assessment{}, err
		}
		schedule := AdvanceTaxSchedule(start)
		if next, ok := NextInstallment(schedule, asOf); ok {
			amounts, err := InstallmentAmounts(schedule, comp.FinalTax)
			if err != nil {
				return Assessment{}, err
			}
			for _, am := range amounts {
				if am.Quarter == next.Quarter {
					a.NextPayable = am.Payable
				}
			}
			a.NextInstallment = &next
		}
	}
	return a, nil
}
