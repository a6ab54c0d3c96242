package tax

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Installment is one advance-tax checkpoint. CumulativePercent is the share of
// the year's liability that must have been paid by DueDate.
type Installment struct {
	Quarter           string    `json:"quarter"`
	DueDate           core.Date `json:"due_date"`
	CumulativePercent float64   `json:"cumulative_percent"`
	Description       string    `json:"description"`
}

// InstallmentAmount is an installment with the amounts due for a given liability.
type InstallmentAmount struct {
	Installment
	Payable    float64 `json:"payable"`
	Cumulative float64 `json:"cumulative"`
}

type checkpoint struct {
	quarter    string
	month, day int
	nextYear   bool
	percent    float64
}

var checkpoints = []checkpoint{
	{"Q1", 6, 15, false, 15},
	{"Q2", 9, 15, false, 45},
	{"Q3", 12, 15, false, 75},
	{"Q4", 3, 15, true, 100},
}

// AdvanceTaxSchedule returns the four advance-tax checkpoints for the
// financial year that starts in April of fyStartYear, ordered by due date.
func AdvanceTaxSchedule(fyStartYear int) []Installment {
	out := make([]Installment, 0, len(checkpoints))
	for _, c := range checkpoints {
		year := fyStartYear
		if c.nextYear {
			year++
		}
		out = append(out, Installment{
			Quarter:           c.quarter,
			DueDate:           core.NewDate(year, c.month, c.day),
			CumulativePercent: c.percent,
			Description:       fmt.Sprintf("%g%% of advance tax by %s", c.percent, core.NewDate(year, c.month, c.day).Format("02 Jan 2006")),
		})
	}
	return out
}

// InstallmentAmounts splits totalTax across the schedule: Payable is what is
// due at each checkpoint, Cumulative the running total.
func InstallmentAmounts(schedule []Installment, totalTax float64) ([]InstallmentAmount, error) {
	if !(totalTax >= 0) {
		return nil, core.ErrInvalidAmount
	}
	out := make([]InstallmentAmount, 0, len(schedule))
	prev := 0.0
	for _, in := range schedule {
		cum := totalTax * in.CumulativePercent / 100
		out = append(out, InstallmentAmount{Installment: in, Payable: cum - prev, Cumulative: cum})
		prev = cum
	}
	return out, nil
}

// NextInstallment returns the first checkpoint due on or after asOf. ok is
// false once every checkpoint has passed.
func NextInstallment(schedule []Installment, asOf core.Date) (next Installment, ok bool) {
	for _, in := range schedule {
		if !in.DueDate.Before(asOf) {
			return in, true
		}
	}
	return Installment{}, false
}

// FinancialYearOf returns the start year of the financial year containing d.
// Financial years run from 1 April to 31 March.
func FinancialYearOf(d core.Date) int {
	if d.Month() >= 4 {
		return d.Year()
	}
	return d.Year() - 1
}

// ParseFinancialYear accepts "2024-25", "2024-2025" or "2024" and returns the
// start year.
func ParseFinancialYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	head, tail, hasTail := strings.Cut(s, "-")
	start, err := strconv.Atoi(head)
	if err != nil || len(head) != 4 {
		return 0, core.Invalidf("malformed financial year %q", s)
	}
	if hasTail {
		end, err := strconv.Atoi(tail)
		if err != nil {
			return 0, core.Invalidf("malformed financial year %q", s)
		}
		switch len(tail) {
		case 2:
			if end != (start+1)%100 {
				return 0, core.Invalidf("financial year %q does not span consecutive years", s)
			}
		case 4:
			if end != start+1 {
				return 0, core.Invalidf("financial year %q does not span consecutive years", s)
			}
		default:
			return 0, core.Invalidf("malformed financial year %q", s)
		}
	}
	return start, nil
}

// FormatFinancialYear renders a start year as "2024-25".
func FormatFinancialYear(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}
