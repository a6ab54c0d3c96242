// Package penalty accrues late fees on traffic violations and classifies how
// urgently a document needs renewal.
package penalty

import (
	"fintrack/internal/core"
)

const (
	// PaymentWindowDays is the time allowed to pay a fine after the offence.
	PaymentWindowDays = 30
	// AccrualPeriodDays is the length of one penalty period past the due date.
	AccrualPeriodDays = 30
	// PenaltyPerPeriod is charged for each started accrual period.
	PenaltyPerPeriod = 100.0
)

// ViolationDueDate returns the last day to pay a fine without penalty.
func ViolationDueDate(violationDate core.Date) core.Date {
	return violationDate.AddDays(PaymentWindowDays)
}

// LatePenalty is zero up to and including dueDate, then PenaltyPerPeriod for
// every started 30-day period past it.
func LatePenalty(dueDate, asOf core.Date) float64 {
	overdue := core.DaysBetween(dueDate, asOf)
	if overdue <= 0 {
		return 0
	}
	periods := (overdue + AccrualPeriodDays - 1) / AccrualPeriodDays
	return float64(periods) * PenaltyPerPeriod
}

// ReminderDate is reminderDays before dueDate.
func ReminderDate(dueDate core.Date, reminderDays int) core.Date {
	return dueDate.AddDays(-reminderDays)
}

// Assessment is the payable state of a violation as of a date.
type Assessment struct {
	DueDate       core.Date `json:"due_date"`
	ReminderDate  core.Date `json:"reminder_date"`
	Fine          float64   `json:"fine"`
	Penalty       float64   `json:"penalty"`
	TotalPayable  float64   `json:"total_payable"`
	DaysRemaining int       `json:"days_remaining"`
	Overdue       bool      `json:"overdue"`
}

// Assess computes the due date, penalty and countdown for a violation. The
// stored due date wins over the computed one when present. Penalties accrue
// only while the violation is still pending.
func Assess(v core.Violation, asOf core.Date) (Assessment, error) {
	if v.ViolationDate.IsEmpty() {
		return Assessment{}, core.ErrInvalidDate
	}
	if err := v.FineAmount.Validate(); err != nil {
		return Assessment{}, err
	}
	due := v.DueDate
	if due.IsEmpty() {
		due = ViolationDueDate(v.ViolationDate)
	}
	fine := v.FineAmount.Float()
	a := Assessment{
		DueDate:       due,
		ReminderDate:  ReminderDate(due, v.ReminderDays),
		Fine:          fine,
		TotalPayable:  fine,
		DaysRemaining: due.DaysUntil(asOf),
	}
	if v.Status.IsOpen() {
		a.Penalty = LatePenalty(due, asOf)
		a.TotalPayable = fine + a.Penalty
		a.Overdue = a.DaysRemaining < 0
	}
	return a, nil
}
