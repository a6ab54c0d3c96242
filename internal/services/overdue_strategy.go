// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for overdue checks. Each record
// kind has its own strategy deciding which statuses still count as owed.

package services

import (
	"fmt"

	"fintrack/internal/core"
)

// RecordKind names a stored record type.
type RecordKind string

const (
	KindLoan      RecordKind = "loan"
	KindSIP       RecordKind = "sip"
	KindTax       RecordKind = "tax"
	KindViolation RecordKind = "violation"
	KindDocument  RecordKind = "document"
	KindExpense   RecordKind = "expense"
	KindDebt      RecordKind = "debt"
	KindStock     RecordKind = "stock"
)

// OverdueChecker is the strategy interface for deciding whether a record with
// a due date is overdue on asOf.
type OverdueChecker interface {
	IsOverdue(due core.Date, status core.Status, asOf core.Date) bool
}

// PendingChecker treats a record as owed only while it is open. Used for
// fines and tax liabilities, which stop accruing once paid or cancelled.
type PendingChecker struct{}

// IsOverdue returns true if the record is open and its due date has passed.
func (PendingChecker) IsOverdue(due core.Date, status core.Status, asOf core.Date) bool {
	if due.IsEmpty() || !status.IsOpen() {
		return false
	}
	return due.Before(asOf)
}

// UnpaidChecker treats a record as owed until it is paid off or cancelled.
type UnpaidChecker struct{}

// IsOverdue returns true if the record is still owed and its due date has passed.
func (UnpaidChecker) IsOverdue(due core.Date, status core.Status, asOf core.Date) bool {
	if due.IsEmpty() || !owed(status) {
		return false
	}
	return due.Before(asOf)
}

// overdueStrategies maps record kinds to their checkers.
var overdueStrategies = map[RecordKind]OverdueChecker{
	KindViolation: PendingChecker{},
	KindTax:       PendingChecker{},
	KindLoan:      UnpaidChecker{},
	KindDebt:      UnpaidChecker{},
}

// GetOverdueChecker returns the checker for a record kind.
func GetOverdueChecker(kind RecordKind) (OverdueChecker, error) {
	checker, ok := overdueStrategies[kind]
	if !ok {
		return nil, fmt.Errorf("no overdue rule for record kind: %s", kind)
	}
	return checker, nil
}

// RegisterOverdueChecker registers or replaces the checker for a record kind.
func RegisterOverdueChecker(kind RecordKind, checker OverdueChecker) {
	overdueStrategies[kind] = checker
}

// IsOverdue looks up the checker for kind and applies it. Kinds without a
// rule are never overdue.
func IsOverdue(kind RecordKind, due core.Date, status core.Status, asOf core.Date) bool {
	checker, err := GetOverdueChecker(kind)
	if err != nil {
		return false
	}
	return checker.IsOverdue(due, status, asOf)
}

func owed(status core.Status) bool {
	return !status.IsSettled() && status != core.StatusCancelled
}
