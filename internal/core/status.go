package core

// Status is the externally owned lifecycle state of a stored record.
// The engine never transitions a status; it only reads it.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusPaid      Status = "Paid"
	StatusCancelled Status = "Cancelled"
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusHolding   Status = "Holding"
	StatusSold      Status = "Sold"
)

var knownStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusPaid:      {},
	StatusCancelled: {},
	StatusActive:    {},
	StatusCompleted: {},
	StatusHolding:   {},
	StatusSold:      {},
}

// Validate rejects statuses outside the known set. An empty status is
// accepted and treated as the record kind's default by callers.
func (s Status) Validate() error {
	if s == "" {
		return nil
	}
	if _, ok := knownStatuses[s]; !ok {
		return ErrInvalidStatus
	}
	return nil
}

// IsOpen reports whether time-based accruals (overdue, penalty, reminders)
// still apply. Only pending and active records accrue.
func (s Status) IsOpen() bool {
	return s == "" || s == StatusPending || s == StatusActive
}

// IsSettled reports whether the obligation has been paid off.
func (s Status) IsSettled() bool {
	return s == StatusPaid || s == StatusCompleted
}
