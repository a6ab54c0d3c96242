package penalty

import (
	"cmp"
	"slices"

	"fintrack/internal/core"
)

// ExpiryStatus is the renewal urgency of a document.
type ExpiryStatus string

const (
	ExpiryNone     ExpiryStatus = "none"
	ExpiryWarning  ExpiryStatus = "warning"
	ExpiryCritical ExpiryStatus = "critical"
	ExpiryExpired  ExpiryStatus = "expired"
)

const (
	CriticalWindowDays = 7
	WarningWindowDays  = 30
)

// ClassifyExpiry buckets a document by days left until expiry: negative is
// expired, 0 to 7 critical, 8 to 30 warning. A missing expiry is never alerted.
func ClassifyExpiry(expiry, asOf core.Date) ExpiryStatus {
	if expiry.IsEmpty() {
		return ExpiryNone
	}
	days := expiry.DaysUntil(asOf)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= CriticalWindowDays:
		return ExpiryCritical
	case days <= WarningWindowDays:
		return ExpiryWarning
	default:
		return ExpiryNone
	}
}

// Alert is a document that needs attention.
type Alert struct {
	DocumentID    string            `json:"document_id"`
	VehicleNumber string            `json:"vehicle_number"`
	Kind          core.DocumentKind `json:"kind"`
	ExpiryDate    core.Date         `json:"expiry_date"`
	DaysLeft      int               `json:"days_left"`
	Status        ExpiryStatus      `json:"status"`
}

// CheckDocuments returns an alert for every document that is expired or
// expiring within the warning window, most urgent first.
func CheckDocuments(docs []core.Document, asOf core.Date) []Alert {
	var alerts []Alert
	for _, d := range docs {
		status := ClassifyExpiry(d.ExpiryDate, asOf)
		if status == ExpiryNone {
			continue
		}
		alerts = append(alerts, Alert{
			DocumentID:    d.ID,
			VehicleNumber: d.VehicleNumber,
			Kind:          d.Kind,
			ExpiryDate:    d.ExpiryDate,
			DaysLeft:      d.ExpiryDate.DaysUntil(asOf),
			Status:        status,
		})
	}
	slices.SortStableFunc(alerts, func(a, b Alert) int {
		return cmp.Compare(a.DaysLeft, b.DaysLeft)
	})
	return alerts
}
