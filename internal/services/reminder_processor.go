package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/penalty"
	"fintrack/internal/sheets"
	"fintrack/internal/tax"
)

// ReminderPublisher hands a newly created reminder to its consumers.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, r core.Reminder) error
}

// ScanResult counts what one reminder scan did.
type ScanResult struct {
	Users     int
	Candidate int
	Created   int
	Published int
}

// ReminderProcessor derives reminders from stored records, keeps each one
// unique by key and publishes the new ones.
type ReminderProcessor struct {
	store     sheets.RecordStore
	publisher ReminderPublisher
	leadDays  int
}

// NewReminderProcessor creates a processor. publisher may be nil, in which
// case reminders are only stored.
func NewReminderProcessor(store sheets.RecordStore, publisher ReminderPublisher, leadDays int) *ReminderProcessor {
	return &ReminderProcessor{
		store:     store,
		publisher: publisher,
		leadDays:  max(leadDays, 0),
	}
}

// ProcessDueReminders scans every user's records as of asOf. A failure for
// one user is logged and the scan moves on.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, asOf core.Date) (ScanResult, error) {
	if p.store == nil {
		return ScanResult{}, fmt.Errorf("processor not properly initialized")
	}
	if asOf.IsEmpty() {
		return ScanResult{}, core.ErrInvalidDate
	}

	users, err := p.store.ListUsers(ctx)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to list users: %w", err)
	}

	slog.InfoContext(ctx, "Scanning records for reminders",
		"users", len(users),
		"as_of", asOf.String(),
		"lead_days", p.leadDays)

	res := ScanResult{Users: len(users)}
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		candidates, err := p.Candidates(ctx, userID, asOf)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load records for reminders",
				"user_id", userID,
				"error", err)
			continue
		}
		res.Candidate += len(candidates)

		for _, r := range candidates {
			saved, created, err := p.store.SaveReminder(ctx, r)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to save reminder",
					"reminder_key", r.Key,
					"error", err)
				continue
			}
			if !created {
				continue
			}
			res.Created++
			if p.publish(ctx, saved) {
				res.Published++
			}
		}
	}

	slog.InfoContext(ctx, "Reminder scan complete",
		"users", res.Users,
		"candidates", res.Candidate,
		"created", res.Created,
		"published", res.Published)

	return res, nil
}

func (p *ReminderProcessor) publish(ctx context.Context, r core.Reminder) bool {
	if p.publisher == nil {
		slog.DebugContext(ctx, "No reminder publisher configured, skipping publish", "reminder_key", r.Key)
		return false
	}
	if err := p.publisher.PublishReminder(ctx, r); err != nil {
		// The reminder stays stored; only the notification is lost.
		slog.ErrorContext(ctx, "Failed to publish reminder",
			"reminder_key", r.Key,
			"error", err)
		return false
	}
	return true
}

// Candidates returns the reminders the user's records call for on asOf.
func (p *ReminderProcessor) Candidates(ctx context.Context, userID string, asOf core.Date) ([]core.Reminder, error) {
	var (
		violations []core.Violation
		taxes      []core.TaxEntry
		documents  []core.Document
		loans      []core.Loan
		debts      []core.Debt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		violations, err = p.store.ListViolations(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		taxes, err = p.store.ListTaxes(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		documents, err = p.store.ListDocuments(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		loans, err = p.store.ListLoans(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		debts, err = p.store.ListDebts(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []core.Reminder
	for _, v := range violations {
		if r, ok := p.violationReminder(v, asOf); ok {
			out = append(out, r)
		}
	}
	for _, t := range taxes {
		if r, ok := p.advanceTaxReminder(t, asOf); ok {
			out = append(out, r)
		}
	}
	for _, a := range penalty.CheckDocuments(documents, asOf) {
		if a.DaysLeft > p.leadDays {
			continue
		}
		out = append(out, documentReminder(userID, a))
	}
	for _, l := range loans {
		if owed(l.Status) && p.dueSoon(l.DueDate, asOf) {
			out = append(out, dueReminder(core.ReminderLoan, l.UserID, l.ID, l.DueDate, l.EMI,
				fmt.Sprintf("Loan payment of %s to %s is due on %s", l.EMI, l.Lender, l.DueDate.Format("02 Jan 2006"))))
		}
	}
	for _, d := range debts {
		if owed(d.Status) && p.dueSoon(d.DueDate, asOf) {
			out = append(out, dueReminder(core.ReminderDebt, d.UserID, d.ID, d.DueDate, d.Amount,
				fmt.Sprintf("Repay %s to %s by %s", d.Amount, d.Creditor, d.DueDate.Format("02 Jan 2006"))))
		}
	}
	return out, nil
}

// dueSoon reports whether due falls within [asOf, asOf+leadDays].
func (p *ReminderProcessor) dueSoon(due, asOf core.Date) bool {
	if due.IsEmpty() {
		return false
	}
	days := due.DaysUntil(asOf)
	return days >= 0 && days <= p.leadDays
}

// violationReminder fires from the violation's reminder date onwards while
// the fine is unpaid. The violation's own reminder days win over the lead time.
func (p *ReminderProcessor) violationReminder(v core.Violation, asOf core.Date) (core.Reminder, bool) {
	if !v.Status.IsOpen() {
		return core.Reminder{}, false
	}
	if v.ReminderDays == 0 {
		v.ReminderDays = p.leadDays
	}
	a, err := penalty.Assess(v, asOf)
	if err != nil || asOf.Before(a.ReminderDate) {
		return core.Reminder{}, false
	}
	total := core.MoneyFromFloat(a.TotalPayable)
	return core.Reminder{
		UserID:   v.UserID,
		Kind:     core.ReminderViolation,
		RecordID: v.ID,
		Key:      reminderKey(core.ReminderViolation, v.ID, a.DueDate),
		DueDate:  a.DueDate,
		Amount:   total,
		Message:  fmt.Sprintf("Fine payment of %s is due on %s", total, a.DueDate.Format("02 Jan 2006")),
	}, true
}

// advanceTaxReminder announces the next advance-tax checkpoint once it is
// within the lead time.
func (p *ReminderProcessor) advanceTaxReminder(t core.TaxEntry, asOf core.Date) (core.Reminder, bool) {
	if !t.AdvanceTaxPayer || !t.Status.IsOpen() {
		return core.Reminder{}, false
	}
	a, err := tax.Assess(t, asOf)
	if err != nil || a.NextInstallment == nil || !p.dueSoon(a.NextInstallment.DueDate, asOf) {
		return core.Reminder{}, false
	}
	next := a.NextInstallment
	return core.Reminder{
		UserID:   t.UserID,
		Kind:     core.ReminderAdvanceTax,
		RecordID: t.ID,
		Key:      reminderKey(core.ReminderAdvanceTax, t.ID, next.DueDate),
		DueDate:  next.DueDate,
		Amount:   core.MoneyFromFloat(a.NextPayable),
		Message:  fmt.Sprintf("Advance Tax %s - %s", next.Quarter, next.Description),
	}, true
}

func documentReminder(userID string, a penalty.Alert) core.Reminder {
	msg := fmt.Sprintf("%s for %s expires on %s", a.Kind, a.VehicleNumber, a.ExpiryDate.Format("02 Jan 2006"))
	if a.Status == penalty.ExpiryExpired {
		msg = fmt.Sprintf("%s for %s expired on %s", a.Kind, a.VehicleNumber, a.ExpiryDate.Format("02 Jan 2006"))
	}
	return core.Reminder{
		UserID:   userID,
		Kind:     core.ReminderDocument,
		RecordID: a.DocumentID,
		Key:      reminderKey(core.ReminderDocument, a.DocumentID, a.ExpiryDate),
		DueDate:  a.ExpiryDate,
		Message:  msg,
	}
}

func dueReminder(kind core.ReminderKind, userID, recordID string, due core.Date, amount core.Money, msg string) core.Reminder {
	return core.Reminder{
		UserID:   userID,
		Kind:     kind,
		RecordID: recordID,
		Key:      reminderKey(kind, recordID, due),
		DueDate:  due,
		Amount:   amount,
		Message:  msg,
	}
}

// reminderKey is stable for a record and due date, so rescans never
// duplicate a reminder.
func reminderKey(kind core.ReminderKind, recordID string, due core.Date) string {
	return fmt.Sprintf("%s:%s:%s", kind, recordID, due)
}
