package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []core.Reminder
	err       error
}

func (f *fakePublisher) PublishReminder(_ context.Context, r core.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, r)
	return nil
}

func (f *fakePublisher) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.published {
		out = append(out, r.Key)
	}
	slices.Sort(out)
	return out
}

// seedReminderRecords stores one record per reminder rule for asOf 2024-06-10.
func seedReminderRecords(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	var err error
	_, err = store.SaveViolation(ctx, core.Violation{ID: "v1", UserID: "u1", VehicleNumber: "KA01", FineAmount: rupees(1000), ViolationDate: core.NewDate(2024, 5, 1), DueDate: core.NewDate(2024, 5, 31), Status: core.StatusPending})
	must(err)
	_, err = store.SaveViolation(ctx, core.Violation{ID: "v2", UserID: "u1", VehicleNumber: "KA01", FineAmount: rupees(1000), ViolationDate: core.NewDate(2024, 5, 1), DueDate: core.NewDate(2024, 5, 31), Status: core.StatusPaid})
	must(err)
	_, err = store.SaveTax(ctx, core.TaxEntry{ID: "t1", UserID: "u1", FinancialYear: "2024-25", TaxableIncome: rupees(1000000), RatePercent: 20, AdvanceTaxPayer: true, Status: core.StatusPending})
	must(err)
	_, err = store.SaveDocument(ctx, core.Document{ID: "d1", UserID: "u2", VehicleNumber: "MH12", Kind: core.DocInsurance, ExpiryDate: core.NewDate(2024, 6, 14)})
	must(err)
	_, err = store.SaveDocument(ctx, core.Document{ID: "d2", UserID: "u2", VehicleNumber: "MH12", Kind: core.DocPollution, ExpiryDate: core.NewDate(2024, 7, 1)})
	must(err)
	_, err = store.SaveLoan(ctx, core.Loan{ID: "l1", UserID: "u2", Lender: "SBI", Principal: rupees(10000), TenureMonths: 10, EMI: rupees(1000), DueDate: core.NewDate(2024, 6, 12), Status: core.StatusActive})
	must(err)
	_, err = store.SaveDebt(ctx, core.Debt{ID: "b1", UserID: "u2", Creditor: "Ravi", Amount: rupees(500), DueDate: core.NewDate(2024, 6, 11), Status: core.StatusPaid})
	must(err)
}

func TestReminderProcessor_ProcessDueReminders(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedReminderRecords(t, store)
	pub := &fakePublisher{}
	p := NewReminderProcessor(store, pub, 7)
	asOf := core.NewDate(2024, 6, 10)

	res, err := p.ProcessDueReminders(ctx, asOf)
	if err != nil {
		t.Fatalf("ProcessDueReminders: %v", err)
	}
	want := ScanResult{Users: 2, Candidate: 4, Created: 4, Published: 4}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}

	wantKeys := []string{
		"advance_tax:t1:2024-06-15",
		"document_expiry:d1:2024-06-14",
		"loan_due:l1:2024-06-12",
		"violation_due:v1:2024-05-31",
	}
	if got := pub.keys(); !slices.Equal(got, wantKeys) {
		t.Errorf("published keys = %v, want %v", got, wantKeys)
	}

	reminders, _ := store.ListReminders(ctx, "u1")
	for _, r := range reminders {
		switch r.Kind {
		case core.ReminderViolation:
			// 10 days late: one penalty period on top of the fine.
			if r.Amount != rupees(1100) {
				t.Errorf("violation reminder amount = %v", r.Amount)
			}
		case core.ReminderAdvanceTax:
			// 15% of 2,00,000 due by 15 June.
			if r.Amount != rupees(30000) {
				t.Errorf("advance tax reminder amount = %v", r.Amount)
			}
		}
	}

	again, err := p.ProcessDueReminders(ctx, asOf)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if again.Created != 0 || again.Published != 0 || again.Candidate != 4 {
		t.Errorf("rescan must not duplicate reminders: %+v", again)
	}
	if len(pub.keys()) != 4 {
		t.Errorf("published %d messages after rescan", len(pub.keys()))
	}
}

func TestReminderProcessor_LeadTime(t *testing.T) {
	store := memory.New()
	seedReminderRecords(t, store)
	p := NewReminderProcessor(store, nil, 1)

	candidates, err := p.Candidates(context.Background(), "u2", core.NewDate(2024, 6, 10))
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("nothing is within one day, got %+v", candidates)
	}

	candidates, _ = p.Candidates(context.Background(), "u2", core.NewDate(2024, 6, 13))
	if len(candidates) != 1 || candidates[0].Kind != core.ReminderDocument {
		t.Errorf("expected the insurance reminder, got %+v", candidates)
	}
}

func TestReminderProcessor_PublishFailureKeepsReminder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedReminderRecords(t, store)
	p := NewReminderProcessor(store, &fakePublisher{err: errors.New("circuit breaker is open")}, 7)

	res, err := p.ProcessDueReminders(ctx, core.NewDate(2024, 6, 10))
	if err != nil {
		t.Fatalf("publish failures must not fail the scan: %v", err)
	}
	if res.Created != 4 || res.Published != 0 {
		t.Errorf("result = %+v", res)
	}
	u1, _ := store.ListReminders(ctx, "u1")
	u2, _ := store.ListReminders(ctx, "u2")
	if len(u1)+len(u2) != 4 {
		t.Errorf("stored %d reminders, want 4", len(u1)+len(u2))
	}
}

func TestReminderProcessor_Validation(t *testing.T) {
	if _, err := (&ReminderProcessor{}).ProcessDueReminders(context.Background(), core.NewDate(2024, 1, 1)); err == nil {
		t.Error("expected error for uninitialized processor")
	}
	p := NewReminderProcessor(memory.New(), nil, 7)
	if _, err := p.ProcessDueReminders(context.Background(), core.Date{}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected invalid date, got %v", err)
	}
}
