package google

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	goption "google.golang.org/api/option"

	"fintrack/internal/amortization"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type fakeSheets struct {
	mu       sync.Mutex
	titles   []string
	appended [][]any
	updated  map[string][][]any
	added    []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.Unmarshal(body, &vr)
		f.appended = append(f.appended, vr.Values...)
		io.WriteString(w, `{"spreadsheetId":"sid","updates":{"updatedRange":"Reminders!A2:G2","updatedRows":1}}`)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		json.Unmarshal(body, &req)
		for _, rq := range req.Requests {
			f.added = append(f.added, rq.AddSheet.Properties.Title)
			f.titles = append(f.titles, rq.AddSheet.Properties.Title)
		}
		io.WriteString(w, `{"spreadsheetId":"sid"}`)
	case r.Method == http.MethodPut:
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.Unmarshal(body, &vr)
		if f.updated == nil {
			f.updated = map[string][][]any{}
		}
		f.updated[r.URL.Path] = vr.Values
		io.WriteString(w, `{"spreadsheetId":"sid"}`)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/v4/spreadsheets/sid"):
		type props struct {
			Title string `json:"title"`
		}
		type sheet struct {
			Properties props `json:"properties"`
		}
		out := struct {
			Sheets []sheet `json:"sheets"`
		}{}
		for _, t := range f.titles {
			out.Sheets = append(out.Sheets, sheet{Properties: props{Title: t}})
		}
		json.NewEncoder(w).Encode(out)
	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sid"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadCredentials(t *testing.T) {
	if _, err := readCredentials(Config{}); err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}

	b, err := readCredentials(Config{CredentialsJSON: `{"type":"service_account"}`, CredentialsFile: "/ignored"})
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Fatalf("inline JSON should win: %q %v", b, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	os.WriteFile(path, []byte(`{"from":"file"}`), 0o600)
	b, err = readCredentials(Config{CredentialsFile: path})
	if err != nil || string(b) != `{"from":"file"}` {
		t.Fatalf("file credentials: %q %v", b, err)
	}

	if _, err := readCredentials(Config{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAppendReminder(t *testing.T) {
	fake := &fakeSheets{}
	c := newFakeClient(t, fake)

	r := core.Reminder{
		UserID:   "u1",
		Kind:     core.ReminderViolation,
		RecordID: "v1",
		Key:      "violation:v1:2024-05-31",
		DueDate:  core.MustParseDate("2024-05-31"),
		Amount:   core.Money{Cents: 150000},
		Message:  "Fine due",
	}
	ref, err := c.AppendReminder(context.Background(), r)
	if err != nil {
		t.Fatalf("AppendReminder: %v", err)
	}
	if ref != "Reminders!A2:G2" {
		t.Errorf("ref = %q", ref)
	}
	if len(fake.appended) != 1 {
		t.Fatalf("expected one appended row, got %d", len(fake.appended))
	}
	row := fake.appended[0]
	if row[0] != "2024-05-31" || row[1] != "violation_due" || row[4] != 1500.0 || row[6] != r.Key {
		t.Errorf("unexpected row %v", row)
	}
}

func TestAppendReminderValidates(t *testing.T) {
	c := &Client{remindersSheet: "Reminders"}
	if _, err := c.AppendReminder(context.Background(), core.Reminder{UserID: "u1"}); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := c.AppendReminder(context.Background(), core.Reminder{UserID: "u1", Kind: core.ReminderDebt, Key: "k"}); err == nil ||
		!strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected uninitialized service error, got %v", err)
	}
}

func TestExportSchedule(t *testing.T) {
	fake := &fakeSheets{}
	c := newFakeClient(t, fake)

	rows, err := amortization.Rows(100000, 12, 3)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	loan := core.Loan{ID: "1a2b3c4d-5e6f", Lender: "HDFC"}

	name, err := c.ExportSchedule(context.Background(), loan, rows)
	if err != nil {
		t.Fatalf("ExportSchedule: %v", err)
	}
	if name != "Schedule HDFC 1a2b3c4d" {
		t.Errorf("sheet name = %q", name)
	}
	if len(fake.added) != 1 {
		t.Fatalf("expected the tab to be created once, got %v", fake.added)
	}

	if _, err := c.ExportSchedule(context.Background(), loan, rows); err != nil {
		t.Fatalf("second export: %v", err)
	}
	if len(fake.added) != 1 {
		t.Errorf("existing tab must be reused, added=%v", fake.added)
	}
	for _, values := range fake.updated {
		if len(values) != 4 || values[0][0] != "Month" {
			t.Errorf("unexpected values written: %v", values)
		}
	}
}

func TestClientLogsAsSheetsComponent(t *testing.T) {
	srv := httptest.NewServer(&fakeSheets{})
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := log.New(log.Config{Component: log.ComponentWorker, Output: &buf})
	c, err := New(context.Background(), Config{SpreadsheetID: "sid", Logger: logger},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.logger.Component() != log.ComponentSheets {
		t.Errorf("component = %q, want %q", c.logger.Component(), log.ComponentSheets)
	}

	r := core.Reminder{UserID: "u1", Kind: core.ReminderDebt, RecordID: "d1", Key: "debt:d1:2024-07-01"}
	if _, err := c.AppendReminder(context.Background(), r); err != nil {
		t.Fatalf("AppendReminder: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "component=sheets") || !strings.Contains(out, "reminder_key=debt:d1:2024-07-01") {
		t.Errorf("log output missing sheets component or reminder key:\n%s", out)
	}
}

func TestScheduleSheetName(t *testing.T) {
	cases := []struct {
		loan core.Loan
		want string
	}{
		{core.Loan{ID: "abc", Lender: "SBI"}, "Schedule SBI abc"},
		{core.Loan{ID: "123456789abc", Lender: "  Axis   Bank "}, "Schedule Axis Bank 12345678"},
		{core.Loan{}, "Schedule"},
	}
	for _, tc := range cases {
		if got := scheduleSheetName("Schedule", tc.loan); got != tc.want {
			t.Errorf("scheduleSheetName(%+v) = %q, want %q", tc.loan, got, tc.want)
		}
	}
}
