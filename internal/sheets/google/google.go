package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/amortization"
	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

// Ensure interface conformance
var (
	_ ports.ReminderWriter   = (*Client)(nil)
	_ ports.ScheduleExporter = (*Client)(nil)
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	RemindersSheet  string
	SchedulePrefix  string
	CredentialsJSON string
	CredentialsFile string
	// Logger defaults to the process default logger.
	Logger *log.Logger
}

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	remindersSheet string
	schedulePrefix string
	logger         *log.Logger
}

// New creates a Sheets client. Extra options replace credential loading,
// which lets tests point the client at a local server.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	reminders := strings.TrimSpace(cfg.RemindersSheet)
	if reminders == "" {
		reminders = "Reminders"
	}
	prefix := strings.TrimSpace(cfg.SchedulePrefix)
	if prefix == "" {
		prefix = "Schedule"
	}

	if len(opts) == 0 {
		credentialsJSON, err := readCredentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	var logger *log.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger.WithComponent(log.ComponentSheets)
	} else {
		logger = log.New(log.Config{Component: log.ComponentSheets, Handler: slog.Default().Handler()})
	}
	logger.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", spreadsheetID,
		"reminders_sheet", reminders)

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		remindersSheet: reminders,
		schedulePrefix: prefix,
		logger:         logger,
	}, nil
}

// readCredentials prefers inline JSON over a credentials file.
func readCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// reminderRow lays a reminder out as Due date | Kind | User | Record | Amount | Message | Key.
func reminderRow(r core.Reminder) []any {
	return []any{
		r.DueDate.String(),
		string(r.Kind),
		r.UserID,
		r.RecordID,
		r.Amount.Float(),
		r.Message,
		r.Key,
	}
}

// AppendReminder appends one reminder row and returns the updated range.
func (c *Client) AppendReminder(ctx context.Context, r core.Reminder) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:G", c.remindersSheet)
	vr := &gsheet.ValueRange{Values: [][]any{reminderRow(r)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append reminder to %s: %w", c.remindersSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Reminder appended", "range", ref, log.FieldReminderKey, r.Key)
	return ref, nil
}

// scheduleSheetName names the per-loan tab, e.g. "Schedule HDFC 1a2b3c4d".
func scheduleSheetName(prefix string, loan core.Loan) string {
	id := loan.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.Join(strings.Fields(strings.Join([]string{prefix, loan.Lender, id}, " ")), " ")
}

func scheduleValues(rows []amortization.Row) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Month", "Payment", "Principal", "Interest", "Balance"})
	for _, r := range rows {
		values = append(values, []any{
			r.Month,
			core.Round2(r.Payment),
			core.Round2(r.Principal),
			core.Round2(r.Interest),
			core.Round2(r.Balance),
		})
	}
	return values
}

// ExportSchedule writes the loan's schedule to its own tab, creating the tab
// on first export and overwriting it afterwards.
func (c *Client) ExportSchedule(ctx context.Context, loan core.Loan, rows []amortization.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	name := scheduleSheetName(c.schedulePrefix, loan)

	if err := c.ensureSheet(ctx, name); err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: scheduleValues(rows)}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", name), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write schedule to %s: %w", name, err)
	}

	c.logger.InfoContext(ctx, "Loan schedule exported", "sheet", name, "rows", len(rows), "record_id", loan.ID)
	return name, nil
}

func (c *Client) ensureSheet(ctx context.Context, name string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	return nil
}
