package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
)

// ReminderWorker writes consumed reminder messages to the reminders sheet
type ReminderWorker struct {
	writer sheets.ReminderWriter
}

func NewReminderWorker(writer sheets.ReminderWriter) *ReminderWorker {
	return &ReminderWorker{writer: writer}
}

// HandleReminderMessage processes a single reminder message from AMQP.
// Returning an error makes the consumer requeue the message.
func (w *ReminderWorker) HandleReminderMessage(ctx context.Context, msg *amqp.ReminderMessage) error {
	if w.writer == nil {
		return fmt.Errorf("reminder writer not configured")
	}

	slog.InfoContext(ctx, "Processing reminder message",
		"message_id", msg.MessageID,
		"reminder_key", msg.Reminder.Key,
		"kind", msg.Reminder.Kind)

	ref, err := w.writer.AppendReminder(ctx, msg.Reminder)
	if err != nil {
		return fmt.Errorf("append reminder to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully wrote reminder",
		"message_id", msg.MessageID,
		"reminder_key", msg.Reminder.Key,
		"sheets_ref", ref,
		"user_id", msg.Reminder.UserID)

	return nil
}
