package amqp

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"fintrack/internal/core"
)

// ReminderMessage carries a persisted reminder to the consumers. MessageID is
// unique per publish so consumers can spot redeliveries in their logs.
type ReminderMessage struct {
	MessageID string        `json:"message_id"`
	Reminder  core.Reminder `json:"reminder"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewReminderMessage wraps r in a message stamped with a fresh ID
func NewReminderMessage(r core.Reminder) *ReminderMessage {
	return &ReminderMessage{
		MessageID: uuid.NewString(),
		Reminder:  r,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderMessageFromJSON decodes and validates a message body
func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Reminder.Validate(); err != nil {
		return nil, fmt.Errorf("reminder message %s: %w", msg.MessageID, err)
	}
	return &msg, nil
}
