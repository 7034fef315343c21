package events

import "time"

const DayAtWorkUpdatedTopic = "presence.day.updated.v1"

// DayAtWorkUpdatedEvent is emitted through the outbox whenever a day record
// is upserted. Consumed by the change-log writer.
type DayAtWorkUpdatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	DayType    string    `json:"day_type"`
	Comment    *string   `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
