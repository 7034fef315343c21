package teamevents

import "time"

// TeamEvent is the projection served to clients: one concrete occurrence
// of a calendar event, recurrences already expanded.
type TeamEvent struct {
	Name      string    `json:"name"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Attendees []string  `json:"attendees"`
}
