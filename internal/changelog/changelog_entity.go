package changelog

import (
	"time"

	"github.com/google/uuid"
)

// PresenceChange is one historical update to a day-at-work record, written
// by the consumer from day_at_work_updated events.
type PresenceChange struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     string    `gorm:"column:user_id;type:varchar(100);not null;index"`
	Date       time.Time `gorm:"column:date;type:date;not null;index"`
	DayType    string    `gorm:"column:day_type;type:varchar(20);not null"`
	Comment    *string   `gorm:"column:comment;type:text"`
	RequestID  string    `gorm:"column:request_id;type:varchar(100)"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (PresenceChange) TableName() string {
	return "presence_changes"
}
