package presence

import (
	"time"
)

// DayAtWork is one planned office day for one user. The composite primary
// key (user_id, date) guarantees at most one row per user per date; a save
// for an existing key replaces every mutable column.
type DayAtWork struct {
	UserID    string    `gorm:"column:user_id;type:varchar(100);primaryKey"`
	Date      time.Time `gorm:"column:date;type:date;primaryKey"`
	DayType   DayType   `gorm:"column:day_type;type:varchar(20);not null"`
	Comment   *string   `gorm:"column:comment;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (DayAtWork) TableName() string {
	return "day_at_work"
}
