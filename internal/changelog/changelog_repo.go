package changelog

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=changelog_repo.go -destination=mock/changelog_repo_mock.go -package=mock
type Repository interface {
	Append(ctx context.Context, change *PresenceChange) error
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) ([]PresenceChange, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, change *PresenceChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *repository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) ([]PresenceChange, error) {
	var rows []PresenceChange
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date = ?", date.Format("2006-01-02")).
		Order("occurred_at ASC").
		Find(&rows).Error
	return rows, err
}
