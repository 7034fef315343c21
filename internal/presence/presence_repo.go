package presence

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=presence_repo.go -destination=mock/presence_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByUserFromDate(ctx context.Context, userID string, from time.Time) ([]DayAtWork, error)
	FindByDate(ctx context.Context, date time.Time) ([]DayAtWork, error)
	Upsert(ctx context.Context, d *DayAtWork) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) FindByUserFromDate(ctx context.Context, userID string, from time.Time) ([]DayAtWork, error) {
	var rows []DayAtWork
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date >= ?", from.Format("2006-01-02")).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByDate(ctx context.Context, date time.Time) ([]DayAtWork, error) {
	var rows []DayAtWork
	err := r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		Order("user_id ASC").
		Find(&rows).Error
	return rows, err
}

// Upsert is a single atomic replace-or-insert on the (user_id, date) key.
// All mutable columns take the incoming values, so a null comment clears a
// previously stored one. Raw SQL keeps the two physical operations inside
// one statement instead of a find-then-branch.
func (r *repository) Upsert(ctx context.Context, d *DayAtWork) error {
	const query = `
		INSERT INTO day_at_work (user_id, date, day_type, comment, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, date) DO UPDATE
		SET day_type = EXCLUDED.day_type,
		    comment = EXCLUDED.comment,
		    updated_at = NOW()
	`

	exec, err := r.execer()
	if err != nil {
		return err
	}

	_, err = exec.ExecContext(ctx, query, d.UserID, d.Date.Format("2006-01-02"), string(d.DayType), d.Comment)
	return err
}

func (r *repository) execer() (interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, error) {
	if r.tx != nil {
		return r.tx, nil
	}
	return r.db.DB()
}
