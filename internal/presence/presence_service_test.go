package presence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-presence/internal/events"
	"go-presence/internal/messaging/kafka"
	"go-presence/internal/shared/slidingcache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	withTxFn             func(tx *sql.Tx) Repository
	findByUserFromDateFn func(ctx context.Context, userID string, from time.Time) ([]DayAtWork, error)
	findByDateFn         func(ctx context.Context, date time.Time) ([]DayAtWork, error)
	upsertFn             func(ctx context.Context, d *DayAtWork) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f.withTxFn(tx) }
func (f *fakeRepo) FindByUserFromDate(ctx context.Context, userID string, from time.Time) ([]DayAtWork, error) {
	return f.findByUserFromDateFn(ctx, userID, from)
}
func (f *fakeRepo) FindByDate(ctx context.Context, date time.Time) ([]DayAtWork, error) {
	return f.findByDateFn(ctx, date)
}
func (f *fakeRepo) Upsert(ctx context.Context, d *DayAtWork) error { return f.upsertFn(ctx, d) }

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error               { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func newStoreBackedRepo() (*fakeRepo, map[string]DayAtWork) {
	store := map[string]DayAtWork{}
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.upsertFn = func(ctx context.Context, d *DayAtWork) error {
		store[d.UserID+":"+DateKey(d.Date)] = *d
		return nil
	}
	repo.findByDateFn = func(ctx context.Context, date time.Time) ([]DayAtWork, error) {
		var rows []DayAtWork
		for _, d := range store {
			if DateKey(d.Date) == DateKey(date) {
				rows = append(rows, d)
			}
		}
		return rows, nil
	}
	repo.findByUserFromDateFn = func(ctx context.Context, userID string, from time.Time) ([]DayAtWork, error) {
		var rows []DayAtWork
		for _, d := range store {
			if d.UserID == userID && !d.Date.Before(from) {
				rows = append(rows, d)
			}
		}
		return rows, nil
	}
	return repo, store
}

func newTestCache() *slidingcache.Cache[DaySummaryResponse] {
	return slidingcache.New[DaySummaryResponse](SummaryTTL, slidingcache.SystemClock())
}

func TestService_Upsert_InsertThenOverwrite(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	repo, store := newStoreBackedRepo()
	svc := NewService(db, repo, newTestCache())

	mock.ExpectBegin()
	mock.ExpectCommit()
	first, err := svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-01", Type: "FULL"})
	assert.NoError(t, err)
	assert.Equal(t, "FULL", first.Type)
	assert.Len(t, store, 1)

	comment := "dentist in the morning"
	mock.ExpectBegin()
	mock.ExpectCommit()
	second, err := svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-01", Type: "LAST-HALF", Comment: &comment})
	assert.NoError(t, err)
	assert.Equal(t, "LAST-HALF", second.Type)

	// same composite key: replaced, not duplicated
	assert.Len(t, store, 1)
	assert.Equal(t, DayTypeLastHalf, store["alice:2026-09-01"].DayType)
	assert.Equal(t, &comment, store["alice:2026-09-01"].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Upsert_InvalidInput(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	repo, _ := newStoreBackedRepo()
	svc := NewService(db, repo, newTestCache())

	_, err := svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-01", Type: "SOMETIMES"})
	assert.Error(t, err)

	_, err = svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "01.09.2026", Type: "FULL"})
	assert.Error(t, err)

	// nothing reached the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Upsert_RepoErrorRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.upsertFn = func(ctx context.Context, d *DayAtWork) error {
		return errors.New("connection reset")
	}

	svc := NewService(db, repo, newTestCache())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-01", Type: "FULL"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetSummary_ExcludesEmptyRows(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo, _ := newStoreBackedRepo()
	repo.findByDateFn = func(ctx context.Context, d time.Time) ([]DayAtWork, error) {
		return []DayAtWork{
			{UserID: "alice", Date: date, DayType: DayTypeFull},
			{UserID: "bob", Date: date, DayType: DayTypeEmpty},
		}, nil
	}

	svc := NewService(db, repo, newTestCache())

	summary, err := svc.GetSummary(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-01", summary.Date)
	assert.Len(t, summary.Attendees, 1)
	assert.Equal(t, "alice", summary.Attendees[0].UserID)
}

func TestService_GetRoster_IncludesEmptyRows(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo, _ := newStoreBackedRepo()
	repo.findByDateFn = func(ctx context.Context, d time.Time) ([]DayAtWork, error) {
		return []DayAtWork{
			{UserID: "alice", Date: date, DayType: DayTypeFull},
			{UserID: "bob", Date: date, DayType: DayTypeEmpty},
		}, nil
	}

	svc := NewService(db, repo, newTestCache())

	roster, err := svc.GetRoster(ctx, date)
	assert.NoError(t, err)
	assert.Len(t, roster.Attendees, 2)
}

func TestService_GetSummary_CachedUntilWrite(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo, _ := newStoreBackedRepo()
	queries := 0
	base := repo.findByDateFn
	repo.findByDateFn = func(ctx context.Context, d time.Time) ([]DayAtWork, error) {
		queries++
		return base(ctx, d)
	}

	svc := NewService(db, repo, newTestCache())

	first, err := svc.GetSummary(ctx, date)
	assert.NoError(t, err)
	assert.Empty(t, first.Attendees)

	_, err = svc.GetSummary(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 1, queries)

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-01", Type: "FULL"})
	assert.NoError(t, err)

	// write invalidated the cached entry, the next read sees the new row
	after, err := svc.GetSummary(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 2, queries)
	assert.Len(t, after.Attendees, 1)
	assert.Equal(t, "alice", after.Attendees[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetSummary_WriteForOtherDateKeepsCache(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo, _ := newStoreBackedRepo()
	queries := 0
	base := repo.findByDateFn
	repo.findByDateFn = func(ctx context.Context, d time.Time) ([]DayAtWork, error) {
		queries++
		return base(ctx, d)
	}

	svc := NewService(db, repo, newTestCache())

	_, err := svc.GetSummary(ctx, date)
	assert.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-02", Type: "FULL"})
	assert.NoError(t, err)

	_, err = svc.GetSummary(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 1, queries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetSummaryRange(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	repo, _ := newStoreBackedRepo()
	svc := NewService(db, repo, newTestCache())

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)

	res, err := svc.GetSummaryRange(ctx, from, to)
	assert.NoError(t, err)
	assert.Len(t, res, 3)
	assert.Equal(t, "2026-09-01", res[0].Date)
	assert.Equal(t, "2026-09-02", res[1].Date)
	assert.Equal(t, "2026-09-03", res[2].Date)

	// single day range is valid
	res, err = svc.GetSummaryRange(ctx, from, from)
	assert.NoError(t, err)
	assert.Len(t, res, 1)

	_, err = svc.GetSummaryRange(ctx, to, from)
	assert.Error(t, err)
}

func TestService_GetSummaryRange_RejectsOversizedRange(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	repo, _ := newStoreBackedRepo()
	queries := 0
	base := repo.findByDateFn
	repo.findByDateFn = func(ctx context.Context, d time.Time) ([]DayAtWork, error) {
		queries++
		return base(ctx, d)
	}

	svc := NewService(db, repo, newTestCache())

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// a full year is the limit
	res, err := svc.GetSummaryRange(ctx, from, from.AddDate(0, 0, MaxSummaryRangeDays-1))
	assert.NoError(t, err)
	assert.Len(t, res, MaxSummaryRangeDays)

	// one day more is rejected before any store read
	queries = 0
	_, err = svc.GetSummaryRange(ctx, from, from.AddDate(0, 0, MaxSummaryRangeDays))
	assert.Error(t, err)
	assert.Equal(t, 0, queries)
}

func TestService_SummaryAndRosterAfterClearingADay(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo, _ := newStoreBackedRepo()
	svc := NewService(db, repo, newTestCache())

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-01", Type: "FULL"})
	assert.NoError(t, err)
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = svc.Upsert(ctx, UpsertDayRequest{UserID: "bob", Date: "2026-09-01", Type: "FIRST-HALF"})
	assert.NoError(t, err)

	summary, err := svc.GetSummary(ctx, date)
	assert.NoError(t, err)
	assert.Len(t, summary.Attendees, 2)

	// alice clears her day
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-01", Type: "EMPTY"})
	assert.NoError(t, err)

	summary, err = svc.GetSummary(ctx, date)
	assert.NoError(t, err)
	if assert.Len(t, summary.Attendees, 1) {
		assert.Equal(t, "bob", summary.Attendees[0].UserID)
	}

	roster, err := svc.GetRoster(ctx, date)
	assert.NoError(t, err)
	assert.Len(t, roster.Attendees, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Upsert_WritesOutboxEvent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	ctx := context.Background()

	repo, _ := newStoreBackedRepo()
	outbox := &fakeOutbox{}
	svc := NewServiceWithOutbox(db, repo, outbox, newTestCache())

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Upsert(ctx, UpsertDayRequest{UserID: "alice", Date: "2026-09-01", Type: "FIRST-HALF"})
	assert.NoError(t, err)

	if assert.Len(t, outbox.created, 1) {
		created := outbox.created[0]
		assert.Equal(t, events.DayAtWorkUpdatedTopic, created.Topic)
		assert.Equal(t, "day_at_work", created.AggregateType)
		assert.Equal(t, "alice:2026-09-01", created.AggregateID)
		assert.Equal(t, kafka.OutboxStatusPending, created.Status)

		var event events.DayAtWorkUpdatedEvent
		assert.NoError(t, json.Unmarshal(created.Payload, &event))
		assert.Equal(t, "alice", event.UserID)
		assert.Equal(t, "2026-09-01", event.Date)
		assert.Equal(t, "FIRST-HALF", event.DayType)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
