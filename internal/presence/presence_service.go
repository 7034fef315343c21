package presence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go-presence/internal/events"
	"go-presence/internal/messaging/kafka"
	"go-presence/internal/shared/apperror"
	"go-presence/internal/shared/contextutil"
	"go-presence/internal/shared/slidingcache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SummaryTTL is the sliding window for cached day summaries.
const SummaryTTL = 60 * time.Minute

// MaxSummaryRangeDays bounds a range query; each day is a store read on a
// cold cache, so an unbounded range is an easy way to hammer the database.
const MaxSummaryRangeDays = 366

//go:generate mockgen -source=presence_service.go -destination=mock/presence_service_mock.go -package=mock
type Service interface {
	GetDayAtWorkList(ctx context.Context, userID string) ([]DayAtWorkResponse, error)
	GetSummary(ctx context.Context, date time.Time) (DaySummaryResponse, error)
	GetSummaryRange(ctx context.Context, from, to time.Time) ([]DaySummaryResponse, error)
	GetRoster(ctx context.Context, date time.Time) (DaySummaryResponse, error)
	Upsert(ctx context.Context, req UpsertDayRequest) (DayAtWorkResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	cache  *slidingcache.Cache[DaySummaryResponse]
	clock  slidingcache.Clock
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, cache *slidingcache.Cache[DaySummaryResponse], logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, cache, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	cache *slidingcache.Cache[DaySummaryResponse],
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("presence.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("presence.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		cache:  cache,
		clock:  slidingcache.SystemClock(),
		logger: l,
	}
}

// NormalizeDate strips the time-of-day component. Every date entering the
// cache or the store goes through this, otherwise logically identical dates
// with different clock times would fragment the cache key space.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey is the cache key for a normalized date.
func DateKey(t time.Time) string {
	return NormalizeDate(t).Format("2006-01-02")
}

func (s *service) GetDayAtWorkList(ctx context.Context, userID string) ([]DayAtWorkResponse, error) {
	today := NormalizeDate(s.clock.Now())

	rows, err := s.repo.FindByUserFromDate(ctx, userID, today)
	if err != nil {
		s.logger.Error("find day at work list failed", zap.String("user_id", userID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	res := make([]DayAtWorkResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

// GetSummary is the anonymous read path: cached behind the sliding window
// and filtered to actual attendees (EMPTY rows are excluded).
func (s *service) GetSummary(ctx context.Context, date time.Time) (DaySummaryResponse, error) {
	day := NormalizeDate(date)
	key := DateKey(day)

	return s.cache.Get(ctx, key, func(ctx context.Context) (DaySummaryResponse, error) {
		rows, err := s.repo.FindByDate(ctx, day)
		if err != nil {
			s.logger.Error("compute day summary failed", zap.String("date", key), zap.Error(err))
			return DaySummaryResponse{}, mapRepositoryError(err)
		}

		attendees := make([]DayAttendee, 0, len(rows))
		for _, r := range rows {
			if r.DayType == DayTypeEmpty {
				continue
			}
			attendees = append(attendees, DayAttendee{
				UserID:  r.UserID,
				Type:    string(r.DayType),
				Comment: r.Comment,
			})
		}

		return DaySummaryResponse{Date: key, Attendees: attendees}, nil
	})
}

// GetSummaryRange is defined as the ascending per-date sequence of
// GetSummary calls over the inclusive range; there is no cross-date cache
// entry or batch query.
func (s *service) GetSummaryRange(ctx context.Context, from, to time.Time) ([]DaySummaryResponse, error) {
	start := NormalizeDate(from)
	end := NormalizeDate(to)
	if end.Before(start) {
		return nil, apperror.New(apperror.CodeInvalidInput, "toDate must not be before fromDate", 400)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > MaxSummaryRangeDays {
		return nil, apperror.New(apperror.CodeInvalidInput, fmt.Sprintf("date range may not exceed %d days", MaxSummaryRangeDays), 400)
	}
	res := make([]DaySummaryResponse, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		summary, err := s.GetSummary(ctx, d)
		if err != nil {
			return nil, err
		}
		res = append(res, summary)
	}
	return res, nil
}

// GetRoster is the authenticated full view: read directly from the store,
// EMPTY rows included so absences are visible.
func (s *service) GetRoster(ctx context.Context, date time.Time) (DaySummaryResponse, error) {
	day := NormalizeDate(date)

	rows, err := s.repo.FindByDate(ctx, day)
	if err != nil {
		s.logger.Error("get roster failed", zap.String("date", DateKey(day)), zap.Error(err))
		return DaySummaryResponse{}, mapRepositoryError(err)
	}

	attendees := make([]DayAttendee, len(rows))
	for i, r := range rows {
		attendees[i] = DayAttendee{
			UserID:  r.UserID,
			Type:    string(r.DayType),
			Comment: r.Comment,
		}
	}

	return DaySummaryResponse{Date: DateKey(day), Attendees: attendees}, nil
}

func (s *service) Upsert(ctx context.Context, req UpsertDayRequest) (DayAtWorkResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	dayType, err := ParseDayType(req.Type)
	if err != nil {
		return DayAtWorkResponse{}, apperror.Wrap(err, apperror.CodeInvalidInput, "unknown day type", 400)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return DayAtWorkResponse{}, apperror.Wrap(err, apperror.CodeInvalidInput, "invalid date, expected YYYY-MM-DD", 400)
	}

	row := &DayAtWork{
		UserID:  req.UserID,
		Date:    NormalizeDate(date),
		DayType: dayType,
		Comment: req.Comment,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("upsert begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return DayAtWorkResponse{}, mapRepositoryError(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Upsert(ctx, row); err != nil {
		s.logger.Error("upsert persist failed",
			zap.String("request_id", rid),
			zap.String("user_id", row.UserID),
			zap.Error(err),
		)
		return DayAtWorkResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event := events.DayAtWorkUpdatedEvent{
			EventType:  "day_at_work_updated",
			RequestID:  rid,
			UserID:     row.UserID,
			Date:       DateKey(row.Date),
			DayType:    string(row.DayType),
			Comment:    row.Comment,
			OccurredAt: s.clock.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return DayAtWorkResponse{}, err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "day_at_work",
			AggregateID:   row.UserID + ":" + DateKey(row.Date),
			EventType:     event.EventType,
			Topic:         events.DayAtWorkUpdatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("upsert outbox persist failed", zap.String("request_id", rid), zap.Error(err))
			return DayAtWorkResponse{}, mapRepositoryError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("upsert commit failed", zap.String("request_id", rid), zap.Error(err))
		return DayAtWorkResponse{}, mapRepositoryError(err)
	}

	// Invalidate before the write is acknowledged so the next summary read
	// for this date recomputes from the store.
	s.cache.Invalidate(DateKey(row.Date))

	s.logger.Info("day at work upserted",
		zap.String("request_id", rid),
		zap.String("user_id", row.UserID),
		zap.String("date", DateKey(row.Date)),
		zap.String("day_type", string(row.DayType)),
	)

	return mapToResponse(*row), nil
}

func mapToResponse(d DayAtWork) DayAtWorkResponse {
	return DayAtWorkResponse{
		UserID:  d.UserID,
		Date:    DateKey(d.Date),
		Type:    string(d.DayType),
		Comment: d.Comment,
	}
}
