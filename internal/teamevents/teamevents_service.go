package teamevents

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Window is how far into the future recurrences are expanded.
const Window = 365 * 24 * time.Hour

//go:generate mockgen -source=teamevents_service.go -destination=mock/teamevents_service_mock.go -package=mock
type Service interface {
	// List returns the events of [today, today+1y), sorted by start time.
	List(ctx context.Context) ([]TeamEvent, error)
	// Refresh re-fetches and re-expands the feed into the served snapshot.
	Refresh(ctx context.Context) error
}

type service struct {
	fetcher *Fetcher
	logger  *zap.Logger

	mu       sync.RWMutex
	snapshot []TeamEvent
	loaded   bool
}

func NewService(fetcher *Fetcher, logger ...*zap.Logger) Service {
	l := zap.L().Named("teamevents.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("teamevents.service")
	}
	return &service{fetcher: fetcher, logger: l}
}

func (s *service) List(ctx context.Context) ([]TeamEvent, error) {
	s.mu.RLock()
	if s.loaded {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	// First request before the cron refresher has run: load inline.
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}

func (s *service) Refresh(ctx context.Context) error {
	body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Warn("team calendar fetch failed", zap.Error(err))
		return err
	}

	parsed, err := parseCalendar(body)
	if err != nil {
		s.logger.Warn("team calendar parse failed", zap.Error(err))
		return err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	events := expandEvents(parsed, today, today.Add(Window))

	s.mu.Lock()
	s.snapshot = events
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("team calendar refreshed", zap.Int("event_count", len(events)))
	return nil
}
