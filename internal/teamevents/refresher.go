package teamevents

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartRefresher schedules periodic feed refreshes. A failed refresh keeps
// the previous snapshot; the handler degrades rather than failing, so a
// broken feed never takes the API down.
func StartRefresher(svc Service, spec string, logger *zap.Logger) (*cron.Cron, error) {
	log := logger.Named("teamevents.refresher")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := svc.Refresh(ctx); err != nil {
			log.Warn("scheduled calendar refresh failed, keeping previous snapshot", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Info("calendar refresher started", zap.String("schedule", spec))
	return c, nil
}
