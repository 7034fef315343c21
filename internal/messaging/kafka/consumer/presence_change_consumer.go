package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-presence/internal/changelog"
	"go-presence/internal/events"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumePresenceChanges appends one change-log row per
// day_at_work_updated event. Malformed events are committed and skipped;
// store failures leave the message uncommitted for redelivery.
func ConsumePresenceChanges(
	ctx context.Context,
	reader *kafkago.Reader,
	repo changelog.Repository,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.presence_changes")
	log.Info("presence change consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("presence change consumer stopped")
				return
			}
			log.Error("fetch presence change message failed", zap.Error(err))
			continue
		}

		var event events.DayAtWorkUpdatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode day_at_work_updated event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		date, err := time.Parse("2006-01-02", event.Date)
		if err != nil {
			log.Error("day_at_work_updated event carries invalid date",
				zap.String("date", event.Date),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		change := &changelog.PresenceChange{
			ID:         uuid.New(),
			UserID:     event.UserID,
			Date:       date,
			DayType:    event.DayType,
			Comment:    event.Comment,
			RequestID:  event.RequestID,
			OccurredAt: event.OccurredAt,
		}

		if err := repo.Append(ctx, change); err != nil {
			log.Error("append presence change failed",
				zap.String("user_id", event.UserID),
				zap.String("date", event.Date),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit presence change message failed", zap.Error(err))
			continue
		}

		log.Info("presence change recorded",
			zap.String("user_id", event.UserID),
			zap.String("date", event.Date),
			zap.String("day_type", event.DayType),
		)
	}
}
