package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-presence/internal/changelog"
	"go-presence/internal/events"
	"go-presence/internal/messaging/kafka/consumer"
	"go-presence/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer tails the presence update topic and writes the change log.
func RunConsumer() error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	if err := gormDB.AutoMigrate(&changelog.PresenceChange{}); err != nil {
		return err
	}

	groupID := os.Getenv("KAFKA_GROUP_ID")
	if groupID == "" {
		groupID = "presence-changelog"
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{os.Getenv("KAFKA_BROKER")},
		Topic:   events.DayAtWorkUpdatedTopic,
		GroupID: groupID,
	})
	defer reader.Close()

	repo := changelog.NewRepository(gormDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumePresenceChanges(ctx, reader, repo, zap.L())
	return nil
}
