package app

import (
	"context"
	"os"

	"go-presence/internal/auth"
	"go-presence/internal/changelog"
	"go-presence/internal/messaging/kafka"
	"go-presence/internal/presence"
	"go-presence/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure, migrates the schema and registers
// every module's routes on the router.
func BuildApp(router *gin.Engine) error {
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

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	if err := gormDB.AutoMigrate(
		&presence.DayAtWork{},
		&auth.User{},
		&changelog.PresenceChange{},
	); err != nil {
		return err
	}
	if err := kafka.EnsureOutboxTable(context.Background(), sqlDB); err != nil {
		return err
	}

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(addr, 5)
		if err != nil {
			return err
		}
	} else {
		zap.L().Warn("REDIS_ADDR not set, idempotency keys are disabled")
	}

	return registerModules(router, sqlDB, gormDB, rdb)
}
