package app

import (
	"database/sql"
	"os"
	"path/filepath"

	"go-presence/internal/auth"
	"go-presence/internal/messaging/kafka"
	"go-presence/internal/middleware"
	"go-presence/internal/presence"
	"go-presence/internal/rbac"
	"go-presence/internal/rbac/infra"
	"go-presence/internal/shared/slidingcache"
	"go-presence/internal/teamevents"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Global middleware ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
	}))
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	// --- Repositories ---
	presenceRepo := presence.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC ---
	enforcer, err := infra.NewEnforcer(
		filepath.Join("internal", "rbac", "infra", "model.conf"),
		filepath.Join("internal", "rbac", "infra", "policy.csv"),
	)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Core components ---
	// One process-wide summary cache, owned here and handed to the
	// presence service; its lifecycle matches the server's.
	summaryCache := slidingcache.New[presence.DaySummaryResponse](presence.SummaryTTL, slidingcache.SystemClock())

	// --- Services ---
	presenceService := presence.NewServiceWithOutbox(db, presenceRepo, outboxRepo, summaryCache)
	authService := auth.NewService(authRepo)

	fetcher := teamevents.NewFetcher(os.Getenv("CAL_URL"))
	teamEventsService := teamevents.NewService(fetcher)

	refreshSpec := os.Getenv("CAL_REFRESH_CRON")
	if refreshSpec == "" {
		refreshSpec = "@every 15m"
	}
	if _, err := teamevents.StartRefresher(teamEventsService, refreshSpec, zap.L()); err != nil {
		return err
	}

	// --- Handlers ---
	presenceHandler := presence.NewHandlerWithRedis(presenceService, rbacService, rdb)
	authHandler := auth.NewHandler(authService)
	teamEventsHandler := teamevents.NewHandler(teamEventsService)

	// --- Routes ---
	api := router.Group("/api")
	{
		auth.RegisterRoutes(api, authHandler)
		presence.RegisterRoutes(api, presenceHandler, rdb)
		teamevents.RegisterRoutes(api, teamEventsHandler)
	}

	return nil
}
