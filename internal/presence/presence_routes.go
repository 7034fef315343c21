package presence

import (
	"go-presence/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rdb *redis.Client) {
	// Anonymous read paths: summaries are public and cache-backed.
	r.GET("/daySummary", h.GetDaySummary)
	r.GET("/daySummaryRange", h.GetDaySummaryRange)

	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		authed.GET("/dayAtWork", h.GetOwnDays)
		authed.GET("/dayAtWork/:userId", h.GetUserDays)
		authed.PUT("/dayAtWork", middleware.Idempotency(rdb), h.Upsert)
		authed.GET("/dayRoster", h.GetRoster)
	}
}
