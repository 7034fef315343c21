package auth

import (
	"go-presence/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", middleware.RateLimitByIP(0.1, 3), h.Register)
		authGroup.POST("/login", middleware.RateLimitByIP(0.08, 5), h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.GET("/me", middleware.AuthMiddleware(), middleware.ExtractUserID(), h.Me)
	}

	// The identity endpoint the calendar client polls on load.
	r.GET("/user", middleware.AuthMiddleware(), middleware.ExtractUserID(), h.Me)
}
