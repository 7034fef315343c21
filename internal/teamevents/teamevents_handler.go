package teamevents

import (
	"net/http"

	"go-presence/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("teamevents.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("teamevents.handler")
	}
	return &Handler{service: service, logger: l}
}

// List serves the team calendar. Events are supplementary to the core
// attendance data, so a broken feed degrades to an empty list instead of
// failing the request.
func (h *Handler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Warn("serving degraded team events response", zap.Error(err))
		response.Degraded(c, http.StatusOK, []TeamEvent{}, "team calendar is temporarily unavailable")
		return
	}
	response.Success(c, http.StatusOK, events, nil)
}
