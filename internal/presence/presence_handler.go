package presence

import (
	"encoding/json"
	"net/http"
	"time"

	"go-presence/internal/domain"
	"go-presence/internal/rbac"
	"go-presence/internal/shared/apperror"
	"go-presence/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	service Service
	rbac    rbac.Service
	rdb     *redis.Client
}

func NewHandler(service Service, rbacService rbac.Service) *Handler {
	return &Handler{service: service, rbac: rbacService}
}

func NewHandlerWithRedis(service Service, rbacService rbac.Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rbac: rbacService, rdb: rdb}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// parseDateQuery rejects malformed dates at the boundary; the core assumes
// well-formed input.
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, name+" query parameter is required", nil)
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, name+" must be a date in YYYY-MM-DD form", nil)
		return time.Time{}, false
	}
	return date, true
}

// GetOwnDays returns the caller's records from today onward.
func (h *Handler) GetOwnDays(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	resp, err := h.service.GetDayAtWorkList(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// GetUserDays returns a named user's records from today onward. Reading
// someone else's plan requires the read_any capability.
func (h *Handler) GetUserDays(c *gin.Context) {
	target := c.Param("userId")
	caller := c.GetString("user_id_validated")

	if target != caller {
		allowed, err := h.rbac.Enforce(domain.EnforceRequest{
			UserID:   caller,
			Role:     c.GetString("role"),
			Resource: rbac.ResourcePresence,
			Action:   rbac.ActionReadAny,
		})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden, apperror.ErrForbidden.Message, nil)
			return
		}
	}

	resp, err := h.service.GetDayAtWorkList(c.Request.Context(), target)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetDaySummary(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	resp, err := h.service.GetSummary(c.Request.Context(), date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetDaySummaryRange(c *gin.Context) {
	from, ok := parseDateQuery(c, "fromDate")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "toDate")
	if !ok {
		return
	}

	resp, err := h.service.GetSummaryRange(c.Request.Context(), from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetRoster(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	resp, err := h.service.GetRoster(c.Request.Context(), date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Upsert(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	caller := c.GetString("user_id_validated")

	var req UpsertDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.MapValidationError(err)
		httpErr := apperror.ToHTTP(mapped)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	if req.UserID != caller {
		allowed, err := h.rbac.Enforce(domain.EnforceRequest{
			UserID:   caller,
			Role:     c.GetString("role"),
			Resource: rbac.ResourcePresence,
			Action:   rbac.ActionWriteAny,
		})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden, "You may only update your own day at work", nil)
			return
		}
	}

	resp, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
			}
		}
	}

	response.Success(c, http.StatusOK, resp, nil)
}
