package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func idempotencyRouter(rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/api/dayAtWork", func(c *gin.Context) {
		c.Set("user_id_validated", "alice")
		c.Next()
	}, Idempotency(rdb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "data": "fresh"})
	})
	return r
}

func putWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/dayAtWork", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_NilClientPassesThrough(t *testing.T) {
	r := idempotencyRouter(nil)
	w := putWithKey(r, "key-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fresh")
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := idempotencyRouter(rdb)

	w := putWithKey(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_FirstRequestLocksAndProceeds(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := idempotencyRouter(rdb)

	cacheKey := "idemp:/api/dayAtWork:alice:key-1"
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)

	w := putWithKey(r, "key-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fresh")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplayServesCachedResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := idempotencyRouter(rdb)

	cacheKey := "idemp:/api/dayAtWork:alice:key-1"
	mock.ExpectGet(cacheKey).SetVal(`{"userId":"alice","date":"2026-09-01"}`)

	w := putWithKey(r, "key-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026-09-01")
	assert.NotContains(t, w.Body.String(), "fresh")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := idempotencyRouter(rdb)

	cacheKey := "idemp:/api/dayAtWork:alice:key-1"
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

	w := putWithKey(r, "key-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PROCESSING")
	assert.NoError(t, mock.ExpectationsWereMet())
}
