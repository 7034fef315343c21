package teamevents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func calendarServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestService_ListServesFetchedEvents(t *testing.T) {
	// recurring so that the served window always contains occurrences,
	// whatever today is
	body := icsFixture(
		"BEGIN:VEVENT",
		"UID:ev-1",
		"SUMMARY:Monthly social",
		"DTSTART:20200106T170000Z",
		"DTEND:20200106T210000Z",
		"RRULE:FREQ=MONTHLY",
		"ATTENDEE;CN=Alice;PARTSTAT=ACCEPTED:mailto:alice@example.com",
		"END:VEVENT",
	)
	srv := calendarServer(t, http.StatusOK, body)

	svc := NewService(NewFetcher(srv.URL))

	events, err := svc.List(context.Background())
	assert.NoError(t, err)
	if assert.NotEmpty(t, events) {
		assert.Equal(t, "Monthly social", events[0].Name)
		assert.Equal(t, []string{"Alice"}, events[0].Attendees)
	}
	count := len(events)

	// second call serves the snapshot without refetching
	srv.Close()
	events, err = svc.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, events, count)
}

func TestService_ListFailsWhenFeedUnavailable(t *testing.T) {
	srv := calendarServer(t, http.StatusBadGateway, nil)

	svc := NewService(NewFetcher(srv.URL))
	_, err := svc.List(context.Background())
	assert.Error(t, err)
}

func TestFetcher_EmptyURL(t *testing.T) {
	_, err := NewFetcher("").Fetch(context.Background())
	assert.Error(t, err)
}

func TestHandler_ListDegradesOnFeedFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := calendarServer(t, http.StatusInternalServerError, nil)
	h := NewHandler(NewService(NewFetcher(srv.URL)))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/teamEvents", nil)
	h.List(c)

	// feed failure never fails the request
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "warning")
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	body := icsFixture(
		"BEGIN:VEVENT",
		"UID:ev-1",
		"SUMMARY:Town hall",
		"DTSTART:20200107T100000Z",
		"DTEND:20200107T110000Z",
		"RRULE:FREQ=WEEKLY",
		"END:VEVENT",
	)
	srv := calendarServer(t, http.StatusOK, body)
	h := NewHandler(NewService(NewFetcher(srv.URL)))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/teamEvents", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Town hall")
}
