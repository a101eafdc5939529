package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/devevents/internal/auth"
	apphttp "github.com/geocoder89/devevents/internal/http"
	"github.com/geocoder89/devevents/internal/http/middlewares"
	"github.com/geocoder89/devevents/internal/notifications"
	"github.com/geocoder89/devevents/internal/repo"
	"github.com/geocoder89/devevents/internal/store/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

type testApp struct {
	router *gin.Engine
	tokens *auth.Manager
}

func setupApp(t *testing.T, writeLimit int) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	gw := memory.New(repo.Schema())
	events := repo.NewEventsRepo(gw, nil)
	bookings := repo.NewBookingsRepo(gw, events, nil)
	tokens := auth.NewManager(testSecret, time.Hour)

	router := apphttp.NewRouter(apphttp.Deps{
		Env:          "test",
		Log:          logger,
		Events:       events,
		Bookings:     bookings,
		Ping:         gw.Ping,
		Tokens:       tokens,
		Notifier:     notifications.NewLogNotifier(logger),
		WriteLimiter: middlewares.NewMemoryLimiter(writeLimit, time.Minute),
	})

	return &testApp{router: router, tokens: tokens}
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()

	token, err := a.tokens.GenerateAccessToken("ops@example.com", auth.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func eventBody() map[string]any {
	return map[string]any{
		"title":       "Go Systems Conf",
		"description": "A day of talks on building systems in Go.",
		"overview":    "Talks and workshops.",
		"image":       "/images/go-systems.png",
		"venue":       "Hall 4",
		"location":    "Berlin, Germany",
		"date":        "September 18, 2025",
		"time":        "9:00 AM",
		"mode":        "offline",
		"audience":    "Backend engineers",
		"agenda":      []string{"Keynote", "Talks"},
		"organizer":   "Go Community",
		"tags":        []string{"go", "backend"},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	body := decode(t, w)
	envelope, ok := body["error"].(map[string]any)
	require.True(t, ok, "no error envelope in %s", w.Body.String())

	code, _ := envelope["code"].(string)
	return code
}

func TestEventLifecycle(t *testing.T) {
	app := setupApp(t, 100)
	token := app.adminToken(t)

	// create
	w := app.do(t, http.MethodPost, "/events", eventBody(), bearer(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/events/go-systems-conf", w.Header().Get("Location"))

	created := decode(t, w)
	assert.Equal(t, "go-systems-conf", created["slug"])
	assert.Equal(t, "2025-09-18", created["date"])
	assert.Equal(t, "09:00", created["time"])
	eventID, _ := created["id"].(string)
	require.NotEmpty(t, eventID)

	// same title again
	w = app.do(t, http.MethodPost, "/events", eventBody(), bearer(token))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_slug", errorCode(t, w))

	// fetch with conditional revalidation
	w = app.do(t, http.MethodGet, "/events/Go-Systems-Conf", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = app.do(t, http.MethodGet, "/events/go-systems-conf", nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, w.Code)

	// retitling moves the slug
	w = app.do(t, http.MethodPatch, "/events/go-systems-conf", map[string]any{"title": "Go Systems Conf EU"}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "go-systems-conf-eu", decode(t, w)["slug"])

	w = app.do(t, http.MethodGet, "/events/go-systems-conf", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodGet, "/events/go-systems-conf-eu", nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusOK, w.Code)

	// list by tag
	w = app.do(t, http.MethodGet, "/events?tag=go", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = app.do(t, http.MethodGet, "/events?tag=rust", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["count"])
}

func TestBookingFlow(t *testing.T) {
	app := setupApp(t, 100)
	token := app.adminToken(t)

	w := app.do(t, http.MethodPost, "/events", eventBody(), bearer(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	eventID, _ := decode(t, w)["id"].(string)

	for _, email := range []string{" Ada@Example.com ", "grace@example.com"} {
		w = app.do(t, http.MethodPost, "/bookings", map[string]any{"eventId": eventID, "email": email}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = app.do(t, http.MethodGet, "/events/go-systems-conf/bookings/count", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, eventID, body["eventId"])
	assert.EqualValues(t, 2, body["count"])

	// dangling reference is refused and nothing is stored
	w = app.do(t, http.MethodPost, "/bookings", map[string]any{"eventId": "does-not-exist", "email": "ada@example.com"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "event_not_found", errorCode(t, w))

	w = app.do(t, http.MethodPost, "/bookings", map[string]any{"eventId": eventID, "email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", errorCode(t, w))

	w = app.do(t, http.MethodGet, "/events/go-systems-conf/bookings/count", nil, nil)
	assert.EqualValues(t, 2, decode(t, w)["count"])
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	app := setupApp(t, 100)

	w := app.do(t, http.MethodPost, "/events", eventBody(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/events", eventBody(), bearer("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userToken, err := app.tokens.GenerateAccessToken("someone@example.com", "user")
	require.NoError(t, err)

	w = app.do(t, http.MethodPost, "/events", eventBody(), bearer(userToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	other := auth.NewManager("another-secret", time.Hour)
	forged, err := other.GenerateAccessToken("ops@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	w = app.do(t, http.MethodPost, "/events", eventBody(), bearer(forged))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingsAreRateLimited(t *testing.T) {
	app := setupApp(t, 2)

	body := map[string]any{"eventId": "missing", "email": "ada@example.com"}

	for i := 0; i < 2; i++ {
		w := app.do(t, http.MethodPost, "/bookings", body, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	w := app.do(t, http.MethodPost, "/bookings", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// reads are not limited
	w = app.do(t, http.MethodGet, "/events", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupApp(t, 100)

	w := app.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "devevents_http_requests_total")
}
