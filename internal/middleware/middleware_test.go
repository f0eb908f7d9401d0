package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"taskManager/internal/auth"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r.Context())
		require.True(t, ok)
		w.Write([]byte(strconv.FormatInt(userID, 10)))
	})
}

// TestAuthenticate тестирует проверку Bearer-токена
func TestAuthenticate(t *testing.T) {
	issuer, err := auth.NewTokenIssuer(testSecret)
	require.NoError(t, err)
	token, err := issuer.GenerateToken(&models.User{Model: models.Model{ID: 42}, Email: "alice@example.com"})
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	expiredIssuer, err := auth.NewTokenIssuer(testSecret, auth.WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	expired, err := expiredIssuer.GenerateToken(&models.User{Model: models.Model{ID: 42}})
	require.NoError(t, err)

	otherIssuer, err := auth.NewTokenIssuer([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	foreign, err := otherIssuer.GenerateToken(&models.User{Model: models.Model{ID: 42}})
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedBody   string
	}{
		{name: "success - valid token", header: "Bearer " + token.Value, expectedStatus: http.StatusOK, expectedBody: "42"},
		{name: "success - lowercase scheme", header: "bearer " + token.Value, expectedStatus: http.StatusOK, expectedBody: "42"},
		{name: "error - no header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "error - basic scheme", header: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "error - garbage token", header: "Bearer not.a.token", expectedStatus: http.StatusUnauthorized},
		{name: "error - expired token", header: "Bearer " + expired.Value, expectedStatus: http.StatusUnauthorized, expectedBody: "срок действия токена истёк"},
		{name: "error - wrong secret", header: "Bearer " + foreign.Value, expectedStatus: http.StatusUnauthorized},
	}

	handler := middleware.Authenticate(issuer)(echoUser(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", seen)
}

func TestRateLimit(t *testing.T) {
	handler := middleware.RateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRateLimiter_Eviction тестирует, что истёкшие окна не копятся
func TestRateLimiter_Eviction(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	limiter := middleware.NewRateLimiter(1, middleware.WithRateLimitClock(func() time.Time { return now }))
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	for i := range 50 {
		assert.Equal(t, http.StatusOK, call("10.0.1."+strconv.Itoa(i)).Code)
	}
	assert.Equal(t, 50, limiter.Tracked())

	limited := call("10.0.1.0")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, call("10.0.2.1").Code)
	assert.Equal(t, 1, limiter.Tracked(), "истёкшие окна удалены")
	assert.Equal(t, http.StatusOK, call("10.0.1.0").Code)
}

// TestLogging_UserID тестирует, что строка завершения запроса содержит пользователя
func TestLogging_UserID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	previous := logger.Logger
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = previous })

	issuer, err := auth.NewTokenIssuer(testSecret)
	require.NoError(t, err)
	token, err := issuer.GenerateToken(&models.User{Model: models.Model{ID: 42}})
	require.NoError(t, err)

	handler := middleware.RequestID(middleware.Logging(middleware.Authenticate(issuer)(echoUser(t))))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	done := logs.FilterMessage("HTTP_OUT: Завершение запроса").All()
	require.Len(t, done, 1)
	fields := done[0].ContextMap()
	assert.Equal(t, int64(42), fields["user_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Contains(t, fields, "elapsed")

	logs.TakeAll()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	done = logs.FilterMessage("HTTP_OUT: Завершение запроса").All()
	require.Len(t, done, 1)
	assert.NotContains(t, done[0].ContextMap(), "user_id")
	assert.Equal(t, zap.WarnLevel, done[0].Level)
}
