package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/observability"
	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/reports"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/testing/rbactest"
)

type zeroCounter struct{}

func (zeroCounter) CountByStatus(context.Context, reports.Entity) ([]reports.StatusCount, error) {
	return nil, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := rbactest.Middleware()
	cfg := &Config{AppEnv: "test", RateLimitPerMinute: 1000, CORSOrigins: []string{"https://ats.example.com"}}
	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        observability.NewMetrics(),
		RBACMiddleware: mw,
		Authenticate: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer ok" {
					httpx.Fail(w, shared.ErrUnauthorized)
					return
				}
				p := &shared.Principal{UserID: 1, Role: "manager", Name: "Mia"}
				next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), p)))
			})
		},
		ReportsHandler: reports.NewHandler(logger, reports.NewService(zeroCounter{}, nil, logger), mw),
	})
}

func TestHealthAndMetrics(t *testing.T) {
	h := testRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

func TestPreflightAnswersOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/candidates", nil)
	req.Header.Set("Origin", "https://ats.example.com")
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://ats.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	h := CORS([]string{"https://a.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPIRequiresToken(t *testing.T) {
	h := testRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/summary", nil)
	req.Header.Set("Authorization", "Bearer ok")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestUnknownRouteIsJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Endpoint not found")
}
