package reports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/testing/rbactest"
)

type fakeCounter struct {
	mu    sync.Mutex
	data  map[Entity][]StatusCount
	err   error
	calls int
}

func (f *fakeCounter) CountByStatus(ctx context.Context, entity Entity) ([]StatusCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data[entity], nil
}

func newCounter() *fakeCounter {
	return &fakeCounter{data: map[Entity][]StatusCount{
		EntityCandidates: {{Status: "new", Count: 4}, {Status: "Hired", Count: 2}, {Status: "joined", Count: 1}},
		EntityJobs:       {{Status: "Active", Count: 3}},
	}}
}

func TestSummaryTotals(t *testing.T) {
	svc := NewService(newCounter(), nil, nil)
	svc.clock = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	s, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.Candidates.Total)
	assert.Equal(t, int64(3), s.Hires)
	assert.Equal(t, int64(3), s.Jobs.Total)
	assert.Equal(t, int64(0), s.Interviews.Total)
	assert.NotNil(t, s.Interviews.ByStatus)
	assert.Equal(t, 2024, s.GeneratedAt.Year())
}

func TestSummaryPropagatesErrors(t *testing.T) {
	c := newCounter()
	c.err = errors.New("db down")
	_, err := NewService(c, nil, nil).Summary(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestSummaryCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := newCounter()
	cache := NewCache(client, time.Minute)
	svc := NewService(c, cache, nil)
	ctx := context.Background()

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, c.calls)
	assert.Equal(t, first.Hires, second.Hires)
	assert.True(t, mr.Exists(summaryKey))

	require.NoError(t, cache.Invalidate(ctx))
	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, c.calls)
}

func TestSummaryFallsBackWhenCacheUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	s, err := NewService(newCounter(), NewCache(client, time.Minute), nil).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Hires)
}

func TestHandlerRequiresReports(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, NewService(newCounter(), nil, nil), rbactest.Middleware()).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, rbactest.As(httptest.NewRequest(http.MethodGet, "/reports/summary", nil), 1, rbac.RoleRecruiter))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, rbactest.As(httptest.NewRequest(http.MethodGet, "/reports/summary", nil), 1, rbac.RoleManager))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hires":3`)
}
