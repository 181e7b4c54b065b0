package timeentries

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/testing/rbactest"
)

type mockRepository struct {
	entries []Entry
}

func (m *mockRepository) List(ctx context.Context, f Filter) ([]Entry, error) {
	out := make([]Entry, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if f.UserID > 0 && e.UserID != f.UserID {
			continue
		}
		if f.Date != "" && e.WorkDate != f.Date {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockRepository) FindOpen(ctx context.Context, userID int64) (*Entry, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID && m.entries[i].Status == StatusClockedIn {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (m *mockRepository) ListOpen(ctx context.Context, userID int64) ([]Entry, error) {
	out := make([]Entry, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID && m.entries[i].Status == StatusClockedIn {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *mockRepository) Create(ctx context.Context, e *Entry) error {
	e.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockRepository) Close(ctx context.Context, id int64, out time.Time, hours float64) error {
	for i := range m.entries {
		if m.entries[i].ID == id && m.entries[i].Status == StatusClockedIn {
			m.entries[i].Status = StatusClockedOut
			m.entries[i].ClockOutTime = &out
			m.entries[i].TotalHours = &hours
			return nil
		}
	}
	return ErrNotClockedIn
}

func asUser(id int64) context.Context {
	return shared.ContextWithPrincipal(context.Background(), &shared.Principal{UserID: id, Name: "Ravi", Role: rbac.RoleRecruiter})
}

func TestHoursRoundsToTwoDecimals(t *testing.T) {
	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 8.5, Hours(in, in.Add(8*time.Hour+30*time.Minute)))
	assert.Equal(t, 1.33, Hours(in, in.Add(80*time.Minute)))
	assert.Equal(t, 0.0, Hours(in, in.Add(-time.Minute)))
}

func TestClockInOut(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, time.UTC, nil)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return start }

	e, err := svc.ClockIn(asUser(7))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", e.WorkDate)
	assert.Equal(t, StatusClockedIn, e.Status)

	_, err = svc.ClockIn(asUser(7))
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)

	open, err := svc.Status(asUser(7))
	require.NoError(t, err)
	require.NotNil(t, open)

	svc.clock = func() time.Time { return start.Add(7*time.Hour + 45*time.Minute) }
	closed, err := svc.ClockOut(asUser(7))
	require.NoError(t, err)
	require.NotNil(t, closed.TotalHours)
	assert.Equal(t, 7.75, *closed.TotalHours)
	assert.Equal(t, StatusClockedOut, closed.Status)

	_, err = svc.ClockOut(asUser(7))
	assert.ErrorIs(t, err, ErrNotClockedIn)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestWorkDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	svc := NewService(&mockRepository{}, loc, nil)
	svc.clock = func() time.Time { return time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC) }
	e, err := svc.ClockIn(asUser(1))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", e.WorkDate)
}

func TestRequiresPrincipal(t *testing.T) {
	svc := NewService(&mockRepository{}, nil, nil)
	_, err := svc.ClockIn(context.Background())
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestListRejectsBadDate(t *testing.T) {
	svc := NewService(&mockRepository{}, nil, nil)
	_, err := svc.List(context.Background(), Filter{Date: "02/03/2026"})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestHandlerClockInAndFilter(t *testing.T) {
	repo := &mockRepository{}
	router := chi.NewRouter()
	NewHandler(nil, NewService(repo, time.UTC, nil), rbactest.Middleware()).MountRoutes(router)

	req := rbactest.As(httptest.NewRequest(http.MethodPost, "/time-entries", strings.NewReader(`{"action":"clockIn"}`)), 5, rbac.RoleRecruiter)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = rbactest.As(httptest.NewRequest(http.MethodGet, "/time-entries?userId=6", nil), 5, rbac.RoleRecruiter)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Empty(t, env.Data)

	req = rbactest.As(httptest.NewRequest(http.MethodPost, "/time-entries", strings.NewReader(`{"action":"clockIn"}`)), 5, rbac.RoleViewer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClockInClosesEntryLeftOpenYesterday(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, time.UTC, nil)
	yesterday := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return yesterday }
	_, err := svc.ClockIn(asUser(7))
	require.NoError(t, err)

	svc.clock = func() time.Time { return yesterday.Add(15 * time.Hour) }
	today, err := svc.ClockIn(asUser(7))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", today.WorkDate)

	stale := repo.entries[0]
	assert.Equal(t, StatusClockedOut, stale.Status)
	require.NotNil(t, stale.TotalHours)
	assert.Equal(t, 6.0, *stale.TotalHours)
	assert.True(t, stale.ClockOutTime.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)))

	open, err := repo.ListOpen(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, today.ID, open[0].ID)
}

func TestClockOutCapsEntryFromEarlierDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	repo := &mockRepository{}
	svc := NewService(repo, loc, nil)
	in := time.Date(2026, 3, 2, 20, 0, 0, 0, loc)
	svc.clock = func() time.Time { return in }
	_, err := svc.ClockIn(asUser(7))
	require.NoError(t, err)

	svc.clock = func() time.Time { return in.Add(36 * time.Hour) }
	closed, err := svc.ClockOut(asUser(7))
	require.NoError(t, err)
	assert.Equal(t, StatusClockedOut, closed.Status)
	assert.Equal(t, 4.0, *closed.TotalHours)

	_, err = svc.ClockOut(asUser(7))
	assert.ErrorIs(t, err, ErrNotClockedIn)
}
