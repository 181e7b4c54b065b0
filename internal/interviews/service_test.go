package interviews

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/testing/rbactest"
)

type mockRepository struct {
	mu     sync.Mutex
	items  map[int64]Interview
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]Interview)}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) List(ctx context.Context) ([]Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Interview, 0, len(m.items))
	for _, iv := range m.items {
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InterviewDate != out[j].InterviewDate {
			return out[i].InterviewDate > out[j].InterviewDate
		}
		return out[i].InterviewTime > out[j].InterviewTime
	})
	return out, nil
}

func (m *mockRepository) ListByDate(ctx context.Context, date string) ([]Interview, error) {
	all, _ := m.List(ctx)
	out := make([]Interview, 0)
	for _, iv := range all {
		if iv.InterviewDate == date {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &iv, nil
}

func (m *mockRepository) FindByCandidate(ctx context.Context, candidateID int64) (*Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range m.items {
		if iv.CandidateID == candidateID {
			return &iv, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) Create(ctx context.Context, iv *Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	iv.ID = m.nextID
	m.items[iv.ID] = *iv
	return nil
}

func (m *mockRepository) Save(ctx context.Context, iv *Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[iv.ID]; !ok {
		return ErrNotFound
	}
	m.items[iv.ID] = *iv
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func strPtr(s string) *string { return &s }

func validRequest() CreateInterviewRequest {
	return CreateInterviewRequest{CandidateID: 3, CandidateName: "Asha", JobCode: "J-1", InterviewDate: "2024-06-01"}
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, CheckTransition(StatusScheduled, StatusL1Scheduled))
	assert.NoError(t, CheckTransition(StatusRescheduled, StatusShortlisted))
	assert.NoError(t, CheckTransition(StatusCompleted, StatusCompleted))
	assert.ErrorIs(t, CheckTransition(StatusCompleted, StatusScheduled), shared.ErrConflict)
	assert.ErrorIs(t, CheckTransition(StatusCancelled, StatusRescheduled), shared.ErrConflict)
	assert.ErrorIs(t, CheckTransition(StatusScheduled, "Hired"), shared.ErrValidation)
}

func TestCanonicalStatus(t *testing.T) {
	got, ok := CanonicalStatus("  l1 scheduled ")
	require.True(t, ok)
	assert.Equal(t, StatusL1Scheduled, got)
	_, ok = CanonicalStatus("done")
	assert.False(t, ok)
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	ctx := shared.ContextWithPrincipal(context.Background(), &shared.Principal{UserID: 2, Name: "Ravi"})

	iv, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, iv.Status)
	assert.Equal(t, ResultPending, iv.Result)
	assert.Equal(t, "Ravi", iv.ScheduledBy)
}

func TestCreateRequiredFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	req := validRequest()
	req.InterviewDate = ""
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interviewDate is required")

	req = validRequest()
	req.CandidateID = 0
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrValidation)

	req = validRequest()
	req.InterviewDate = "01/06/2024"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrValidation)

	all, _ := repo.List(context.Background())
	assert.Empty(t, all)
}

func TestUpdateNoFields(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	iv, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), iv.ID, UpdateInterviewRequest{Notes: strPtr("")})
	require.Error(t, err)
	assert.Equal(t, "No fields to update", err.Error())
}

func TestUpdateTerminalStatusRejected(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	iv, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), iv.ID, UpdateInterviewRequest{Status: strPtr("completed")})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), iv.ID, UpdateInterviewRequest{Status: strPtr(StatusScheduled)})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stored, _ := repo.Get(context.Background(), iv.ID)
	assert.Equal(t, StatusCompleted, stored.Status)
}

func TestUpdatePassesBeforeAndAfterToWriter(t *testing.T) {
	repo := newMockRepository()
	w := &captureWriter{repo: repo}
	svc := NewService(repo, w, nil)
	iv, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), iv.ID, UpdateInterviewRequest{Status: strPtr(StatusShortlisted)})
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, w.before.Status)
	assert.Equal(t, StatusShortlisted, w.after.Status)
}

type captureWriter struct {
	repo          Repository
	before, after Interview
}

func (c *captureWriter) CreateInterview(ctx context.Context, iv Interview) (Interview, error) {
	err := c.repo.Create(ctx, &iv)
	return iv, err
}

func (c *captureWriter) UpdateInterview(ctx context.Context, before, after Interview) (Interview, error) {
	c.before, c.after = before, after
	err := c.repo.Save(ctx, &after)
	return after, err
}

func TestUpdateUnknown(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	_, err := svc.Update(context.Background(), 5, UpdateInterviewRequest{Notes: strPtr("x")})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestHandlerScheduleRequiresScheduleGrant(t *testing.T) {
	h := NewHandler(nil, NewService(newMockRepository(), nil, nil), rbactest.Middleware())
	router := chi.NewRouter()
	h.MountRoutes(router)

	body := `{"action":"create","candidateId":"3","candidateName":"Asha","jobCode":"J-1","interviewDate":"2024-06-01"}`
	for role, want := range map[string]int{
		rbac.RoleRecruiter: http.StatusCreated,
		rbac.RoleViewer:    http.StatusForbidden,
	} {
		req := rbactest.As(httptest.NewRequest(http.MethodPost, "/interviews", strings.NewReader(body)), 1, role)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}
