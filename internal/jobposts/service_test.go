package jobposts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/notify"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/testing/rbactest"
)

type mockRepository struct {
	mu     sync.Mutex
	items  map[int64]Job
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]Job)}
}

func (m *mockRepository) List(ctx context.Context) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.items))
	for _, j := range m.items {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID > out[k].ID })
	return out, nil
}

func (m *mockRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]Job, error) {
	all, _ := m.List(ctx)
	out := make([]Job, 0)
	for _, j := range all {
		if !j.CreatedAt.Before(since) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &j, nil
}

func (m *mockRepository) Create(ctx context.Context, j *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.JobCode == j.JobCode {
			return ErrJobCodeTaken
		}
	}
	m.nextID++
	j.ID = m.nextID
	j.CreatedAt = time.Now()
	j.UpdatedAt = j.CreatedAt
	m.items[j.ID] = *j
	return nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "status":
			j.Status = v.(string)
		case "client":
			j.Client = v.(string)
		case "open_positions":
			j.OpenPositions = v.(int)
		}
	}
	m.items[id] = j
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type captureSender struct {
	events []notify.Event
	err    error
}

func (c *captureSender) Notify(ctx context.Context, ev notify.Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func validRequest() CreateJobRequest {
	return CreateJobRequest{JobCode: "JC-101", Client: "Acme", Skill: "Go", TeamLead: "lead@example.com", PrincipalConsultant: "Priya"}
}

func TestCreateDefaultsAndNotifies(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(newMockRepository(), sender, nil, nil)

	ctx := shared.ContextWithPrincipal(context.Background(), &shared.Principal{UserID: 3, Name: "Meera", Email: "meera@example.com"})
	j, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusActive, j.Status)
	assert.Equal(t, 1, j.OpenPositions)
	assert.Equal(t, "Meera", j.CreatedBy)

	require.Len(t, sender.events, 1)
	ev := sender.events[0]
	assert.Equal(t, notify.KindJobCreated, ev.Kind)
	assert.Equal(t, "New Job Created: JC-101 - Acme", ev.Subject)
	assert.Equal(t, []string{"lead@example.com"}, ev.Recipients)
	assert.Contains(t, ev.Text(), "Created By: Meera (meera@example.com)")
}

func TestCreateRequiresCodeClientSkill(t *testing.T) {
	for _, mutate := range []func(*CreateJobRequest){
		func(r *CreateJobRequest) { r.JobCode = " " },
		func(r *CreateJobRequest) { r.Client = "" },
		func(r *CreateJobRequest) { r.Skill = "" },
	} {
		repo := newMockRepository()
		svc := NewService(repo, nil, nil, nil)
		req := validRequest()
		mutate(&req)
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, "Job code, client, and skill are required", err.Error())
		assert.Empty(t, repo.items)
	}
}

func TestCreateDuplicateCode(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)
	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validRequest())
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestNotificationFailureDoesNotFailCreate(t *testing.T) {
	svc := NewService(newMockRepository(), &captureSender{err: errors.New("queue down")}, nil, nil)
	j, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotZero(t, j.ID)
}

func TestUpdate(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)
	j, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	t.Run("no fields", func(t *testing.T) {
		empty := ""
		_, err := svc.Update(context.Background(), j.ID, UpdateJobRequest{Client: &empty})
		require.Error(t, err)
		assert.Equal(t, "No fields to update", err.Error())
	})

	t.Run("changes status", func(t *testing.T) {
		status := StatusFilled
		updated, err := svc.Update(context.Background(), j.ID, UpdateJobRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, StatusFilled, updated.Status)
		assert.Equal(t, "Acme", updated.Client)
	})

	t.Run("bad status", func(t *testing.T) {
		status := "Paused"
		_, err := svc.Update(context.Background(), j.ID, UpdateJobRequest{Status: &status})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("unknown id", func(t *testing.T) {
		status := StatusClosed
		_, err := svc.Update(context.Background(), 404, UpdateJobRequest{Status: &status})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestUpdateColumns(t *testing.T) {
	code, empty, positions := "JC-9", "", 3
	cols := UpdateJobRequest{JobCode: &code, Budget: &empty, OpenPositions: &positions}.columns()
	assert.Equal(t, map[string]interface{}{"job_code": "JC-9", "open_positions": 3}, cols)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func serve(t *testing.T, h *Handler, role, method, body string) (int, envelope) {
	t.Helper()
	router := chi.NewRouter()
	h.MountRoutes(router)
	req := rbactest.As(httptest.NewRequest(method, "/jobs", strings.NewReader(body)), 1, role)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestHandlerJobs(t *testing.T) {
	h := NewHandler(nil, NewService(newMockRepository(), nil, nil, nil), rbactest.Middleware())

	code, env := serve(t, h, rbac.RoleRecruiter, http.MethodPost, `{"action":"create","jobCode":"J1","client":"Acme","skill":"Go"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)

	code, env = serve(t, h, rbac.RoleManager, http.MethodPost, `{"action":"create","jobCode":"J1","client":"Acme","skill":"Go"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Job created successfully", env.Message)

	code, _ = serve(t, h, rbac.RoleManager, http.MethodPost, `{"action":"create","jobCode":"J1","client":"Acme","skill":"Go"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, env = serve(t, h, rbac.RoleViewer, http.MethodGet, "")
	require.Equal(t, http.StatusOK, code)
	var items []Job
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "J1", items[0].JobCode)
}
