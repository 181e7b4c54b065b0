package emaillogs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/testing/rbactest"
	"github.com/odyssey-erp/odyssey-ats/jobs"
)

type mockRepository struct {
	mu    sync.Mutex
	items []Log
}

func (m *mockRepository) List(ctx context.Context) ([]Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Log, 0, len(m.items))
	for i := len(m.items) - 1; i >= 0; i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.items {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) Create(ctx context.Context, l *Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = int64(len(m.items) + 1)
	l.SentAt = time.Now()
	m.items = append(m.items, *l)
	return nil
}

func (m *mockRepository) SetStatus(ctx context.Context, id int64, status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			m.items[i].Error = errMsg
			return nil
		}
	}
	return ErrNotFound
}

type fakeQueue struct {
	payloads []jobs.SendEmailPayload
	err      error
}

func (q *fakeQueue) EnqueueSendEmail(ctx context.Context, p jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.payloads = append(q.payloads, p)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

func TestCreateRequiresRecipientAndSubject(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil, nil)
	_, err := svc.Create(context.Background(), CreateLogRequest{Subject: "Hi"})
	require.Error(t, err)
	assert.Equal(t, "Recipient email and subject are required", err.Error())
	assert.Empty(t, repo.items)

	l, err := svc.Create(context.Background(), CreateLogRequest{RecipientEmail: "a@example.com", Subject: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, StatusSent, l.Status)
	assert.Equal(t, "system", l.SentBy)
}

func TestSendQueuesWithLogID(t *testing.T) {
	repo := &mockRepository{}
	queue := &fakeQueue{}
	svc := NewService(repo, queue, nil)

	l, err := svc.Send(context.Background(), SendRequest{RecipientEmail: "cand@example.com", Subject: "Offer", Message: "Hello\n<b>there</b>"})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, l.Status)

	require.Len(t, queue.payloads, 1)
	p := queue.payloads[0]
	assert.Equal(t, l.ID, p.LogID)
	assert.Equal(t, []string{"cand@example.com"}, p.To)
	assert.Equal(t, "<p>Hello<br>&lt;b&gt;there&lt;/b&gt;</p>", p.HTML)
}

func TestSendEnqueueFailureMarksRowFailed(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, &fakeQueue{err: errors.New("redis down")}, nil)

	_, err := svc.Send(context.Background(), SendRequest{RecipientEmail: "cand@example.com", Subject: "Offer", Message: "x"})
	require.Error(t, err)
	require.Len(t, repo.items, 1)
	assert.Equal(t, StatusFailed, repo.items[0].Status)
	assert.Equal(t, "redis down", repo.items[0].Error)
}

func TestSendValidation(t *testing.T) {
	svc := NewService(&mockRepository{}, &fakeQueue{}, nil)
	_, err := svc.Send(context.Background(), SendRequest{RecipientEmail: "nope", Subject: "x", Message: "y"})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestRecordDelivery(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, &fakeQueue{}, nil)

	queued, err := svc.Send(context.Background(), SendRequest{RecipientEmail: "cand@example.com", Subject: "Offer", Message: "x"})
	require.NoError(t, err)
	require.NoError(t, svc.RecordDelivery(context.Background(), jobs.Delivery{LogID: queued.ID, Status: jobs.DeliverySent}))
	stored, err := repo.Get(context.Background(), queued.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, stored.Status)

	require.NoError(t, svc.RecordDelivery(context.Background(), jobs.Delivery{
		To: []string{"a@example.com", "b@example.com"}, Subject: "New Job", Status: jobs.DeliveryFailed, Error: "smtp down",
	}))
	assert.Len(t, repo.items, 3)
	assert.Equal(t, "b@example.com", repo.items[2].RecipientEmail)
	assert.Equal(t, StatusFailed, repo.items[2].Status)
	assert.Equal(t, "system", repo.items[2].SentBy)
}

func TestHandlerPermissions(t *testing.T) {
	h := NewHandler(nil, NewService(&mockRepository{}, &fakeQueue{}, nil), rbactest.Middleware())
	router := chi.NewRouter()
	h.MountRoutes(router)

	do := func(role, body string) (int, map[string]json.RawMessage) {
		req := rbactest.As(httptest.NewRequest(http.MethodPost, "/email-logs", strings.NewReader(body)), 1, role)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		var env map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		return rec.Code, env
	}

	code, _ := do(rbac.RoleRecruiter, `{"action":"getAll"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := do(rbac.RoleAdmin, `{"action":"send","recipientEmail":"c@example.com","subject":"Hi","message":"Hello"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"Email queued for delivery"`, string(env["message"]))

	code, _ = do(rbac.RoleAdmin, `{"action":"purge"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
