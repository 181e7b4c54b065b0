package transfer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
	"github.com/odyssey-erp/odyssey-ats/internal/jobposts"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/testing/rbactest"
)

type memoryStore struct {
	items []candidates.Candidate
	fail  map[string]error
}

func (m *memoryStore) List(ctx context.Context) ([]candidates.Candidate, error) {
	return m.items, nil
}

func (m *memoryStore) Create(ctx context.Context, req candidates.CreateCandidateRequest) (*candidates.Candidate, error) {
	if err := m.fail[req.Email]; err != nil {
		return nil, err
	}
	c := candidates.Candidate{
		ID: int64(len(m.items) + 1), Name: req.Name, Email: req.Email, Mobile: req.Mobile,
		CurrentLocation: req.CurrentLocation, WorkLocation: req.WorkLocation, Education: req.Education,
		TotalEx: req.TotalEx, Rex: req.Rex, CCTC: req.CCTC, ECTC: req.ECTC, Notice: req.Notice,
		CurrentCompany: req.CurrentCompany, Skill: req.Skill, Source: req.Source, Status: req.Status,
		Remarks: req.Remarks,
	}
	m.items = append(m.items, c)
	return &c, nil
}

type memoryKeys map[string]bool

func (k memoryKeys) CheckAndInsert(ctx context.Context, key, module string) error {
	if k[key] {
		return shared.ErrIdempotencyConflict
	}
	k[key] = true
	return nil
}

func (k memoryKeys) Delete(ctx context.Context, key string) error {
	delete(k, key)
	return nil
}

func TestMapHeadersExactAndAliases(t *testing.T) {
	m := MapHeaders([]string{"  Candidate   NAME ", "E-mail", "Phone", "", "City", "Skills"})
	assert.Equal(t, 0, m[FieldName])
	assert.Equal(t, 2, m[FieldMobile])
	assert.Equal(t, 4, m[FieldCurrentLocation])
	assert.Equal(t, 5, m[FieldSkill])
	// "e-mail" has no exact alias; pass two finds "mail" inside it
	assert.Equal(t, 1, m[FieldEmail])
	for field, idx := range m {
		assert.NotEqual(t, 3, idx, field)
	}
}

func TestMapHeadersClaimsEachHeaderOnce(t *testing.T) {
	m := MapHeaders([]string{"Current CTC", "Expected CTC"})
	assert.Equal(t, 0, m[FieldCurrentCTC])
	assert.Equal(t, 1, m[FieldExpectedCTC])

	// "ctc" alone is claimed by currentCTC in pass one, leaving nothing for expectedCTC
	m = MapHeaders([]string{"CTC"})
	assert.Equal(t, 0, m[FieldCurrentCTC])
	_, ok := m[FieldExpectedCTC]
	assert.False(t, ok)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "notice period", NormalizeHeader("\ufeff  NOTICE\t  Period "))
}

func TestExportImportRoundTrip(t *testing.T) {
	original := candidates.Candidate{
		ID: 9, Name: "Asha Rao", Email: "asha@example.com", Mobile: "9876543210",
		CurrentLocation: "Pune", WorkLocation: "Bangalore, KA", Education: "B.Tech",
		TotalEx: "5", Rex: "4", CCTC: "8 LPA", ECTC: "12 LPA", Notice: "30 days",
		CurrentCompany: `Tech "Corp"`, Skill: "Go, Kafka", Source: "Naukri", Status: "Processed",
		Remarks: "line one\nline two", JobCode: "JC-1", Client: "Acme", Location: "Mumbai",
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCandidatesCSV(&buf, []candidates.Candidate{original}))
	assert.Contains(t, buf.String(), "\r\n")

	store := &memoryStore{}
	res, err := NewImporter(store, nil, nil).Import(context.Background(), &buf, "")
	require.NoError(t, err)
	require.Equal(t, 1, res.Success, res.Errors)
	got := res.Data[0]

	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, original.Email, got.Email)
	assert.Equal(t, original.Mobile, got.Mobile)
	assert.Equal(t, original.CurrentLocation, got.CurrentLocation)
	assert.Equal(t, original.WorkLocation, got.WorkLocation)
	assert.Equal(t, original.Education, got.Education)
	assert.Equal(t, original.TotalEx, got.TotalEx)
	assert.Equal(t, original.Rex, got.Rex)
	assert.Equal(t, original.CCTC, got.CCTC)
	assert.Equal(t, original.ECTC, got.ECTC)
	assert.Equal(t, original.Notice, got.Notice)
	assert.Equal(t, original.CurrentCompany, got.CurrentCompany)
	assert.Equal(t, original.Skill, got.Skill)
	assert.Equal(t, original.Source, got.Source)
	assert.Equal(t, original.Status, got.Status)
	assert.Equal(t, original.Remarks, got.Remarks)
}

func TestImportValidatesRowsAndDefaults(t *testing.T) {
	doc := "Name,Email,Mobile\r\n" +
		"Asha,asha@example.com,1\r\n" +
		",bad,\r\n" +
		",,\r\n" +
		"Ravi,ravi@example.com,2\r\n"
	store := &memoryStore{fail: map[string]error{"ravi@example.com": errors.New("pq: boom")}}
	res, err := NewImporter(store, nil, nil).Import(context.Background(), strings.NewReader(doc), "")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []string{
		"Row 3: Name is required, Invalid email format, Mobile number is required",
		"Row 4: could not be saved",
	}, res.Errors)
	assert.Equal(t, candidates.StatusNew, res.Data[0].Status)
	assert.Equal(t, DefaultSource, res.Data[0].Source)
}

func TestImportIdempotencyKey(t *testing.T) {
	keys := memoryKeys{}
	im := NewImporter(&memoryStore{}, keys, nil)
	doc := "name,email,mobile\nAsha,asha@example.com,1\n"

	_, err := im.Import(context.Background(), strings.NewReader(doc), "batch-1")
	require.NoError(t, err)
	_, err = im.Import(context.Background(), strings.NewReader(doc), "batch-1")
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))

	// a batch that wrote nothing releases its key
	_, err = im.Import(context.Background(), strings.NewReader("name,email,mobile\n,,x\n"), "batch-2")
	require.NoError(t, err)
	assert.False(t, keys["batch-2"])
}

func TestParseRejectsEmptyAndUnknownHeaders(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = Parse(strings.NewReader("foo,bar\n1,2\n"))
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

type jobList []jobposts.Job

func (j jobList) List(ctx context.Context) ([]jobposts.Job, error) { return j, nil }

func router(store *memoryStore) chi.Router {
	h := NewHandler(nil, NewImporter(store, nil, nil), jobList{{ID: 1, JobCode: "JC-1", Client: "Acme", Skill: "Go", OpenPositions: 2}}, rbactest.Middleware())
	h.clock = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Route("/candidates", h.CandidateRoutes)
	r.Route("/jobs", h.JobRoutes)
	return r
}

func TestHandlerExports(t *testing.T) {
	r := router(&memoryStore{items: []candidates.Candidate{{ID: 1, Name: "Asha"}}})

	req := rbactest.As(httptest.NewRequest(http.MethodGet, "/jobs/export", nil), 1, rbac.RoleManager)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="jobs-20260102.csv"`, rec.Header().Get("Content-Disposition"))
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "JC-1", records[1][1])
	assert.Equal(t, "2", records[1][8])

	req = rbactest.As(httptest.NewRequest(http.MethodGet, "/candidates/export", nil), 1, rbac.RoleViewer)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerMultipartImport(t *testing.T) {
	store := &memoryStore{}
	r := router(store)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "candidates.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Full Name,Email Address,Mobile Number\nAsha,asha@example.com,1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/candidates/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, rbactest.As(req, 1, rbac.RoleManager))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, store.items, 1)
	assert.Equal(t, "Asha", store.items[0].Name)

	req = httptest.NewRequest(http.MethodPost, "/candidates/import", strings.NewReader("name,email,mobile\nA,a@example.com,1\n"))
	req.Header.Set("Content-Type", "text/csv")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, rbactest.As(req, 1, rbac.RoleRecruiter))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
