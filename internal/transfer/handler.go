package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/jobposts"
	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// MaxUploadBytes caps import uploads.
const MaxUploadBytes = 10 << 20

// JobLister lists jobs for export.
type JobLister interface {
	List(ctx context.Context) ([]jobposts.Job, error)
}

// Handler serves the export and import endpoints.
type Handler struct {
	logger   *slog.Logger
	importer *Importer
	jobs     JobLister
	rbac     rbac.Middleware
	clock    func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, importer *Importer, jobs JobLister, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, importer: importer, jobs: jobs, rbac: rbac, clock: time.Now}
}

// CandidateRoutes mounts export and import under the candidates prefix.
func (h *Handler) CandidateRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ResourceCandidateExport, rbac.ActionView)).Get("/export", h.exportCandidates)
	r.With(h.rbac.Require(rbac.ResourceCandidateBulkUpload, rbac.ActionView)).Get("/import/template", h.template)
	r.With(h.rbac.Require(rbac.ResourceCandidateBulkUpload, rbac.ActionAdd)).Post("/import", h.importCandidates)
}

// JobRoutes mounts export under the jobs prefix.
func (h *Handler) JobRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ResourceJobExport, rbac.ActionView)).Get("/export", h.exportJobs)
}

func (h *Handler) filename(base string) string {
	return fmt.Sprintf("%s-%s.csv", base, h.clock().UTC().Format("20060102"))
}

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (h *Handler) exportCandidates(w http.ResponseWriter, r *http.Request) {
	items, err := h.importer.store.List(r.Context())
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	setCSVHeaders(w, h.filename("candidates"))
	if err := WriteCandidatesCSV(w, items); err != nil {
		h.logger.Error("write candidates csv", slog.Any("error", err))
	}
}

func (h *Handler) exportJobs(w http.ResponseWriter, r *http.Request) {
	items, err := h.jobs.List(r.Context())
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	setCSVHeaders(w, h.filename("jobs"))
	if err := WriteJobsCSV(w, items); err != nil {
		h.logger.Error("write jobs csv", slog.Any("error", err))
	}
}

func (h *Handler) template(w http.ResponseWriter, r *http.Request) {
	setCSVHeaders(w, "candidate_import_template.csv")
	if err := WriteImportTemplate(w); err != nil {
		h.logger.Error("write import template", slog.Any("error", err))
	}
}

func (h *Handler) importCandidates(w http.ResponseWriter, r *http.Request) {
	body, err := readUpload(w, r)
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	res, err := h.importer.Import(r.Context(), body, r.Header.Get("Idempotency-Key"))
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, fmt.Sprintf("Successfully imported %d candidates", res.Success), res)
}

// readUpload returns the CSV from a multipart "file" field or the raw body.
func readUpload(w http.ResponseWriter, r *http.Request) (io.Reader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			return nil, shared.Invalid("Invalid upload: %v", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, shared.Invalid("file is required")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, shared.Invalid("Unable to read upload")
		}
		return bytes.NewReader(data), nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, shared.Invalid("Upload too large")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, shared.Invalid("file is required")
	}
	return bytes.NewReader(data), nil
}
