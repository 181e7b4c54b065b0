package jobposts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
)

// Handler serves /api/jobs.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers /api/jobs.
func (h *Handler) MountRoutes(r chi.Router, extra ...func(chi.Router)) {
	actions := httpx.Actions{
		"getAll": h.list,
		"get":    h.get,
		"create": h.create,
		"update": h.update,
		"delete": h.delete,
	}
	r.Route("/jobs", func(r chi.Router) {
		for _, mount := range extra {
			mount(r)
		}
		r.Group(func(r chi.Router) {
			r.Use(httpx.ActionMiddleware(httpx.DefaultMaxBody))
			r.Use(h.rbac.RequireAction(rbac.ResourceJobs, nil))
			r.Get("/", actions.ServeHTTP)
			r.Post("/", actions.ServeHTTP)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ActionFrom(r.Context()).RequireID()
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	j, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.OK(w, j)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := httpx.ActionFrom(r.Context()).Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	j, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Created(w, j, "Job created successfully")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	action := httpx.ActionFrom(r.Context())
	id, err := action.RequireID()
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	var req UpdateJobRequest
	if err := action.Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	j, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Job updated successfully", j)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ActionFrom(r.Context()).RequireID()
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Job deleted successfully", nil)
}
