package interviews

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
)

// Handler serves /api/interviews.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers /api/interviews. Scheduling additionally requires
// the interview_schedule grant.
func (h *Handler) MountRoutes(r chi.Router) {
	schedule := h.rbac.Require(rbac.ResourceInterviewSchedule, rbac.ActionAdd)(http.HandlerFunc(h.create))
	actions := httpx.Actions{
		"getAll": h.list,
		"get":    h.get,
		"create": schedule.ServeHTTP,
		"update": h.update,
		"delete": h.delete,
	}
	r.Route("/interviews", func(r chi.Router) {
		r.Use(httpx.ActionMiddleware(httpx.DefaultMaxBody))
		r.Use(h.rbac.RequireAction(rbac.ResourceInterviews, nil))
		r.Get("/", actions.ServeHTTP)
		r.Post("/", actions.ServeHTTP)
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
	iv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.OK(w, iv)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInterviewRequest
	if err := httpx.ActionFrom(r.Context()).Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	iv, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Created(w, iv, "Interview scheduled successfully")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	action := httpx.ActionFrom(r.Context())
	id, err := action.RequireID()
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	var req UpdateInterviewRequest
	if err := action.Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	iv, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Interview updated successfully", iv)
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
	httpx.Message(w, "Interview deleted successfully", nil)
}
