package announcements

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
)

// Handler serves /api/announcements.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers /api/announcements.
func (h *Handler) MountRoutes(r chi.Router) {
	actions := httpx.Actions{
		"getAll": h.list,
		"create": h.create,
		"update": h.update,
		"delete": h.delete,
	}
	r.Route("/announcements", func(r chi.Router) {
		r.Use(httpx.ActionMiddleware(httpx.DefaultMaxBody))
		r.Use(h.rbac.RequireAction(rbac.ResourceAnnouncements, nil))
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

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateAnnouncementRequest
	if err := httpx.ActionFrom(r.Context()).Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	a, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Created(w, a, "Announcement created successfully")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	action := httpx.ActionFrom(r.Context())
	id, err := action.RequireID()
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	var req UpdateAnnouncementRequest
	if err := action.Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	a, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Announcement updated successfully", a)
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
	httpx.Message(w, "Announcement deleted successfully", nil)
}
