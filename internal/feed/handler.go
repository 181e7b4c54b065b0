package feed

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Handler serves /api/feed.
type Handler struct {
	logger  *slog.Logger
	builder *Builder
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, builder *Builder, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, builder: builder, rbac: rbac}
}

// MountRoutes registers /api/feed.
func (h *Handler) MountRoutes(r chi.Router) {
	actions := httpx.Actions{
		"getAll":      h.list,
		"markRead":    h.markRead,
		"markAllRead": h.markAllRead,
	}
	perms := rbac.ActionMap{
		"getAll":      rbac.ActionView,
		"markRead":    rbac.ActionView,
		"markAllRead": rbac.ActionView,
	}
	r.Route("/feed", func(r chi.Router) {
		r.Use(httpx.ActionMiddleware(httpx.DefaultMaxBody))
		r.Use(h.rbac.RequireAction(rbac.ResourceDashboard, perms))
		r.Get("/", actions.ServeHTTP)
		r.Post("/", actions.ServeHTTP)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := h.builder.Build(r.Context(), shared.ActorID(r.Context()))
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.OK(w, f)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ActionFrom(r.Context()).RequireKey()
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	if err := h.builder.MarkRead(r.Context(), shared.ActorID(r.Context()), id); err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Marked as read", nil)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.builder.MarkAllRead(r.Context(), shared.ActorID(r.Context())); err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "All notifications marked as read", nil)
}
