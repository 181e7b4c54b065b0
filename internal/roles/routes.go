package roles

import (
	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
)

// MountRoutes registers /api/roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Use(httpx.ActionMiddleware(httpx.DefaultMaxBody))
		r.Use(h.rbac.RequireAction(rbac.ResourceRoles, nil))
		r.Get("/", h.actions().ServeHTTP)
		r.Post("/", h.actions().ServeHTTP)
	})
}
