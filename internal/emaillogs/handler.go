package emaillogs

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
)

// Handler serves /api/email-logs.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers /api/email-logs.
func (h *Handler) MountRoutes(r chi.Router) {
	actions := httpx.Actions{
		"getAll": h.list,
		"create": h.create,
		"send":   h.send,
	}
	r.Route("/email-logs", func(r chi.Router) {
		r.Use(httpx.ActionMiddleware(httpx.DefaultMaxBody))
		r.Use(h.rbac.RequireAction(rbac.ResourceEmailLogs, rbac.CRUDActions().With(rbac.ActionMap{"send": rbac.ActionAdd})))
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
	var req CreateLogRequest
	if err := httpx.ActionFrom(r.Context()).Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	l, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Created(w, l, "Email log created successfully")
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := httpx.ActionFrom(r.Context()).Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	l, err := h.service.Send(r.Context(), req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Email queued for delivery", l)
}
