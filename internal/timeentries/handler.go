package timeentries

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Handler serves /api/time-entries.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers /api/time-entries. Clocking in and out only touches
// the caller's own entries, so it needs view access.
func (h *Handler) MountRoutes(r chi.Router) {
	actions := httpx.Actions{
		"getAll":   h.list,
		"status":   h.status,
		"clockIn":  h.clockIn,
		"clockOut": h.clockOut,
	}
	perms := rbac.ActionMap{
		"getAll":   rbac.ActionView,
		"status":   rbac.ActionView,
		"clockIn":  rbac.ActionView,
		"clockOut": rbac.ActionView,
	}
	r.Route("/time-entries", func(r chi.Router) {
		r.Use(httpx.ActionMiddleware(httpx.DefaultMaxBody))
		r.Use(h.rbac.RequireAction(rbac.ResourceTimeTracking, perms))
		r.Get("/", actions.ServeHTTP)
		r.Post("/", actions.ServeHTTP)
	})
}

type listRequest struct {
	UserID httpx.ID `json:"userId"`
	Date   string   `json:"date"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	action := httpx.ActionFrom(r.Context())
	var req listRequest
	if err := action.Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	if raw := strings.TrimSpace(action.Query.Get("userId")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Fail(w, shared.Invalid("userId must be numeric"))
			return
		}
		req.UserID = httpx.ID(v)
	}
	if d := strings.TrimSpace(action.Query.Get("date")); d != "" {
		req.Date = d
	}
	items, err := h.service.List(r.Context(), Filter{UserID: int64(req.UserID), Date: strings.TrimSpace(req.Date)})
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Status(r.Context())
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.OK(w, e)
}

func (h *Handler) clockIn(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.ClockIn(r.Context())
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Created(w, e, "Clocked in successfully")
}

func (h *Handler) clockOut(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.ClockOut(r.Context())
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Clocked out successfully. Total hours: "+strconv.FormatFloat(*e.TotalHours, 'f', -1, 64), e)
}
