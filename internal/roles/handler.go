package roles

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
)

// Handler serves /api/roles.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

func (h *Handler) actions() httpx.Actions {
	return httpx.Actions{
		"getAll": h.list,
		"get":    h.get,
		"create": h.create,
		"update": h.update,
		"delete": h.delete,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, roles)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ActionFrom(r.Context()).RequireKey()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, role)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := httpx.ActionFrom(r.Context()).Bind(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	role, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Created(w, role, "Role created successfully")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	action := httpx.ActionFrom(r.Context())
	id, err := action.RequireKey()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req UpdateRoleRequest
	if err := action.Bind(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	role, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Message(w, "Role updated successfully", role)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ActionFrom(r.Context()).RequireKey()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Message(w, "Role deleted successfully", nil)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.FailRequest(w, r, h.logger, err)
}
