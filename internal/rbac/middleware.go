package rbac

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
}

// ActionMap maps dispatch action names to the rbac action they require.
type ActionMap map[string]Action

// CRUDActions is the mapping shared by every resource controller.
func CRUDActions() ActionMap {
	return ActionMap{
		"getAll": ActionView,
		"get":    ActionView,
		"search": ActionView,
		"create": ActionAdd,
		"update": ActionEdit,
		"delete": ActionDelete,
	}
}

// With returns a copy of m extended with extra mappings.
func (m ActionMap) With(extra ActionMap) ActionMap {
	out := make(ActionMap, len(m)+len(extra))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Require ensures the caller's role grants action on resource.
func (m Middleware) Require(resource Resource, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.allow(w, r, resource, action) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAction gates action dispatch endpoints: the parsed action name is
// mapped through actions and checked against resource. Unmapped actions are
// rejected before they reach the dispatcher.
func (m Middleware) RequireAction(resource Resource, actions ActionMap) func(http.Handler) http.Handler {
	if actions == nil {
		actions = CRUDActions()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := httpx.ActionFrom(r.Context())
			if req == nil {
				httpx.Error(w, http.StatusBadRequest, "Invalid action")
				return
			}
			action, ok := actions[req.Action]
			if !ok {
				httpx.Error(w, http.StatusBadRequest, "Invalid action")
				return
			}
			if !m.allow(w, r, resource, action) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) allow(w http.ResponseWriter, r *http.Request, resource Resource, action Action) bool {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Fail(w, shared.ErrUnauthorized)
		return false
	}
	ok, err := m.Resolver.Check(r.Context(), principal.Role, resource, action)
	if err != nil {
		if httpx.StatusFor(err) >= http.StatusInternalServerError && m.Logger != nil {
			m.Logger.Error("rbac check", slog.String("resource", string(resource)), slog.Any("error", err))
		}
		httpx.Fail(w, err)
		return false
	}
	if !ok {
		if m.Logger != nil {
			m.Logger.Debug("rbac denied",
				slog.Int64("user_id", principal.UserID),
				slog.String("role", principal.Role),
				slog.String("resource", string(resource)),
				slog.String("action", string(action)))
		}
		httpx.Error(w, http.StatusForbidden, "You do not have permission to perform this action")
		return false
	}
	return true
}
