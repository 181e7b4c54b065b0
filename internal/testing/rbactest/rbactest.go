// Package rbactest provides an in-memory role source and request helpers for
// handler tests.
package rbactest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Roles is a static rbac.RoleSource.
type Roles map[string]rbac.Role

// DefaultRoles returns a source holding the built-in roles.
func DefaultRoles() Roles {
	out := make(Roles)
	for _, r := range rbac.DefaultRoles() {
		out[r.ID] = r
	}
	return out
}

// FindRole implements rbac.RoleSource.
func (s Roles) FindRole(_ context.Context, key string) (rbac.Role, error) {
	if r, ok := s[key]; ok {
		return r, nil
	}
	for _, r := range s {
		if strings.EqualFold(r.Name, key) {
			return r, nil
		}
	}
	return rbac.Role{}, fmt.Errorf("role %s: %w", key, shared.ErrNotFound)
}

// Middleware returns rbac middleware backed by the default roles.
func Middleware() rbac.Middleware {
	return rbac.Middleware{Resolver: rbac.NewResolver(DefaultRoles(), nil, nil)}
}

// As attaches a principal with role to r.
func As(r *http.Request, userID int64, role string) *http.Request {
	p := &shared.Principal{UserID: userID, Name: fmt.Sprintf("user-%d", userID), Email: fmt.Sprintf("user%d@example.com", userID), Role: role}
	return r.WithContext(shared.ContextWithPrincipal(r.Context(), p))
}
