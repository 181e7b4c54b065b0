package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// ErrUnknownRole is returned when a user's role cannot be resolved. Access is
// denied; the condition is a configuration error and is logged as such.
var ErrUnknownRole = &shared.Error{Kind: shared.ErrForbidden, Message: "Your role is not configured; contact an administrator"}

// RoleSource looks roles up by id or case-insensitive name. A missing role is
// reported with an error wrapping shared.ErrNotFound.
type RoleSource interface {
	FindRole(ctx context.Context, key string) (Role, error)
}

// Resolver answers permission questions against a RoleSource.
type Resolver struct {
	source     RoleSource
	logger     *slog.Logger
	unresolved *prometheus.CounterVec
}

// NewResolver constructs a Resolver. The unresolved role counter is registered
// on registerer when it is not nil.
func NewResolver(source RoleSource, logger *slog.Logger, registerer prometheus.Registerer) *Resolver {
	unresolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_rbac_unresolved_roles_total",
		Help: "Permission checks denied because the role could not be resolved.",
	}, []string{"role"})
	if registerer != nil {
		if err := registerer.Register(unresolved); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					unresolved = existing
				}
			}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, logger: logger, unresolved: unresolved}
}

// Role resolves the role by id or name.
func (r *Resolver) Role(ctx context.Context, role string) (Role, error) {
	key := strings.TrimSpace(role)
	if key == "" || r == nil || r.source == nil {
		return Role{}, r.unknown(role, errors.New("empty role or missing role source"))
	}
	found, err := r.source.FindRole(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Role{}, r.unknown(role, err)
		}
		return Role{}, fmt.Errorf("rbac: load role %q: %w", role, err)
	}
	return found, nil
}

// Check reports whether role may perform action on resource. Unknown roles
// yield ErrUnknownRole; unlisted resources yield false.
func (r *Resolver) Check(ctx context.Context, role string, resource Resource, action Action) (bool, error) {
	found, err := r.Role(ctx, role)
	if err != nil {
		return false, err
	}
	return found.Permissions.Allows(resource, action), nil
}

// HasPermission is the boolean form of Check. It never fails open.
func (r *Resolver) HasPermission(ctx context.Context, role string, resource Resource, action Action) bool {
	ok, err := r.Check(ctx, role, resource, action)
	if err != nil {
		return false
	}
	return ok
}

// Granted lists "resource.action" strings for role.
func (r *Resolver) Granted(ctx context.Context, role string) ([]string, error) {
	found, err := r.Role(ctx, role)
	if err != nil {
		return nil, err
	}
	return found.Permissions.Strings(), nil
}

func (r *Resolver) unknown(role string, cause error) error {
	if r != nil {
		if r.logger != nil {
			r.logger.Error("rbac: role cannot be resolved, denying access",
				slog.String("role", role), slog.Any("error", cause))
		}
		if r.unresolved != nil {
			r.unresolved.WithLabelValues(role).Inc()
		}
	}
	return fmt.Errorf("rbac: role %q: %w", role, ErrUnknownRole)
}
