// Package roles stores system and custom roles and serves them to the
// permission resolver.
package roles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// ErrSystemRole is returned for attempts to modify or delete a system role.
var ErrSystemRole = &shared.Error{Kind: shared.ErrForbidden, Message: "System roles cannot be modified or deleted"}

// Service implements role CRUD on top of a Repository.
type Service struct {
	repo     Repository
	cache    *Cache
	validate *validator.Validate
	activity shared.ActivityRecorder
	logger   *slog.Logger
	now      func() time.Time
}

var _ rbac.RoleSource = (*Service)(nil)

// NewService creates a role service. cache and activity may be nil.
func NewService(repo Repository, cache *Cache, activity shared.ActivityRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		validate: shared.NewValidator(),
		activity: activity,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns every role, system roles first.
func (s *Service) List(ctx context.Context) ([]rbac.Role, error) {
	return s.repo.List(ctx)
}

// Get returns a role by id.
func (s *Service) Get(ctx context.Context, id string) (rbac.Role, error) {
	return s.repo.Get(ctx, id)
}

// FindRole implements rbac.RoleSource through the cache.
func (s *Service) FindRole(ctx context.Context, key string) (rbac.Role, error) {
	return s.cache.Fetch(ctx, key, func(ctx context.Context) (rbac.Role, error) {
		return s.repo.FindByKey(ctx, key)
	})
}

// Create stores a new custom role.
func (s *Service) Create(ctx context.Context, req CreateRoleRequest) (rbac.Role, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return rbac.Role{}, err
	}
	if err := validatePermissions(req.Permissions); err != nil {
		return rbac.Role{}, err
	}
	now := s.now()
	role := rbac.Role{
		ID:          "role_" + uuid.NewString(),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Permissions: clonePermissions(req.Permissions),
		CreatedAt:   now,
		CreatedBy:   shared.ActorName(ctx),
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return rbac.Role{}, fmt.Errorf("create role: %w", err)
	}
	s.invalidate(ctx)
	s.record(ctx, "role.created", role.ID, map[string]any{"name": role.Name})
	return role, nil
}

// Update merges supplied fields into a custom role. System roles are rejected
// and left untouched.
func (s *Service) Update(ctx context.Context, id string, req UpdateRoleRequest) (rbac.Role, error) {
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return rbac.Role{}, err
	}
	if req.Permissions != nil {
		if err := validatePermissions(*req.Permissions); err != nil {
			return rbac.Role{}, err
		}
	}

	var updated rbac.Role
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		existing, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if existing.IsSystem {
			return ErrSystemRole
		}
		if req.Name != nil {
			existing.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			existing.Description = strings.TrimSpace(*req.Description)
		}
		if req.Permissions != nil {
			existing.Permissions = clonePermissions(*req.Permissions)
		}
		existing.UpdatedAt = s.now()
		if err := tx.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return rbac.Role{}, fmt.Errorf("update role: %w", err)
	}
	s.invalidate(ctx)
	s.record(ctx, "role.updated", id, map[string]any{"name": updated.Name})
	return updated, nil
}

// Delete removes a custom role. Users still pointing at it lose access until
// they are reassigned.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		existing, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if existing.IsSystem {
			return ErrSystemRole
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	s.invalidate(ctx)
	s.record(ctx, "role.deleted", id, nil)
	return nil
}

// EnsureSystemRoles upserts the built in roles.
func (s *Service) EnsureSystemRoles(ctx context.Context) error {
	for _, role := range rbac.DefaultRoles() {
		if err := s.repo.UpsertSystem(ctx, role); err != nil {
			return fmt.Errorf("ensure system role %s: %w", role.ID, err)
		}
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("role cache bump failed", slog.Any("error", err))
	}
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, shared.Activity{Action: action, Entity: "role", EntityID: id, Meta: meta})
}

func validatePermissions(perms rbac.Permissions) error {
	for resource := range perms {
		if !resource.Valid() {
			return shared.Invalid("unknown resource %q in permissions", resource)
		}
	}
	return nil
}

func clonePermissions(perms rbac.Permissions) rbac.Permissions {
	out := make(rbac.Permissions, len(perms))
	for k, v := range perms {
		out[k] = v
	}
	return out
}
