// Package users manages API accounts.
package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// DefaultRole is assigned when create requests omit a role.
const DefaultRole = rbac.RoleRecruiter

// Service implements user CRUD.
type Service struct {
	repo     Repository
	roles    rbac.RoleSource
	validate *validator.Validate
	activity shared.ActivityRecorder
	hashCost int
}

// NewService creates a user service. Roles are resolved through roles so a user
// can never be saved pointing at a role that does not exist.
func NewService(repo Repository, roles rbac.RoleSource, activity shared.ActivityRecorder) *Service {
	return &Service{
		repo:     repo,
		roles:    roles,
		validate: shared.NewValidator(),
		activity: activity,
		hashCost: bcrypt.DefaultCost,
	}
}

// List returns all users, newest first.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// GetByEmail returns a user by email, case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create validates and stores a new user.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.TrimSpace(req.Role)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = DefaultRole
	}
	roleID, err := s.resolveRole(ctx, req.Role)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !IsNotFound(err) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         roleID,
		TeamID:       req.TeamID,
		IsActive:     true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.record(ctx, "user.created", user.ID, map[string]any{"email": user.Email, "role": user.Role})
	return user, nil
}

// Update changes only the non-empty supplied fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	req = req.dropBlank()
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if v := trimmed(req.Name); v != "" && v != existing.Name {
		updates["name"] = v
	}
	if v := strings.ToLower(trimmed(req.Email)); v != "" && v != existing.Email {
		if other, err := s.repo.GetByEmail(ctx, v); err == nil && other != nil && other.ID != id {
			return nil, ErrEmailTaken
		} else if err != nil && !IsNotFound(err) {
			return nil, err
		}
		updates["email"] = v
	}
	if v := trimmed(req.Role); v != "" {
		roleID, err := s.resolveRole(ctx, v)
		if err != nil {
			return nil, err
		}
		if roleID != existing.Role {
			updates["role"] = roleID
		}
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = string(hash)
	}
	if req.TeamID != nil {
		// zero clears the assignment
		if *req.TeamID == 0 {
			updates["team_id"] = nil
		} else {
			updates["team_id"] = *req.TeamID
		}
	}
	if req.IsActive != nil && *req.IsActive != existing.IsActive {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return existing, nil
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(updates))
	for k := range updates {
		if k != "password_hash" {
			fields = append(fields, k)
		}
	}
	s.record(ctx, "user.updated", id, map[string]any{"fields": fields})
	return s.repo.Get(ctx, id)
}

// Delete removes a user. Unknown ids succeed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "user.deleted", id, nil)
	return nil
}

func (s *Service) resolveRole(ctx context.Context, key string) (string, error) {
	if s.roles == nil {
		return key, nil
	}
	role, err := s.roles.FindRole(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.Invalid("Role %q does not exist", key)
		}
		return "", err
	}
	return role.ID, nil
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, shared.Activity{Action: action, Entity: "user", EntityID: strconv.FormatInt(id, 10), Meta: meta})
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
