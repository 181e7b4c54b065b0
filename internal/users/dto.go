package users

import "strings"

// CreateUserRequest is the body of the create action.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"max=100"`
	TeamID   *int64 `json:"teamId,omitempty" validate:"omitempty,gt=0"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// UpdateUserRequest carries the fields to change. Empty strings are ignored.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	Role     *string `json:"role,omitempty" validate:"omitempty,max=100"`
	TeamID   *int64  `json:"teamId,omitempty" validate:"omitempty,gte=0"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// dropBlank clears string fields that are empty or whitespace so validation
// and the update only see the fields the caller actually changed.
func (r UpdateUserRequest) dropBlank() UpdateUserRequest {
	for _, f := range []**string{&r.Name, &r.Email, &r.Password, &r.Role} {
		if *f != nil && strings.TrimSpace(**f) == "" {
			*f = nil
		}
	}
	return r
}
