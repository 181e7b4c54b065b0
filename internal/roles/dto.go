package roles

import "github.com/odyssey-erp/odyssey-ats/internal/rbac"

// CreateRoleRequest is the body of the create action.
type CreateRoleRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Description string           `json:"description" validate:"max=500"`
	Permissions rbac.Permissions `json:"permissions"`
}

// UpdateRoleRequest merges supplied fields into an existing custom role.
type UpdateRoleRequest struct {
	Name        *string           `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=500"`
	Permissions *rbac.Permissions `json:"permissions,omitempty"`
}
