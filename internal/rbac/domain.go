// Package rbac resolves role based permissions for API resources.
package rbac

import (
	"sort"
	"time"
)

// Action is one of the four operations a role may be granted on a resource.
type Action string

// Supported actions.
const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actions lists every action in display order.
func Actions() []Action {
	return []Action{ActionView, ActionAdd, ActionEdit, ActionDelete}
}

// Resource identifies a gated feature area.
type Resource string

// Resource ids known to the system.
const (
	ResourceDashboard           Resource = "dashboard"
	ResourceCandidates          Resource = "candidates"
	ResourceCandidateExport     Resource = "candidate_export"
	ResourceCandidateBulkUpload Resource = "candidate_bulk_upload"
	ResourceJobs                Resource = "jobs"
	ResourceJobExport           Resource = "job_export"
	ResourceInterviews          Resource = "interviews"
	ResourceInterviewSchedule   Resource = "interview_schedule"
	ResourceTeam                Resource = "team"
	ResourceTimeTracking        Resource = "time_tracking"
	ResourceUsers               Resource = "users"
	ResourceRoles               Resource = "roles"
	ResourceAnnouncements       Resource = "announcements"
	ResourceEmailLogs           Resource = "email_logs"
	ResourceReports             Resource = "reports"
)

var allResources = []Resource{
	ResourceDashboard,
	ResourceCandidates,
	ResourceCandidateExport,
	ResourceCandidateBulkUpload,
	ResourceJobs,
	ResourceJobExport,
	ResourceInterviews,
	ResourceInterviewSchedule,
	ResourceTeam,
	ResourceTimeTracking,
	ResourceUsers,
	ResourceRoles,
	ResourceAnnouncements,
	ResourceEmailLogs,
	ResourceReports,
}

// Resources returns the fixed resource id set.
func Resources() []Resource {
	out := make([]Resource, len(allResources))
	copy(out, allResources)
	return out
}

// Valid reports whether r is a known resource id.
func (r Resource) Valid() bool {
	for _, known := range allResources {
		if r == known {
			return true
		}
	}
	return false
}

// Grant holds the view/add/edit/delete flags for one resource.
type Grant struct {
	View   bool `json:"view"`
	Add    bool `json:"add"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// Allows reports whether the grant covers action.
func (g Grant) Allows(action Action) bool {
	switch action {
	case ActionView:
		return g.View
	case ActionAdd:
		return g.Add
	case ActionEdit:
		return g.Edit
	case ActionDelete:
		return g.Delete
	default:
		return false
	}
}

// Permissions maps resources to grants. Resources absent from the map are denied.
type Permissions map[Resource]Grant

// Allows reports whether the permissions grant action on resource.
func (p Permissions) Allows(resource Resource, action Action) bool {
	grant, ok := p[resource]
	if !ok {
		return false
	}
	return grant.Allows(action)
}

// Strings lists granted permissions as "resource.action", sorted.
func (p Permissions) Strings() []string {
	out := make([]string, 0, len(p)*4)
	for resource, grant := range p {
		for _, action := range Actions() {
			if grant.Allows(action) {
				out = append(out, string(resource)+"."+string(action))
			}
		}
	}
	sort.Strings(out)
	return out
}

// Role is a named bundle of per resource grants.
type Role struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	IsSystem    bool        `json:"isSystem"`
	Permissions Permissions `json:"permissions"`
	CreatedAt   time.Time   `json:"createdAt"`
	CreatedBy   string      `json:"createdBy"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// System role ids.
const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleRecruiter = "recruiter"
	RoleViewer    = "viewer"
)

var (
	viewOnly  = Grant{View: true}
	viewAdd   = Grant{View: true, Add: true}
	viewEdit  = Grant{View: true, Add: true, Edit: true}
	fullGrant = Grant{View: true, Add: true, Edit: true, Delete: true}
)

// FullAccess grants every action on every resource.
func FullAccess() Permissions {
	perms := make(Permissions, len(allResources))
	for _, r := range allResources {
		perms[r] = fullGrant
	}
	return perms
}

// DefaultRoles returns the built in system roles.
func DefaultRoles() []Role {
	return []Role{
		{
			ID:          RoleAdmin,
			Name:        "Administrator",
			Description: "Full system access with all permissions",
			IsSystem:    true,
			Permissions: FullAccess(),
			CreatedBy:   "system",
		},
		{
			ID:          RoleManager,
			Name:        "Manager",
			Description: "Team management and oversight capabilities",
			IsSystem:    true,
			Permissions: Permissions{
				ResourceDashboard:           viewOnly,
				ResourceCandidates:          viewEdit,
				ResourceCandidateExport:     viewOnly,
				ResourceCandidateBulkUpload: viewAdd,
				ResourceJobs:                viewEdit,
				ResourceJobExport:           viewOnly,
				ResourceInterviews:          viewEdit,
				ResourceInterviewSchedule:   viewAdd,
				ResourceTeam:                viewOnly,
				ResourceTimeTracking:        viewOnly,
				ResourceReports:             viewOnly,
			},
			CreatedBy: "system",
		},
		{
			ID:          RoleRecruiter,
			Name:        "Recruiter",
			Description: "Candidate and interview management",
			IsSystem:    true,
			Permissions: Permissions{
				ResourceDashboard:         viewOnly,
				ResourceCandidates:        viewEdit,
				ResourceCandidateExport:   viewOnly,
				ResourceJobs:              viewOnly,
				ResourceInterviews:        viewEdit,
				ResourceInterviewSchedule: viewAdd,
				ResourceTimeTracking:      viewOnly,
			},
			CreatedBy: "system",
		},
		{
			ID:          RoleViewer,
			Name:        "Viewer",
			Description: "Read-only access to most features",
			IsSystem:    true,
			Permissions: Permissions{
				ResourceDashboard:  viewOnly,
				ResourceCandidates: viewOnly,
				ResourceJobs:       viewOnly,
				ResourceInterviews: viewOnly,
				ResourceTeam:       viewOnly,
			},
			CreatedBy: "system",
		},
	}
}
