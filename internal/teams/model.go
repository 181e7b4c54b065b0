// Package teams groups users into recruiting teams.
package teams

import "time"

// Team is a named group of users. Membership lives on users.team_id.
type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LeaderID    *int64    `json:"leaderId"`
	MemberIDs   []int64   `json:"memberIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateTeamRequest is the body of the create action.
type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	LeaderID    *int64 `json:"leaderId" validate:"omitempty,gt=0"`
}

// UpdateTeamRequest changes the supplied fields.
type UpdateTeamRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	LeaderID    *int64  `json:"leaderId,omitempty" validate:"omitempty,gt=0"`
}

// MemberRequest moves a user into a team, or out of any team when TeamID is omitted.
type MemberRequest struct {
	TeamID int64 `json:"teamId"`
	UserID int64 `json:"userId" validate:"required,gt=0"`
}
