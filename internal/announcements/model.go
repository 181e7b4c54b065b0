// Package announcements stores admin broadcasts shown in the feed.
package announcements

import "time"

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Announcement is a message from an administrator to every user.
type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateAnnouncementRequest is the body of the create action.
type CreateAnnouncementRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message" validate:"required,max=5000"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// UpdateAnnouncementRequest changes the supplied fields.
type UpdateAnnouncementRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Message  *string `json:"message,omitempty" validate:"omitempty,min=1,max=5000"`
	Priority *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}
