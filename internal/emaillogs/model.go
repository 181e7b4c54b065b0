// Package emaillogs records outgoing email and queues manual sends.
package emaillogs

import "time"

// Log statuses.
const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Log is one email addressed to one recipient.
type Log struct {
	ID             int64     `json:"id"`
	RecipientEmail string    `json:"recipientEmail"`
	RecipientName  string    `json:"recipientName"`
	Subject        string    `json:"subject"`
	Message        string    `json:"message"`
	Status         string    `json:"status"`
	SentBy         string    `json:"sentBy"`
	Error          string    `json:"error,omitempty"`
	SentAt         time.Time `json:"sentAt"`
}

// CreateLogRequest records an email that was sent outside the queue.
type CreateLogRequest struct {
	RecipientEmail string `json:"recipientEmail" validate:"required,email,max=255"`
	RecipientName  string `json:"recipientName" validate:"max=200"`
	Subject        string `json:"subject" validate:"required,max=500"`
	Message        string `json:"message"`
	Status         string `json:"status" validate:"omitempty,oneof=queued sent failed"`
	SentBy         string `json:"sentBy" validate:"max=200"`
}

// SendRequest asks the worker to deliver an email.
type SendRequest struct {
	RecipientEmail string   `json:"recipientEmail" validate:"required,email,max=255"`
	RecipientName  string   `json:"recipientName" validate:"max=200"`
	Cc             []string `json:"cc" validate:"omitempty,dive,email"`
	Subject        string   `json:"subject" validate:"required,max=500"`
	Message        string   `json:"message" validate:"required"`
}
