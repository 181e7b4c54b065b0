package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueMail carries outgoing notification mail.
	QueueMail = "mail"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskInterviewDigest mails the day's scheduled interviews.
	TaskInterviewDigest = "interview:digest"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
	// Kind names the notification that produced the mail, if any.
	Kind      string `json:"kind,omitempty"`
	RelatedID int64  `json:"relatedId,omitempty"`
	SentBy    string `json:"sentBy,omitempty"`
	// LogID points at an existing email log row to update instead of
	// inserting new ones.
	LogID int64 `json:"logId,omitempty"`
}

// Recipients returns the trimmed, de-duplicated To list.
func (p SendEmailPayload) Recipients() []string {
	seen := make(map[string]struct{}, len(p.To))
	out := make([]string, 0, len(p.To))
	for _, to := range p.To {
		to = strings.TrimSpace(to)
		key := strings.ToLower(to)
		if to == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, to)
	}
	return out
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.Queue(QueueMail), asynq.MaxRetry(5)), nil
}

// InterviewDigestPayload selects the day to summarise. An empty Date means
// today in the worker's timezone.
type InterviewDigestPayload struct {
	Date string `json:"date,omitempty"`
}

// NewInterviewDigestTask constructs the digest task.
func NewInterviewDigestTask(date string) (*asynq.Task, error) {
	data, err := json.Marshal(InterviewDigestPayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInterviewDigest, data), nil
}
