// Package notify turns domain events into queued email notifications.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-ats/jobs"
)

// Kind identifies a notification template.
type Kind string

// Notification kinds.
const (
	KindJobCreated             Kind = "job_created"
	KindCandidateAdded         Kind = "candidate_added"
	KindInterviewScheduled     Kind = "interview_scheduled"
	KindInterviewStatusChanged Kind = "interview_status_changed"
	KindCandidateShortlisted   Kind = "candidate_shortlisted"
)

const footer = "This is an automated notification from the Recruitment Management System."

// Field is one labelled line of a notification body.
type Field struct {
	Label string
	Value string
}

// Event is a notification ready to be rendered.
type Event struct {
	Kind      Kind
	RelatedID int64
	Subject   string
	Heading   string
	Fields    []Field
	// NextSteps is an optional closing instruction.
	NextSteps string
	// Recipients are added to the configured notification list.
	Recipients []string
	Actor      string
}

// Text renders the plain text body.
func (e Event) Text() string {
	var b strings.Builder
	b.WriteString(e.Heading)
	b.WriteString("\n\n")
	for _, f := range e.Fields {
		if f.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	if e.NextSteps != "" {
		fmt.Fprintf(&b, "\nNext Steps: %s\n", e.NextSteps)
	}
	b.WriteString("\n")
	b.WriteString(footer)
	b.WriteString("\n")
	return b.String()
}

// HTML renders the HTML body with every value escaped.
func (e Event) HTML() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3>\n", html.EscapeString(e.Heading))
	for _, f := range e.Fields {
		if f.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>\n", html.EscapeString(f.Label), html.EscapeString(f.Value))
	}
	b.WriteString("<hr>\n")
	if e.NextSteps != "" {
		fmt.Fprintf(&b, "<p><strong>Next Steps:</strong> %s</p>\n", html.EscapeString(e.NextSteps))
	}
	fmt.Fprintf(&b, "<p><em>%s</em></p>\n", footer)
	return b.String()
}

// Sender dispatches notifications.
type Sender interface {
	Notify(ctx context.Context, ev Event) error
}

// Enqueuer queues mail tasks.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Notifier renders events and queues them for the mail worker.
type Notifier struct {
	queue      Enqueuer
	recipients []string
	logger     *slog.Logger
}

// NewNotifier builds a Notifier that always mails recipients in addition to
// each event's own list.
func NewNotifier(queue Enqueuer, recipients []string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{queue: queue, recipients: recipients, logger: logger}
}

// Notify implements Sender. Events with nobody to tell are dropped.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	payload := jobs.SendEmailPayload{
		To:        append(append([]string{}, n.recipients...), ev.Recipients...),
		Subject:   ev.Subject,
		Text:      ev.Text(),
		HTML:      ev.HTML(),
		Kind:      string(ev.Kind),
		RelatedID: ev.RelatedID,
		SentBy:    ev.Actor,
	}
	if len(payload.Recipients()) == 0 {
		n.logger.Debug("notification without recipients", slog.String("kind", string(ev.Kind)))
		return nil
	}
	if n.queue == nil {
		return nil
	}
	info, err := n.queue.EnqueueSendEmail(ctx, payload)
	if err != nil {
		return fmt.Errorf("enqueue %s notification: %w", ev.Kind, err)
	}
	if info != nil {
		n.logger.Debug("notification queued", slog.String("kind", string(ev.Kind)), slog.String("task_id", info.ID))
	}
	return nil
}

// Discard drops every event.
type Discard struct{}

// Notify implements Sender.
func (Discard) Notify(context.Context, Event) error { return nil }
