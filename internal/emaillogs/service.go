package emaillogs

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/jobs"
)

// Enqueuer queues mail tasks for the worker.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Service lists, records and sends email logs.
type Service struct {
	repo     Repository
	queue    Enqueuer
	validate *validator.Validate
	activity shared.ActivityRecorder
}

// NewService wires the service. queue may be nil, in which case send fails.
func NewService(repo Repository, queue Enqueuer, activity shared.ActivityRecorder) *Service {
	return &Service{repo: repo, queue: queue, validate: shared.NewValidator(), activity: activity}
}

// List returns all logs, most recent first.
func (s *Service) List(ctx context.Context) ([]Log, error) {
	return s.repo.List(ctx)
}

// Create stores a log row.
func (s *Service) Create(ctx context.Context, req CreateLogRequest) (*Log, error) {
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.RecipientEmail == "" || req.Subject == "" {
		return nil, shared.Invalid("Recipient email and subject are required")
	}
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	l := Log{
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		Subject:        req.Subject,
		Message:        req.Message,
		Status:         req.Status,
		SentBy:         req.SentBy,
	}
	if l.Status == "" {
		l.Status = StatusSent
	}
	if l.SentBy == "" {
		l.SentBy = shared.ActorName(ctx)
	}
	if err := s.repo.Create(ctx, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Send stores a queued log row and hands the message to the mail worker,
// which flips the row to sent or failed.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Log, error) {
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, fmt.Errorf("send email: mail queue not configured")
	}
	l := Log{
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		Subject:        req.Subject,
		Message:        req.Message,
		Status:         StatusQueued,
		SentBy:         shared.ActorName(ctx),
	}
	if err := s.repo.Create(ctx, &l); err != nil {
		return nil, err
	}
	_, err := s.queue.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      []string{l.RecipientEmail},
		Cc:      req.Cc,
		Subject: l.Subject,
		Text:    l.Message,
		HTML:    "<p>" + strings.ReplaceAll(html.EscapeString(l.Message), "\n", "<br>") + "</p>",
		Kind:    "manual",
		SentBy:  l.SentBy,
		LogID:   l.ID,
	})
	if err != nil {
		if setErr := s.repo.SetStatus(ctx, l.ID, StatusFailed, err.Error()); setErr != nil {
			return nil, fmt.Errorf("enqueue email: %w", errors.Join(err, setErr))
		}
		return nil, fmt.Errorf("enqueue email: %w", err)
	}
	if s.activity != nil {
		s.activity.Record(ctx, shared.Activity{Action: "email.queued", Entity: "email_log", EntityID: strconv.FormatInt(l.ID, 10),
			Meta: map[string]any{"to": l.RecipientEmail}})
	}
	return &l, nil
}

// RecordDelivery implements jobs.DeliveryRecorder. Deliveries that started
// from a log row update it; others get one row per recipient.
func (s *Service) RecordDelivery(ctx context.Context, d jobs.Delivery) error {
	if d.LogID > 0 {
		return s.repo.SetStatus(ctx, d.LogID, d.Status, d.Error)
	}
	for _, to := range d.To {
		l := Log{RecipientEmail: to, Subject: d.Subject, Message: d.Body, Status: d.Status, SentBy: d.SentBy, Error: d.Error}
		if l.SentBy == "" {
			l.SentBy = "system"
		}
		if err := s.repo.Create(ctx, &l); err != nil {
			return fmt.Errorf("record delivery to %s: %w", to, err)
		}
	}
	return nil
}

var _ jobs.DeliveryRecorder = (*Service)(nil)
