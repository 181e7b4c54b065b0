package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-ats/internal/jobs"
	"github.com/odyssey-erp/odyssey-ats/internal/mailer"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Delivery statuses written to the email log.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// Delivery is the outcome of one send attempt.
type Delivery struct {
	LogID   int64
	To      []string
	Subject string
	Body    string
	SentBy  string
	Status  string
	Error   string
}

// DeliveryRecorder persists delivery outcomes.
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, d Delivery) error
}

// MailJob delivers queued emails.
type MailJob struct {
	Mailer   mailer.Mailer
	Recorder DeliveryRecorder
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewMailJob wires dependencies for the mail:send handler.
func NewMailJob(m mailer.Mailer, recorder DeliveryRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *MailJob {
	return &MailJob{Mailer: m, Recorder: recorder, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeSendEmail tasks. Send failures are returned so
// asynq retries them; every attempt is logged.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Mailer == nil {
		return errors.New("mail send: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	to := payload.Recipients()
	if len(to) == 0 {
		j.logger().Warn("mail without recipients dropped", slog.String("subject", payload.Subject))
		return nil
	}

	tracker := j.metrics().Track(TaskTypeSendEmail)
	sendErr := j.Mailer.Send(ctx, mailer.Message{
		To:      to,
		Cc:      payload.Cc,
		Subject: payload.Subject,
		Text:    payload.Text,
		HTML:    payload.HTML,
	})

	delivery := Delivery{
		LogID:   payload.LogID,
		To:      to,
		Subject: payload.Subject,
		Body:    payload.Text,
		SentBy:  payload.SentBy,
		Status:  DeliverySent,
	}
	if sendErr != nil {
		delivery.Status = DeliveryFailed
		delivery.Error = sendErr.Error()
		j.metrics().AddDeliveries(DeliveryFailed, len(to))
		j.logger().Error("send email", slog.String("subject", payload.Subject), slog.Any("error", sendErr))
	} else {
		j.metrics().AddDeliveries(DeliverySent, len(to))
	}
	if j.Recorder != nil {
		if err := j.Recorder.RecordDelivery(ctx, delivery); err != nil {
			j.logger().Warn("record email delivery", slog.Any("error", err))
		}
	}
	return tracker.End(sendErr)
}

func (j *MailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *MailJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
