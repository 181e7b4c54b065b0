package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-ats/internal/jobs"
	"github.com/odyssey-erp/odyssey-ats/internal/interviews"
	"github.com/odyssey-erp/odyssey-ats/internal/mailer"
)

// InterviewLister loads the interviews held on a date (YYYY-MM-DD).
type InterviewLister interface {
	ListByDate(ctx context.Context, date string) ([]interviews.Interview, error)
}

// InterviewDigestJob mails the list of interviews still scheduled for a day.
type InterviewDigestJob struct {
	Interviews InterviewLister
	Mailer     mailer.Mailer
	Recorder   DeliveryRecorder
	Recipients []string
	Location   *time.Location
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	clock      func() time.Time
}

// NewInterviewDigestJob wires dependencies for the digest handler.
func NewInterviewDigestJob(lister InterviewLister, m mailer.Mailer, recorder DeliveryRecorder, recipients []string, loc *time.Location, logger *slog.Logger, metrics *jobmetrics.Metrics) *InterviewDigestJob {
	if loc == nil {
		loc = time.UTC
	}
	return &InterviewDigestJob{
		Interviews: lister,
		Mailer:     m,
		Recorder:   recorder,
		Recipients: recipients,
		Location:   loc,
		Logger:     logger,
		Metrics:    metrics,
		clock:      time.Now,
	}
}

// Handle processes TaskInterviewDigest tasks.
func (j *InterviewDigestJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Interviews == nil || j.Mailer == nil {
		return errors.New("interview digest: handler not configured")
	}
	var payload InterviewDigestPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	date := strings.TrimSpace(payload.Date)
	if date == "" {
		date = j.now().In(j.Location).Format("2006-01-02")
	}

	tracker := j.metrics().Track(TaskInterviewDigest)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("date", date))
	if len(j.Recipients) == 0 {
		logger.Info("no digest recipients configured")
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	all, err := j.Interviews.ListByDate(runCtx, date)
	if err != nil {
		logger.Error("load interviews", slog.Any("error", err))
		return err
	}
	upcoming := make([]interviews.Interview, 0, len(all))
	for _, iv := range all {
		if interviews.IsUpcoming(iv.Status) {
			upcoming = append(upcoming, iv)
		}
	}
	if len(upcoming) == 0 {
		logger.Info("no interviews scheduled")
		return nil
	}

	subject, body := DigestMessage(date, upcoming)
	sendErr := j.Mailer.Send(runCtx, mailer.Message{To: j.Recipients, Subject: subject, Text: body})
	status := DeliverySent
	if sendErr != nil {
		status = DeliveryFailed
	}
	j.metrics().AddDeliveries(status, len(j.Recipients))
	if j.Recorder != nil {
		d := Delivery{To: j.Recipients, Subject: subject, Body: body, SentBy: "system", Status: status}
		if sendErr != nil {
			d.Error = sendErr.Error()
		}
		if err := j.Recorder.RecordDelivery(runCtx, d); err != nil {
			logger.Warn("record digest delivery", slog.Any("error", err))
		}
	}
	if sendErr != nil {
		logger.Error("send digest", slog.Any("error", sendErr))
		return sendErr
	}
	logger.Info("digest sent", slog.Int("interviews", len(upcoming)))
	return nil
}

// DigestMessage renders the digest subject and plain text body.
func DigestMessage(date string, items []interviews.Interview) (string, string) {
	subject := fmt.Sprintf("Interviews Today (%s): %d scheduled", date, len(items))
	var b strings.Builder
	fmt.Fprintf(&b, "Interviews scheduled for %s\n\n", date)
	for _, iv := range items {
		when := iv.InterviewTime
		if when == "" {
			when = "time TBD"
		}
		fmt.Fprintf(&b, "- %s | %s | %s (%s) | %s | %s\n", when, iv.CandidateName, iv.JobCode, iv.Client, iv.InterviewType, iv.Status)
	}
	b.WriteString("\nThis is an automated notification from the Recruitment Management System.\n")
	return subject, b.String()
}

func (j *InterviewDigestJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInterviewDigest))
	}
	return slog.Default().With(slog.String("job", TaskInterviewDigest))
}

func (j *InterviewDigestJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *InterviewDigestJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
