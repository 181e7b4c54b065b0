// Package jobposts manages client job requirements.
package jobposts

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-ats/internal/notify"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

var errRequired = shared.Invalid("Job code, client, and skill are required")

// Service implements job CRUD.
type Service struct {
	repo     Repository
	notifier notify.Sender
	activity shared.ActivityRecorder
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService wires the job service. notifier and activity may be nil.
func NewService(repo Repository, notifier notify.Sender, activity shared.ActivityRecorder, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, activity: activity, validate: shared.NewValidator(), logger: logger}
}

// List returns all jobs, newest first.
func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}

// CreatedSince returns jobs created at or after since.
func (s *Service) CreatedSince(ctx context.Context, since time.Time) ([]Job, error) {
	return s.repo.ListCreatedSince(ctx, since)
}

// Get returns one job.
func (s *Service) Get(ctx context.Context, id int64) (*Job, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a job, then announces it.
func (s *Service) Create(ctx context.Context, req CreateJobRequest) (*Job, error) {
	req.JobCode = strings.TrimSpace(req.JobCode)
	req.Client = strings.TrimSpace(req.Client)
	req.Skill = strings.TrimSpace(req.Skill)
	if req.JobCode == "" || req.Client == "" || req.Skill == "" {
		return nil, errRequired
	}
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	j := Job{
		JobCode:             req.JobCode,
		Title:               req.Title,
		Client:              req.Client,
		ClientSpoc:          req.ClientSpoc,
		Skill:               req.Skill,
		WorkLocation:        req.WorkLocation,
		JobCategory:         req.JobCategory,
		OpenPositions:       1,
		TeamLead:            req.TeamLead,
		PrincipalConsultant: req.PrincipalConsultant,
		Budget:              req.Budget,
		Description:         req.Description,
		Requirements:        req.Requirements,
		SalaryRange:         req.SalaryRange,
		Status:              req.Status,
		CreatedBy:           shared.ActorName(ctx),
	}
	if req.OpenPositions != nil {
		j.OpenPositions = *req.OpenPositions
	}
	if j.Status == "" {
		j.Status = StatusActive
	}
	if err := s.repo.Create(ctx, &j); err != nil {
		return nil, err
	}
	s.record(ctx, "job.created", j.ID, map[string]any{"job_code": j.JobCode})
	if err := s.notifier.Notify(ctx, CreatedEvent(j, shared.PrincipalFromContext(ctx))); err != nil {
		s.logger.Warn("send job notification", slog.Int64("job_id", j.ID), slog.Any("error", err))
	}
	return &j, nil
}

// Update changes the supplied, non-empty fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateJobRequest) (*Job, error) {
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	updates := req.columns()
	if len(updates) == 0 {
		return nil, shared.Invalid("No fields to update")
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, "job.updated", id, nil)
	return s.repo.Get(ctx, id)
}

// Delete removes a job. Unknown ids succeed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "job.deleted", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, shared.Activity{Action: action, Entity: "job", EntityID: strconv.FormatInt(id, 10), Meta: meta})
}

// CreatedEvent builds the job_created notification. The team lead and
// principal consultant receive it when they are email addresses.
func CreatedEvent(j Job, by *shared.Principal) notify.Event {
	creator := j.CreatedBy
	if by != nil && by.Email != "" {
		creator = fmt.Sprintf("%s (%s)", by.Name, by.Email)
	}
	ev := notify.Event{
		Kind:      notify.KindJobCreated,
		RelatedID: j.ID,
		Subject:   fmt.Sprintf("New Job Created: %s - %s", j.JobCode, j.Client),
		Heading:   "New Job Requirement Created",
		Fields: []notify.Field{
			{Label: "Job Code", Value: j.JobCode},
			{Label: "Client", Value: j.Client},
			{Label: "Skill", Value: j.Skill},
			{Label: "Work Location", Value: j.WorkLocation},
			{Label: "Open Positions", Value: strconv.Itoa(j.OpenPositions)},
			{Label: "Team Lead", Value: j.TeamLead},
			{Label: "Principal Consultant", Value: j.PrincipalConsultant},
			{Label: "Budget", Value: j.Budget},
			{Label: "Created By", Value: creator},
		},
		Actor: j.CreatedBy,
	}
	for _, candidate := range []string{j.TeamLead, j.PrincipalConsultant} {
		if addr, err := mail.ParseAddress(strings.TrimSpace(candidate)); err == nil {
			ev.Recipients = append(ev.Recipients, addr.Address)
		}
	}
	return ev
}
