// Package interviews schedules and tracks candidate interviews.
package interviews

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Writer performs interview writes that may cascade to the candidate.
type Writer interface {
	CreateInterview(ctx context.Context, iv Interview) (Interview, error)
	UpdateInterview(ctx context.Context, before, after Interview) (Interview, error)
}

// Service implements interview CRUD and the status state machine.
type Service struct {
	repo     Repository
	writer   Writer
	validate *validator.Validate
	activity shared.ActivityRecorder
}

// NewService wires the interview service. A nil writer writes straight to repo.
func NewService(repo Repository, writer Writer, activity shared.ActivityRecorder) *Service {
	if writer == nil {
		writer = directWriter{repo: repo}
	}
	return &Service{repo: repo, writer: writer, validate: shared.NewValidator(), activity: activity}
}

// SetWriter swaps the writer after construction.
func (s *Service) SetWriter(w Writer) {
	if w != nil {
		s.writer = w
	}
}

// List returns interviews ordered by date then time, latest first.
func (s *Service) List(ctx context.Context) ([]Interview, error) {
	return s.repo.List(ctx)
}

// Get returns one interview.
func (s *Service) Get(ctx context.Context, id int64) (*Interview, error) {
	return s.repo.Get(ctx, id)
}

// Create schedules an interview.
func (s *Service) Create(ctx context.Context, req CreateInterviewRequest) (*Interview, error) {
	req.CandidateName = strings.TrimSpace(req.CandidateName)
	req.JobCode = strings.TrimSpace(req.JobCode)
	req.InterviewDate = strings.TrimSpace(req.InterviewDate)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	status := StatusScheduled
	if strings.TrimSpace(req.Status) != "" {
		canonical, ok := CanonicalStatus(req.Status)
		if !ok {
			return nil, shared.Invalid("status must be one of [%s]", strings.Join(statuses, ", "))
		}
		status = canonical
	}
	scheduledBy := req.ScheduledBy
	if scheduledBy == "" {
		scheduledBy = shared.ActorName(ctx)
	}
	iv := Interview{
		CandidateID:     int64(req.CandidateID),
		CandidateName:   req.CandidateName,
		CandidateEmail:  req.CandidateEmail,
		CandidateMobile: req.CandidateMobile,
		JobCode:         req.JobCode,
		Client:          req.Client,
		Location:        req.Location,
		Skill:           req.Skill,
		InterviewDate:   req.InterviewDate,
		InterviewTime:   req.InterviewTime,
		InterviewType:   req.InterviewType,
		Interviewer:     req.Interviewer,
		Status:          status,
		Result:          ResultPending,
		Notes:           req.Notes,
		Recruiter:       req.Recruiter,
		ScheduledBy:     scheduledBy,
	}
	created, err := s.writer.CreateInterview(ctx, iv)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "interview.created", created.ID, map[string]any{"candidateId": created.CandidateID})
	return &created, nil
}

// Update merges supplied fields. Status changes are checked against the
// state machine and handed to the writer, which owns the candidate cascade.
func (s *Service) Update(ctx context.Context, id int64, req UpdateInterviewRequest) (*Interview, error) {
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	after := *existing
	if !req.apply(&after) {
		return nil, shared.Invalid("No fields to update")
	}
	if req.Status != nil && *req.Status != "" {
		if err := CheckTransition(existing.Status, *req.Status); err != nil {
			return nil, err
		}
		after.Status, _ = CanonicalStatus(*req.Status)
	}

	updated, err := s.writer.UpdateInterview(ctx, *existing, after)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{"status": updated.Status}
	if existing.Status != updated.Status {
		meta["from"] = existing.Status
	}
	s.record(ctx, "interview.updated", id, meta)
	return &updated, nil
}

// Delete removes an interview. Unknown ids succeed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "interview.deleted", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, shared.Activity{Action: action, Entity: "interview", EntityID: strconv.FormatInt(id, 10), Meta: meta})
}

type directWriter struct {
	repo Repository
}

func (d directWriter) CreateInterview(ctx context.Context, iv Interview) (Interview, error) {
	if err := d.repo.Create(ctx, &iv); err != nil {
		return Interview{}, err
	}
	return iv, nil
}

func (d directWriter) UpdateInterview(ctx context.Context, _, after Interview) (Interview, error) {
	if err := d.repo.Save(ctx, &after); err != nil {
		return Interview{}, err
	}
	return after, nil
}
