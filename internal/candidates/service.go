// Package candidates manages applicant records.
package candidates

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Writer performs candidate writes that may carry pipeline side effects.
type Writer interface {
	CreateCandidate(ctx context.Context, c Candidate) (Candidate, error)
	UpdateCandidate(ctx context.Context, before, after Candidate) (Candidate, error)
}

// Service implements candidate CRUD.
type Service struct {
	repo     Repository
	writer   Writer
	validate *validator.Validate
	activity shared.ActivityRecorder
}

// NewService wires the candidate service. A nil writer writes straight to repo.
func NewService(repo Repository, writer Writer, activity shared.ActivityRecorder) *Service {
	s := &Service{repo: repo, validate: shared.NewValidator(), activity: activity}
	if writer == nil {
		writer = directWriter{repo: repo}
	}
	s.writer = writer
	return s
}

// SetWriter swaps the writer after construction.
func (s *Service) SetWriter(w Writer) {
	if w != nil {
		s.writer = w
	}
}

// List returns all candidates, newest first.
func (s *Service) List(ctx context.Context) ([]Candidate, error) {
	return s.repo.List(ctx)
}

// Search returns candidates whose name, email, skill or current company contain term.
func (s *Service) Search(ctx context.Context, term string) ([]Candidate, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, term)
}

// Get returns one candidate.
func (s *Service) Get(ctx context.Context, id int64) (*Candidate, error) {
	return s.repo.Get(ctx, id)
}

// Validate checks a create request without persisting anything.
func (s *Service) Validate(req CreateCandidateRequest) error {
	return shared.ValidateStruct(s.validate, normalize(req))
}

// Create validates and stores a candidate.
func (s *Service) Create(ctx context.Context, req CreateCandidateRequest) (*Candidate, error) {
	req = normalize(req)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	c := req.toCandidate()
	if c.Status == "" {
		c.Status = StatusNew
	}
	created, err := s.writer.CreateCandidate(ctx, c)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "candidate.created", created.ID, map[string]any{"name": created.Name})
	return &created, nil
}

// Update merges the supplied fields into the stored candidate.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCandidateRequest) (*Candidate, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return existing, nil
	}
	after := *existing
	req.apply(&after)
	merged := normalize(fromCandidate(after))
	if err := shared.ValidateStruct(s.validate, merged); err != nil {
		return nil, err
	}
	after.Name, after.Email, after.Mobile = merged.Name, merged.Email, merged.Mobile

	updated, err := s.writer.UpdateCandidate(ctx, *existing, after)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "candidate.updated", id, map[string]any{"status": updated.Status, "status1": updated.Status1})
	return &updated, nil
}

// Delete removes a candidate. Unknown ids succeed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "candidate.deleted", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, shared.Activity{Action: action, Entity: "candidate", EntityID: strconv.FormatInt(id, 10), Meta: meta})
}

func normalize(req CreateCandidateRequest) CreateCandidateRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)
	return req
}

type directWriter struct {
	repo Repository
}

func (d directWriter) CreateCandidate(ctx context.Context, c Candidate) (Candidate, error) {
	if err := d.repo.Create(ctx, &c); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

func (d directWriter) UpdateCandidate(ctx context.Context, _, after Candidate) (Candidate, error) {
	if err := d.repo.Save(ctx, &after); err != nil {
		return Candidate{}, err
	}
	return after, nil
}
