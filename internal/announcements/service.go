package announcements

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Service implements announcement CRUD.
type Service struct {
	repo     Repository
	validate *validator.Validate
	activity shared.ActivityRecorder
}

// NewService wires the announcement service.
func NewService(repo Repository, activity shared.ActivityRecorder) *Service {
	return &Service{repo: repo, validate: shared.NewValidator(), activity: activity}
}

// List returns announcements newest first.
func (s *Service) List(ctx context.Context) ([]Announcement, error) {
	return s.repo.List(ctx)
}

// Create stores an announcement. Priority defaults to medium.
func (s *Service) Create(ctx context.Context, req CreateAnnouncementRequest) (*Announcement, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	a := Announcement{Title: req.Title, Message: req.Message, Priority: req.Priority, CreatedBy: shared.ActorName(ctx)}
	if a.Priority == "" {
		a.Priority = PriorityMedium
	}
	if err := s.repo.Create(ctx, &a); err != nil {
		return nil, err
	}
	s.record(ctx, "announcement.created", a.ID)
	return &a, nil
}

// Update changes the supplied fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateAnnouncementRequest) (*Announcement, error) {
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Message != nil {
		updates["message"] = strings.TrimSpace(*req.Message)
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if len(updates) == 0 {
		return nil, shared.Invalid("No fields to update")
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, "announcement.updated", id)
	return s.repo.Get(ctx, id)
}

// Delete removes an announcement. Unknown ids succeed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "announcement.deleted", id)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, shared.Activity{Action: action, Entity: "announcement", EntityID: strconv.FormatInt(id, 10)})
}
