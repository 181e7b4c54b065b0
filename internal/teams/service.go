package teams

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Service manages teams and membership.
type Service struct {
	repo     Repository
	validate *validator.Validate
	activity shared.ActivityRecorder
}

// NewService wires the team service.
func NewService(repo Repository, activity shared.ActivityRecorder) *Service {
	return &Service{repo: repo, validate: shared.NewValidator(), activity: activity}
}

// List returns every team with its member ids.
func (s *Service) List(ctx context.Context) ([]Team, error) {
	return s.repo.List(ctx)
}

// Get returns one team.
func (s *Service) Get(ctx context.Context, id int64) (*Team, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new team. Names are not required to be unique.
func (s *Service) Create(ctx context.Context, req CreateTeamRequest) (*Team, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	t := Team{Name: req.Name, Description: req.Description, LeaderID: req.LeaderID}
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}
	s.record(ctx, "team.created", t.ID, map[string]any{"name": t.Name})
	return &t, nil
}

// Update changes the supplied fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTeamRequest) (*Team, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.LeaderID != nil {
		updates["leader_id"] = *req.LeaderID
	}
	if len(updates) == 0 {
		return nil, shared.Invalid("No fields to update")
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, "team.updated", id, nil)
	return s.repo.Get(ctx, id)
}

// Delete unassigns the team's members and removes it. Unknown ids succeed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.ClearMembers(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "team.deleted", id, nil)
	return nil
}

// AssignMember moves a user into a team. A user belongs to at most one team.
func (s *Service) AssignMember(ctx context.Context, req MemberRequest) (*Team, error) {
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.TeamID <= 0 {
		return nil, shared.Invalid("teamId is required")
	}
	var team *Team
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.Get(ctx, req.TeamID); err != nil {
			return err
		}
		teamID := req.TeamID
		if err := repo.SetUserTeam(ctx, req.UserID, &teamID); err != nil {
			return err
		}
		var err error
		team, err = repo.Get(ctx, req.TeamID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "team.member_assigned", req.TeamID, map[string]any{"user_id": req.UserID})
	return team, nil
}

// RemoveMember clears the user's team.
func (s *Service) RemoveMember(ctx context.Context, req MemberRequest) error {
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return err
	}
	if err := s.repo.SetUserTeam(ctx, req.UserID, nil); err != nil {
		return err
	}
	if req.TeamID > 0 {
		s.record(ctx, "team.member_removed", req.TeamID, map[string]any{"user_id": req.UserID})
	}
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, shared.Activity{Action: action, Entity: "team", EntityID: strconv.FormatInt(id, 10), Meta: meta})
}
