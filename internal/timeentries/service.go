package timeentries

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Service implements clock-in / clock-out for the calling user.
type Service struct {
	repo     Repository
	loc      *time.Location
	clock    func() time.Time
	activity shared.ActivityRecorder
}

// NewService wires the service. Work dates are computed in loc.
func NewService(repo Repository, loc *time.Location, activity shared.ActivityRecorder) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, clock: time.Now, activity: activity}
}

// List returns entries newest first, optionally filtered.
func (s *Service) List(ctx context.Context, f Filter) ([]Entry, error) {
	if f.Date != "" {
		if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
			return nil, shared.Invalid("date must match format 2006-01-02")
		}
	}
	return s.repo.List(ctx, f)
}

// Status returns the caller's open entry, or nil when clocked out.
func (s *Service) Status(ctx context.Context) (*Entry, error) {
	p := shared.PrincipalFromContext(ctx)
	if p == nil {
		return nil, shared.ErrUnauthorized
	}
	return s.repo.FindOpen(ctx, p.UserID)
}

// ClockIn opens an entry for the caller. Entries still open from earlier work
// dates are closed at the end of their day first.
func (s *Service) ClockIn(ctx context.Context) (*Entry, error) {
	p := shared.PrincipalFromContext(ctx)
	if p == nil {
		return nil, shared.ErrUnauthorized
	}
	now := s.clock().UTC()
	today := now.In(s.loc).Format(time.DateOnly)
	open, err := s.repo.ListOpen(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	clockedIn := false
	for i := range open {
		if open[i].WorkDate == today {
			clockedIn = true
			continue
		}
		if err := s.close(ctx, &open[i], now); err != nil {
			return nil, err
		}
	}
	if clockedIn {
		return nil, ErrAlreadyClockedIn
	}
	e := Entry{UserID: p.UserID, UserName: p.Name, WorkDate: today, ClockInTime: now, Status: StatusClockedIn}
	if err := s.repo.Create(ctx, &e); err != nil {
		return nil, err
	}
	s.record(ctx, "time.clock_in", e.ID)
	return &e, nil
}

// ClockOut closes the caller's open entries and returns the newest one. An
// entry from an earlier work date is closed at the end of that day.
func (s *Service) ClockOut(ctx context.Context) (*Entry, error) {
	p := shared.PrincipalFromContext(ctx)
	if p == nil {
		return nil, shared.ErrUnauthorized
	}
	open, err := s.repo.ListOpen(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, ErrNotClockedIn
	}
	now := s.clock().UTC()
	for i := range open {
		if err := s.close(ctx, &open[i], now); err != nil {
			return nil, err
		}
	}
	return &open[0], nil
}

// close clocks e out at now, or at midnight after its work date when that is
// earlier.
func (s *Service) close(ctx context.Context, e *Entry, now time.Time) error {
	out := now
	if day, err := time.ParseInLocation(time.DateOnly, e.WorkDate, s.loc); err == nil {
		if end := day.AddDate(0, 0, 1).UTC(); end.Before(out) {
			out = end
		}
	}
	if out.Before(e.ClockInTime) {
		out = e.ClockInTime
	}
	hours := Hours(e.ClockInTime, out)
	if err := s.repo.Close(ctx, e.ID, out, hours); err != nil {
		if errors.Is(err, ErrNotClockedIn) {
			// closed concurrently
			return nil
		}
		return err
	}
	e.ClockOutTime = &out
	e.TotalHours = &hours
	e.Status = StatusClockedOut
	s.record(ctx, "time.clock_out", e.ID)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, shared.Activity{Action: action, Entity: "time_entry", EntityID: strconv.FormatInt(id, 10)})
}
