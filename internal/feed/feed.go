// Package feed assembles the per-user notification feed from interviews,
// recent jobs and admin announcements.
package feed

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-ats/internal/announcements"
	"github.com/odyssey-erp/odyssey-ats/internal/interviews"
	"github.com/odyssey-erp/odyssey-ats/internal/jobposts"
)

// Item types.
const (
	TypeInterview = "interview"
	TypeJob       = "job"
	TypeAdmin     = "admin"
)

// Item is one feed entry.
type Item struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Feed is the projection returned to a user.
type Feed struct {
	Items       []Item `json:"items"`
	UnreadCount int    `json:"unreadCount"`
}

// InterviewSource lists interviews on a calendar date.
type InterviewSource interface {
	ListByDate(ctx context.Context, date string) ([]interviews.Interview, error)
}

// JobSource lists recently created jobs.
type JobSource interface {
	ListCreatedSince(ctx context.Context, since time.Time) ([]jobposts.Job, error)
}

// AnnouncementSource lists admin announcements.
type AnnouncementSource interface {
	List(ctx context.Context) ([]announcements.Announcement, error)
}

// ReadStore keeps the ids a user has marked read.
type ReadStore interface {
	ReadIDs(ctx context.Context, userID int64) (map[string]bool, error)
	MarkRead(ctx context.Context, userID int64, ids ...string) error
}

// Builder projects the sources into a feed.
type Builder struct {
	interviews    InterviewSource
	jobs          JobSource
	announcements AnnouncementSource
	reads         ReadStore
	loc           *time.Location
	jobWindow     time.Duration
	clock         func() time.Time
}

// NewBuilder wires a Builder. Dates are evaluated in loc; jobs created within
// jobWindow are included.
func NewBuilder(ivs InterviewSource, jobs JobSource, anns AnnouncementSource, reads ReadStore, loc *time.Location, jobWindow time.Duration) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	if jobWindow <= 0 {
		jobWindow = 7 * 24 * time.Hour
	}
	return &Builder{
		interviews:    ivs,
		jobs:          jobs,
		announcements: anns,
		reads:         reads,
		loc:           loc,
		jobWindow:     jobWindow,
		clock:         time.Now,
	}
}

// Build loads every source concurrently and returns the sorted feed for userID.
func (b *Builder) Build(ctx context.Context, userID int64) (Feed, error) {
	items, err := b.items(ctx)
	if err != nil {
		return Feed{}, err
	}
	read := map[string]bool{}
	if b.reads != nil && userID > 0 {
		if read, err = b.reads.ReadIDs(ctx, userID); err != nil {
			return Feed{}, fmt.Errorf("load read flags: %w", err)
		}
	}
	out := Feed{Items: items}
	for i := range out.Items {
		out.Items[i].Read = read[out.Items[i].ID]
		if !out.Items[i].Read {
			out.UnreadCount++
		}
	}
	return out, nil
}

// MarkRead flags one item as read for userID.
func (b *Builder) MarkRead(ctx context.Context, userID int64, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errEmptyID
	}
	return b.reads.MarkRead(ctx, userID, id)
}

// MarkAllRead flags every item currently in the feed as read.
func (b *Builder) MarkAllRead(ctx context.Context, userID int64) error {
	items, err := b.items(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return b.reads.MarkRead(ctx, userID, ids...)
}

func (b *Builder) items(ctx context.Context) ([]Item, error) {
	now := b.clock().In(b.loc)
	today := now.Format(time.DateOnly)

	var ivs, jobs, anns []Item
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := b.interviews.ListByDate(gctx, today)
		if err != nil {
			return fmt.Errorf("load interviews: %w", err)
		}
		for _, iv := range list {
			if interviews.IsUpcoming(iv.Status) {
				ivs = append(ivs, b.interviewItem(iv))
			}
		}
		return nil
	})
	g.Go(func() error {
		list, err := b.jobs.ListCreatedSince(gctx, now.Add(-b.jobWindow))
		if err != nil {
			return fmt.Errorf("load jobs: %w", err)
		}
		for _, j := range list {
			jobs = append(jobs, jobItem(j))
		}
		return nil
	})
	g.Go(func() error {
		list, err := b.announcements.List(gctx)
		if err != nil {
			return fmt.Errorf("load announcements: %w", err)
		}
		for _, a := range list {
			anns = append(anns, announcementItem(a))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(ivs)+len(jobs)+len(anns))
	items = append(append(append(items, ivs...), jobs...), anns...)
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (b *Builder) interviewItem(iv interviews.Interview) Item {
	at := strings.TrimSpace(iv.InterviewTime)
	when := at
	if when == "" {
		when = "Time TBD"
	}
	return Item{
		ID:        fmt.Sprintf("interview-%d", iv.ID),
		Type:      TypeInterview,
		Title:     "Interview Scheduled Today",
		Message:   fmt.Sprintf("%s - %s at %s", iv.CandidateName, iv.JobCode, when),
		Priority:  announcements.PriorityHigh,
		Timestamp: b.scheduledAt(iv.InterviewDate, at),
	}
}

// scheduledAt combines an interview's date and optional clock time. Times
// that do not parse fall back to the start of the day.
func (b *Builder) scheduledAt(date, clock string) time.Time {
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"} {
		if clock == "" {
			break
		}
		if t, err := time.ParseInLocation(time.DateOnly+" "+layout, date+" "+clock, b.loc); err == nil {
			return t
		}
	}
	t, err := time.ParseInLocation(time.DateOnly, date, b.loc)
	if err != nil {
		return b.clock().In(b.loc)
	}
	return t
}

func jobItem(j jobposts.Job) Item {
	by := j.TeamLead
	if by == "" {
		by = "Account Manager"
	}
	return Item{
		ID:        fmt.Sprintf("job-%d", j.ID),
		Type:      TypeJob,
		Title:     "New Job Code Created",
		Message:   fmt.Sprintf("%s - %s (%s) by %s", j.JobCode, j.Client, j.Skill, by),
		Priority:  announcements.PriorityMedium,
		Timestamp: j.CreatedAt,
	}
}

func announcementItem(a announcements.Announcement) Item {
	return Item{
		ID:        fmt.Sprintf("announcement-%d", a.ID),
		Type:      TypeAdmin,
		Title:     a.Title,
		Message:   a.Message,
		Priority:  a.Priority,
		Timestamp: a.CreatedAt,
	}
}
