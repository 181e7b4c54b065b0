package reports

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service builds report summaries.
type Service struct {
	counter Counter
	cache   *Cache
	logger  *slog.Logger
	clock   func() time.Time
}

// NewService constructs the reports service. cache may be nil.
func NewService(counter Counter, cache *Cache, logger *slog.Logger) *Service {
	return &Service{counter: counter, cache: cache, logger: logger, clock: time.Now}
}

// Summary returns the totals, serving a cached copy when one is fresh.
// Cache failures fall back to computing directly.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	err := s.cache.fetch(ctx, summaryKey, &out, s.compute)
	if err == nil {
		return &out, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Warn("reports cache", slog.Any("error", err))
	}
	return s.compute(ctx)
}

func (s *Service) compute(ctx context.Context) (*Summary, error) {
	var candidates, jobs, interviews []StatusCount
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.counter.CountByStatus(ctx, EntityCandidates)
		return err
	})
	g.Go(func() error {
		var err error
		jobs, err = s.counter.CountByStatus(ctx, EntityJobs)
		return err
	})
	g.Go(func() error {
		var err error
		interviews, err = s.counter.CountByStatus(ctx, EntityInterviews)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Summary{
		Candidates:  newSection(candidates),
		Jobs:        newSection(jobs),
		Interviews:  newSection(interviews),
		Hires:       countHires(candidates),
		GeneratedAt: s.clock().UTC(),
	}, nil
}
