package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
	"github.com/odyssey-erp/odyssey-ats/internal/interviews"
	"github.com/odyssey-erp/odyssey-ats/internal/notify"
	"github.com/odyssey-erp/odyssey-ats/internal/platform/saga"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Coordinator executes candidate and interview writes together with the
// effects AdvanceCandidate derives from them. Multi-write changes run as a
// saga: if a later write fails the earlier ones are compensated.
type Coordinator struct {
	candidates candidates.Repository
	interviews interviews.Repository
	notifier   notify.Sender
	logger     *slog.Logger
}

// NewCoordinator wires a Coordinator. notifier may be nil.
func NewCoordinator(cands candidates.Repository, ivs interviews.Repository, notifier notify.Sender, logger *slog.Logger) *Coordinator {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{candidates: cands, interviews: ivs, notifier: notifier, logger: logger}
}

// CreateCandidate stores c and, when its status calls for it, the interview it triggers.
func (co *Coordinator) CreateCandidate(ctx context.Context, c candidates.Candidate) (candidates.Candidate, error) {
	s := saga.New(co.logger)
	err := s.Do(ctx, saga.Step{
		Name: "create candidate",
		Do:   func(ctx context.Context) error { return co.candidates.Create(ctx, &c) },
		Compensate: func(ctx context.Context) error {
			return co.candidates.Delete(ctx, c.ID)
		},
	})
	if err != nil {
		return candidates.Candidate{}, err
	}

	next, effects := AdvanceCandidate(c, CandidateCreated{})
	if err := co.apply(ctx, s, &next, effects); err != nil {
		return candidates.Candidate{}, err
	}
	co.dispatch(ctx, effects)
	return next, nil
}

// UpdateCandidate persists after and runs the effects of moving from before.
func (co *Coordinator) UpdateCandidate(ctx context.Context, before, after candidates.Candidate) (candidates.Candidate, error) {
	next, effects := AdvanceCandidate(after, CandidateUpdated{Before: before})
	s := saga.New(co.logger)
	err := s.Do(ctx, saga.Step{
		Name: "save candidate",
		Do:   func(ctx context.Context) error { return co.candidates.Save(ctx, &next) },
		Compensate: func(ctx context.Context) error {
			restore := before
			return co.candidates.Save(ctx, &restore)
		},
	})
	if err != nil {
		return candidates.Candidate{}, err
	}
	if err := co.apply(ctx, s, &next, effects); err != nil {
		return candidates.Candidate{}, err
	}
	co.dispatch(ctx, effects)
	return next, nil
}

// CreateInterview stores a manually scheduled interview.
func (co *Coordinator) CreateInterview(ctx context.Context, iv interviews.Interview) (interviews.Interview, error) {
	if err := co.interviews.Create(ctx, &iv); err != nil {
		return interviews.Interview{}, err
	}
	co.send(ctx, interviewScheduled(iv))
	return iv, nil
}

// UpdateInterview persists after and, on a status change, cascades to the
// interview's candidate.
func (co *Coordinator) UpdateInterview(ctx context.Context, before, after interviews.Interview) (interviews.Interview, error) {
	s := saga.New(co.logger)
	err := s.Do(ctx, saga.Step{
		Name: "save interview",
		Do:   func(ctx context.Context) error { return co.interviews.Save(ctx, &after) },
		Compensate: func(ctx context.Context) error {
			restore := before
			return co.interviews.Save(ctx, &restore)
		},
	})
	if err != nil {
		return interviews.Interview{}, err
	}
	if before.Status == after.Status {
		return after, nil
	}

	change := InterviewStatusChanged{Interview: after, From: before.Status, To: after.Status}
	cand, err := co.candidates.Get(ctx, after.CandidateID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return interviews.Interview{}, s.Abort(ctx, err)
		}
		// orphaned interview: nothing to cascade to
		co.logger.Warn("interview candidate missing", slog.Int64("interview_id", after.ID), slog.Int64("candidate_id", after.CandidateID))
		co.send(ctx, interviewStatusChanged(after, change.From, change.To))
		return after, nil
	}

	next, effects := AdvanceCandidate(*cand, change)
	original := *cand
	for _, eff := range effects {
		save, ok := eff.(SaveCandidate)
		if !ok {
			continue
		}
		next = save.Candidate
		err := s.Do(ctx, saga.Step{
			Name: "cascade candidate status",
			Do:   func(ctx context.Context) error { return co.candidates.Save(ctx, &next) },
			Compensate: func(ctx context.Context) error {
				restore := original
				return co.candidates.Save(ctx, &restore)
			},
		})
		if err != nil {
			return interviews.Interview{}, err
		}
	}
	co.dispatch(ctx, effects)
	return after, nil
}

// apply executes the interview effects for cand on s.
func (co *Coordinator) apply(ctx context.Context, s *saga.Saga, cand *candidates.Candidate, effects []Effect) error {
	for _, eff := range effects {
		create, ok := eff.(CreateInterview)
		if !ok {
			continue
		}
		draft := create.Interview
		draft.CandidateID = cand.ID
		inserted := false
		err := s.Do(ctx, saga.Step{
			Name: "create interview",
			Do: func(ctx context.Context) error {
				existing, err := co.interviews.FindByCandidate(ctx, cand.ID)
				if err == nil {
					draft = *existing
					return nil
				}
				if !errors.Is(err, shared.ErrNotFound) {
					return err
				}
				if err := co.interviews.Create(ctx, &draft); err != nil {
					return err
				}
				inserted = true
				return nil
			},
			Compensate: func(ctx context.Context) error {
				if !inserted {
					return nil
				}
				return co.interviews.Delete(ctx, draft.ID)
			},
		})
		if err != nil {
			return err
		}

		previous := cand.InterviewID
		err = s.Do(ctx, saga.Step{
			Name: "link interview",
			Do: func(ctx context.Context) error {
				id := draft.ID
				if err := co.candidates.SetInterviewID(ctx, cand.ID, &id); err != nil {
					return err
				}
				cand.InterviewID = &id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return co.candidates.SetInterviewID(ctx, cand.ID, previous)
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// dispatch sends the notification effects. Delivery is best effort: the
// change is already committed.
func (co *Coordinator) dispatch(ctx context.Context, effects []Effect) {
	for _, eff := range effects {
		if n, ok := eff.(Notify); ok {
			co.send(ctx, n.Event)
		}
	}
}

func (co *Coordinator) send(ctx context.Context, ev notify.Event) {
	if ev.Actor == "" {
		ev.Actor = shared.ActorName(ctx)
	}
	if err := co.notifier.Notify(ctx, ev); err != nil {
		co.logger.Warn("send notification", slog.String("kind", string(ev.Kind)), slog.Any("error", err))
	}
}

var (
	_ candidates.Writer = (*Coordinator)(nil)
	_ interviews.Writer = (*Coordinator)(nil)
)
