// Package saga runs a sequence of side effecting steps and undoes the
// completed ones when a later step fails.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Step is one unit of work. Compensate may be nil for steps with nothing to undo.
type Step struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// StepError identifies which step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("saga step %s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Run executes steps in order. When a step fails the already completed steps
// are compensated in reverse order. The returned error wraps the original
// failure joined with any compensation failures.
func Run(ctx context.Context, logger *slog.Logger, steps ...Step) error {
	s := New(logger)
	for _, step := range steps {
		if err := s.Do(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// Saga runs steps one at a time so later steps can be decided from the
// results of earlier ones. It is not safe for concurrent use.
type Saga struct {
	logger *slog.Logger
	done   []Step
	failed bool
}

// New starts an empty saga.
func New(logger *slog.Logger) *Saga {
	return &Saga{logger: logger}
}

// Do runs step. On failure every previously completed step is compensated
// and the saga refuses further steps.
func (s *Saga) Do(ctx context.Context, step Step) error {
	if s.failed {
		return &StepError{Step: step.Name, Err: errAborted}
	}
	if err := ctx.Err(); err != nil {
		return s.abort(ctx, &StepError{Step: step.Name, Err: err})
	}
	if err := step.Do(ctx); err != nil {
		return s.abort(ctx, &StepError{Step: step.Name, Err: err})
	}
	s.done = append(s.done, step)
	return nil
}

// Abort compensates the completed steps without a failing step, for callers
// that decide to give up between steps.
func (s *Saga) Abort(ctx context.Context, cause error) error {
	return s.abort(ctx, cause)
}

func (s *Saga) abort(ctx context.Context, failure error) error {
	s.failed = true
	done := s.done
	s.done = nil
	return errors.Join(failure, compensate(ctx, s.logger, done))
}

var errAborted = errors.New("saga already aborted")

func compensate(ctx context.Context, logger *slog.Logger, done []Step) error {
	// compensation must run even if the caller's context is already cancelled
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			if logger != nil {
				logger.Error("saga compensation failed", slog.String("step", step.Name), slog.Any("error", err))
			}
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}
