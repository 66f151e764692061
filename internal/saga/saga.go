// Package saga runs a short sequence of independently committed writes and,
// when one fails, undoes the writes that already succeeded.
//
// There is no transaction boundary behind it: each Do and Undo is its own
// write. Undo runs at most once per step and a failed Do is never retried.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Step is one write plus the write that reverses it. Undo may be nil for the
// last step or for steps with nothing to reverse.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// StepError reports which step failed and whether compensation succeeded.
type StepError struct {
	Step         string
	Err          error
	Compensated  []string
	Compensation error
}

func (e *StepError) Error() string {
	if e.Compensation != nil {
		return fmt.Sprintf("step %q failed: %v; compensation failed: %v", e.Step, e.Err, e.Compensation)
	}
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// NeedsReconciliation is true when at least one undo failed, leaving the
// stores out of step with each other.
func (e *StepError) NeedsReconciliation() bool { return e.Compensation != nil }

// Saga is an ordered list of steps. It is not safe for concurrent use.
type Saga struct {
	name   string
	steps  []Step
	logger *slog.Logger
}

// New starts an empty saga. A nil logger discards output.
func New(name string, logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Saga{name: name, logger: logger.With("saga", name)}
}

// Add appends a step.
func (s *Saga) Add(name string, do, undo func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Do: do, Undo: undo})
	return s
}

// Len returns the number of steps.
func (s *Saga) Len() int { return len(s.steps) }

// Run executes the steps in order. On the first failure it undoes completed
// steps in reverse order and returns a *StepError.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.Do(ctx); err != nil {
			s.logger.Warn("saga step failed", "step", step.Name, "error", err)
			return s.compensate(ctx, i, err)
		}
		s.logger.Debug("saga step done", "step", step.Name)
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, failed int, cause error) error {
	stepErr := &StepError{Step: s.steps[failed].Name, Err: cause}
	// Compensation must still run if the request context was cancelled.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(ctx); err != nil {
			s.logger.Error("saga compensation failed, manual reconciliation required",
				"step", step.Name, "error", err)
			errs = append(errs, fmt.Errorf("undo %q: %w", step.Name, err))
			continue
		}
		stepErr.Compensated = append(stepErr.Compensated, step.Name)
		s.logger.Info("saga step compensated", "step", step.Name)
	}
	stepErr.Compensation = errors.Join(errs...)
	return stepErr
}
