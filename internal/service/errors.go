package service

import (
	"errors"
	"fmt"

	"go-pos-inventory/internal/saga"
	"go-pos-inventory/pkg/validator"
)

// Error kinds. Match with errors.Is; use errors.As on the concrete types for
// the details.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
	ErrPersistence       = errors.New("persistence failure")
)

// ValidationError is bad or missing input. Nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError carries the requested and available quantities.
// Nothing was written.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NotFoundError is a product, sale or user key that does not resolve.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError is a store failure. When a multi-step operation failed
// part way, Step names the failed write and Compensation holds any undo that
// also failed.
type PersistenceError struct {
	Op           string
	Step         string
	Err          error
	Compensation error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.Step != "" {
		msg = fmt.Sprintf("%s: step %q: %v", e.Op, e.Step, e.Err)
	}
	if e.Compensation != nil {
		msg += fmt.Sprintf("; rollback failed (%v), manual reconciliation required", e.Compensation)
	}
	return msg
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

// NeedsReconciliation is true when the stores may disagree after the failure.
func (e *PersistenceError) NeedsReconciliation() bool { return e.Compensation != nil }

func persistence(op string, err error) error {
	var stepErr *saga.StepError
	if errors.As(err, &stepErr) {
		return &PersistenceError{Op: op, Step: stepErr.Step, Err: stepErr.Err, Compensation: stepErr.Compensation}
	}
	return &PersistenceError{Op: op, Err: err}
}

// checkStruct runs the struct validator and reports the first failing field.
func checkStruct(v any) error {
	errs := validator.ValidateStruct(v)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return &ValidationError{Field: first.FailedField, Message: describeTag(first.Tag, first.Value)}
}

func describeTag(tag, param string) string {
	switch tag {
	case "required", "notblank":
		return "is required"
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be at least " + param
	case "max":
		return "must be at most " + param + " characters"
	case "min":
		return "must be at least " + param + " characters"
	case "oneof":
		return "must be one of: " + param
	default:
		return "is invalid"
	}
}

// classify names the kind of err for metrics and logs.
func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "persistence"
	}
}
