package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the gotick library

var (
	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ValidationError describes a rejected configuration value. It wraps
// ErrInvalidConfiguration so callers can match the whole class with
// errors.Is while still getting a precise message.
type ValidationError struct {
	Module string      // package that rejected the value, e.g. "sched"
	Field  string      // configuration field name
	Value  interface{} // the offending value
	Reason string      // why it was rejected
	Hint   string      // optional suggestion for fixing it
}

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a fix suggestion and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// OperationError describes a failed operation on a component, keeping the
// underlying cause reachable through errors.Is / errors.As.
type OperationError struct {
	Module    string // package the operation belongs to, e.g. "cronplan"
	Operation string // operation name, e.g. "Schedule"
	Cause     error  // underlying failure
	Context   string // optional extra detail
}

// NewOperationError creates an OperationError without extra context.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches extra detail and returns the same error for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsOperationError reports whether err is, or wraps, an OperationError.
func IsOperationError(err error) bool {
	var oerr *OperationError
	return errors.As(err, &oerr)
}
