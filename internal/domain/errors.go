// Package domain defines the core types, requests, results and errors of the
// schema and row mutation engine.
package domain

import "fmt"

// NotFoundError indicates a table, column, database or row was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., column already exists).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// PolicyError indicates a request that is well formed but refused by a
// safety rule: unsafe type conversion, truncation, foreign key participation,
// batch limits, or a post-delete count mismatch.
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

// StoreError wraps a failure reported by the underlying database or backup
// store. Message is safe to show to callers; Err carries the driver text.
type StoreError struct {
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrPolicy creates a PolicyError with a formatted message.
func ErrPolicy(format string, args ...interface{}) *PolicyError {
	return &PolicyError{Message: fmt.Sprintf(format, args...)}
}

// ErrStore wraps err in a StoreError carrying message.
func ErrStore(err error, message string) *StoreError {
	return &StoreError{Message: message, Err: err}
}
