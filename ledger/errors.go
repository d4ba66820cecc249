/*
errors.go - Centralized error types for the coin board

PURPOSE:
  All error types in one place for consistency and discoverability.
  Stores and services wrap these with context; the API layer maps them
  to HTTP status codes.

ERROR CATEGORIES:
  1. Not found - referenced team, user, or achievement is missing
  2. Validation - missing or malformed input, rejected with no effect
  3. Constraint conflict - benign duplicate unlock, swallowed by the evaluator
  4. Aggregate - one failing award aborted a whole bulk batch

USAGE:
  if errors.Is(err, ledger.ErrNotFound) {
      // 404
  }

  var agg *ledger.AggregateError
  if errors.As(err, &agg) {
      // agg.Index identifies the failing award
  }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateUnlock is returned by Store.Unlock when the (entity,
	// achievement) pair already has an unlock record.
	ErrDuplicateUnlock = errors.New("achievement already unlocked")

	// ErrDuplicate is returned when a unique directory field (team name,
	// user email) is already taken.
	ErrDuplicate = errors.New("already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing entity.
type NotFoundError struct {
	Kind string // "user", "team", "achievement"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AggregateError reports which award in a bulk batch failed. The batch was
// rolled back; no award from it was committed.
type AggregateError struct {
	Index  int // zero-based position in the batch
	UserID UserID
	Err    error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("award %d (user %d): %v", e.Index, e.UserID, e.Err)
}

func (e *AggregateError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
