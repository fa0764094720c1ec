// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrPrecondition    = errors.New("precondition not met")
	ErrMisconfigured   = errors.New("invalid configuration")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// Infrastructure errors
	ErrStoreUnavailable = errors.New("completion store unavailable")
	ErrTimeout          = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "goal", "streak", "xp", "leaderboard"
	Op      string // Operation that failed, e.g., "Advance", "Rank"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Goal domain errors
var (
	ErrGoalNotFound     = NewDomainError("goal", "Find", ErrNotFound, "goal not found")
	ErrInvalidGoal      = NewDomainError("goal", "Validate", ErrInvalidEntity, "invalid goal")
	ErrInvalidProgress  = NewDomainError("goal", "Validate", ErrValueOutOfRange, "progress must be between 0 and 100")
	ErrCategoryNotFound = NewDomainError("goal", "FindCategory", ErrNotFound, "category not found")
)

// Streak domain errors
var (
	ErrStreakNotFound       = NewDomainError("streak", "Find", ErrNotFound, "streak state not found")
	ErrNoFreezeAvailable    = NewDomainError("streak", "UseFreeze", ErrPrecondition, "no freeze available")
	ErrInvalidTemporalOrder = NewDomainError("streak", "Advance", ErrStateTransition, "day precedes last completed day")
)

// XP domain errors
var (
	ErrInvalidLevelBands = NewDomainError("xp", "ValidateBands", ErrMisconfigured, "level bands are not contiguous")
	ErrNegativeXP        = NewDomainError("xp", "Validate", ErrNegativeValue, "xp cannot be negative")
)

// Leaderboard domain errors
var (
	ErrInvalidRank      = NewDomainError("leaderboard", "Validate", ErrValueOutOfRange, "invalid rank")
	ErrNilEntry         = NewDomainError("leaderboard", "Rank", ErrInvalidInput, "nil leaderboard entry")
	ErrDuplicateUser    = NewDomainError("leaderboard", "Rank", ErrAlreadyExists, "user already present in batch")
	ErrSnapshotNotFound = NewDomainError("leaderboard", "FindSnapshot", ErrNotFound, "snapshot not found")
)

// Completion record domain errors
var (
	ErrRecordNotFound  = NewDomainError("completion", "Find", ErrNotFound, "daily completion record not found")
	ErrInvalidCounts   = NewDomainError("completion", "Validate", ErrValueOutOfRange, "goals completed exceeds total goals")
	ErrDuplicateRecord = NewDomainError("completion", "Create", ErrAlreadyExists, "record already exists for this day")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
