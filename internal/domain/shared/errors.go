// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// ErrNotFound - a referenced document (user, cohort, course) does not exist.
	// Handlers short-circuit and return early when they hit this.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidInput - a handler received parameters it cannot work with.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPreconditionFailed - an eligibility precondition did not hold
	// (e.g. the course is not completed). Logged, never surfaced as a failure.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrExternalService - an outbound collaborator call (email, Discord, mint)
	// failed. On async paths this is logged and dropped, never retried.
	ErrExternalService = errors.New("external service error")

	// ErrServiceUnavailable - a collaborator could not be reached at all.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "user", "cohort", "eligibility"
	Op      string // operation that failed, e.g. "Get", "GrantRole"
	Kind    error  // base error type for errors.Is() checking
	Message string // human-readable message
	Err     error  // underlying error (optional)
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

// Is implements errors.Is() matching against both Kind and Err.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewNotFound creates a DomainError for a missing document.
func NewNotFound(domain, id string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      "Get",
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s %q not found", domain, id),
	}
}

// NewExternalError wraps a collaborator failure.
func NewExternalError(domain, op string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrExternalService,
		Message: "collaborator call failed",
		Err:     err,
	}
}
