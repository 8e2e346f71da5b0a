package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrForbidden              = errors.New("not allowed to manage this listing")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrListingNotFound        = errors.New("listing not found")
	ErrStore                  = errors.New("listing store unavailable")
	ErrComparisonLimitReached = errors.New("comparison limit reached")
	ErrInvalidTransition      = errors.New("invalid moderation transition")
	ErrWizardAlreadySubmitted = errors.New("submission already committed")
	ErrDuplicateSlug          = errors.New("slug already exists")
)

// ValidationError names the offending field so callers can block on it.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StoreError wraps a transport or storage failure from a collaborator.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStore, e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
