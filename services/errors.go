package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/meinhoongagan/homeservice/models"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrVerificationRequired = errors.New("email verification required")
	ErrVerificationNotFound = errors.New("no pending verification")
	ErrVerificationExpired  = errors.New("verification code expired")
	ErrTooManyAttempts      = errors.New("too many verification attempts")
	ErrInvalidCode          = errors.New("invalid verification code")

	ErrForbidden           = errors.New("forbidden")
	ErrProviderNotVerified = errors.New("provider profile is not verified")

	ErrProfileNotFound  = errors.New("profile not found")
	ErrProviderNotFound = errors.New("provider not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrBookingNotFound  = errors.New("booking not found")

	ErrInvalidTransition = models.ErrInvalidTransition
)

// ValidationError reports input problems per field. Nothing is written when it
// is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// VerificationRequiredError is returned by Login for accounts whose email has
// not been confirmed yet. TicketID identifies the verification to continue;
// VerificationCode is only set when a fresh code could not be emailed.
type VerificationRequiredError struct {
	TicketID         string
	VerificationCode string
}

func (e *VerificationRequiredError) Error() string {
	return ErrVerificationRequired.Error()
}

func (e *VerificationRequiredError) Unwrap() error {
	return ErrVerificationRequired
}
