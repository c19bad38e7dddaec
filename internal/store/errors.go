package store

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFoundOrUnauthorized = errors.New("not found or not owned by caller")
	ErrNotFound               = errors.New("not found")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrStorageFailure         = errors.New("storage failure")
	ErrBalanceMismatch        = errors.New("balance mismatch")
)

// ValidationError names the offending input. It unwraps to ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientFundsError is returned when a bet stake exceeds the balance it
// draws from. It unwraps to ErrInsufficientFunds.
type InsufficientFundsError struct {
	AccountId string
	Field     string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s balance on account %s: available %s, requested %s",
		e.Field, e.AccountId, e.Available.String(), e.Requested.String())
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// IsClientError reports whether err was caused by the caller's input or
// ownership rather than by the backend.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFoundOrUnauthorized) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsNotFound reports whether err means the target does not exist for the caller.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotFoundOrUnauthorized)
}
