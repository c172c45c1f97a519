/*
errors.go - Centralized error types for the leave-ledger core

PURPOSE:
  All domain errors in one place. The API layer maps them to HTTP status
  codes via the classifier helpers at the bottom; nothing outside this
  package inspects error strings.

ERROR CATEGORIES:
  1. Validation errors - bad adjustment magnitude, duplicate email
  2. Not-found errors - unknown or inactive employee
  3. Store conflicts - unique-index races surfaced as sentinels

Authorization failures never reach this package: role checks happen in
the API middleware before any domain call runs.

USAGE:
  if errors.Is(err, ledger.ErrInvalidAdjustment) { ... }

  var inv *ledger.InvalidAdjustmentError
  if errors.As(err, &inv) { ... inv.Amount ... }
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAdjustment is returned when an adjustment amount is not one
	// of the four allowed magnitudes. No state changes on rejection.
	ErrInvalidAdjustment = errors.New("invalid adjustment amount")

	// ErrEmployeeNotFound is returned when the referenced employee does not
	// exist or has been deactivated.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrDuplicateEmail is returned when creating an account whose email is
	// already taken.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrBalanceExists is returned by the store when inserting a balance row
	// that already exists for the (employee, year, month) key. The resolver
	// treats it as "lost the creation race" and re-reads.
	ErrBalanceExists = errors.New("balance row already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAdjustmentError reports the rejected amount.
type InvalidAdjustmentError struct {
	Amount decimal.Decimal
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf("invalid adjustment amount %s: must be one of +1, -1, +0.5, -0.5", e.Amount)
}

func (e *InvalidAdjustmentError) Unwrap() error {
	return ErrInvalidAdjustment
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAdjustment) ||
		errors.Is(err, ErrDuplicateEmail)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
