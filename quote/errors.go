/*
errors.go - Centralized error types for the quote engine

PURPOSE:
  All sentinel errors in one place. The store maps its "no rows" outcomes to
  ErrNotFound; every other store failure propagates as-is and is never
  retried against the fallback family.

ERROR CATEGORIES:
  1. NotFound    - record absent (in both families, once probing is done)
  2. Validation  - invalid client input
  3. Store       - external store failed for a reason other than "no rows"

USAGE:
  if errors.Is(err, quote.ErrNotFound) { ... }
*/
package quote

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a quote is absent. The store returns it
	// for a single family; the service returns it only after both families
	// have been probed.
	ErrNotFound = errors.New("quote not found")

	// ErrResultNotFound is returned when a result row lookup misses.
	ErrResultNotFound = errors.New("quote result not found")
)

// ValidationError reports invalid client input for a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a client input problem.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
