package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed or out-of-domain input for a single field.
// It never accompanies a partial result.
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
	// Bound names the violated constraint, e.g. ">= 18" or "one of [a b]".
	Bound string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s: %s", e.Field, e.Reason)
	if e.Bound != "" {
		fmt.Fprintf(&b, " (must be %s", e.Bound)
		if e.Value != nil {
			fmt.Fprintf(&b, ", got %v", e.Value)
		}
		b.WriteString(")")
	}
	return b.String()
}

// InvariantViolation signals an internal logic bug such as a score with no
// matching band. Callers must abort instead of returning a result.
type InvariantViolation struct {
	Module string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("computation invariant violated in %s: %s", e.Module, e.Detail)
}

// PersistenceError wraps a failed write of an already computed result. It is a
// warning: the in-memory result stays valid.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvariantViolation reports whether err carries an *InvariantViolation.
func IsInvariantViolation(err error) bool {
	var iv *InvariantViolation
	return errors.As(err, &iv)
}

// IsPersistence reports whether err carries a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
