package model

import "fmt"

// InvariantViolation signals an internal inconsistency — duplicate exam,
// room-occupancy counter drift, etc. It is fatal and indicates a bug in the
// solver, never a routine outcome of search (§7).
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Detail)
}

// NewInvariantViolation constructs an InvariantViolation with a formatted
// detail message.
func NewInvariantViolation(format string, args ...interface{}) *InvariantViolation {
	return &InvariantViolation{Detail: fmt.Sprintf(format, args...)}
}
