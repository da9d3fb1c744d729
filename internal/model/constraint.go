package model

// HardConstraint is a sealed sum type over the four ITC-2007 per-exam hard
// constraint kinds. The reference C++ implementation dispatches on these
// with dynamic_pointer_cast against a Constraint base class; a Go interface
// with an unexported marker method is the idiomatic replacement (§9).
type HardConstraint interface {
	isHardConstraint()
}

// After requires E1 to be scheduled strictly after E2 (by period index).
type After struct {
	E1, E2 int
}

func (After) isHardConstraint() {}

// Coincidence requires E1 and E2 to share the same period. Ignored when the
// two exams conflict (share at least one student) — see ConflictMatrix.
type Coincidence struct {
	E1, E2 int
}

func (Coincidence) isHardConstraint() {}

// Exclusion requires E1 and E2 to be scheduled in different periods.
type Exclusion struct {
	E1, E2 int
}

func (Exclusion) isHardConstraint() {}

// RoomExclusive requires that no other exam share Exam's room during its
// period.
type RoomExclusive struct {
	Exam int
}

func (RoomExclusive) isHardConstraint() {}

// BinaryConstraintExams returns the two exam ids involved in a two-exam hard
// constraint, and ok=false for RoomExclusive (which only names one exam).
func BinaryConstraintExams(c HardConstraint) (e1, e2 int, ok bool) {
	switch v := c.(type) {
	case After:
		return v.E1, v.E2, true
	case Coincidence:
		return v.E1, v.E2, true
	case Exclusion:
		return v.E1, v.E2, true
	default:
		return 0, 0, false
	}
}
