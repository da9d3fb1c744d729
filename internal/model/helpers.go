package model

// ExamWantsExclusive reports whether an exam carries a RoomExclusive hard
// constraint.
func ExamWantsExclusive(e *Exam) bool {
	for _, c := range e.RoomConstraints {
		if _, ok := c.(RoomExclusive); ok {
			return true
		}
	}
	return false
}

// ConstraintViolated evaluates a single period-related hard constraint for
// exam e (scheduled at periodE) against its counterpart (scheduled at
// periodOther), given e is one of the two exams named by hc. Shared by
// Constructor's hard-conflict detection and KempeMove's post-move
// feasibility check so the two independently-authored call sites can't
// drift apart on semantics.
func ConstraintViolated(pd *ProblemData, hc HardConstraint, e, periodE, other, periodOther int) bool {
	switch v := hc.(type) {
	case After:
		// e1 must be strictly after e2 (by period index).
		if v.E1 == e {
			return periodE <= periodOther
		}
		return periodOther <= periodE
	case Coincidence:
		if pd.Conflicts.Conflicts(v.E1, v.E2) {
			return false // ignored when the pair conflicts (§3)
		}
		return periodE != periodOther
	case Exclusion:
		return periodE == periodOther
	default:
		return false
	}
}

// OtherExam returns the counterpart exam named by a binary hard constraint
// relative to e, or ok=false if hc doesn't name e or isn't binary.
func OtherExam(hc HardConstraint, e int) (other int, ok bool) {
	e1, e2, ok := BinaryConstraintExams(hc)
	if !ok {
		return 0, false
	}
	if e1 == e {
		return e2, true
	}
	if e2 == e {
		return e1, true
	}
	return 0, false
}
