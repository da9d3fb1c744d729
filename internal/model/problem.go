package model

// ProblemData is the immutable, fully-populated problem description built
// once by the parser (internal/itcio) and shared by pointer among every
// solver component and every CellularEA cell. Nothing in the solver ever
// mutates a ProblemData after construction.
type ProblemData struct {
	Exams   []*Exam
	Periods []*Period
	Rooms   []*Room

	Conflicts *ConflictMatrix
	Graph     *ExamGraph

	HardConstraints []HardConstraint
	Weightings      Weightings
}

// NumExams returns the number of exams.
func (pd *ProblemData) NumExams() int { return len(pd.Exams) }

// NumPeriods returns the number of periods.
func (pd *ProblemData) NumPeriods() int { return len(pd.Periods) }

// NumRooms returns the number of rooms.
func (pd *ProblemData) NumRooms() int { return len(pd.Rooms) }

// SortedByClassSize returns exam ids sorted by decreasing student count,
// ties broken by ascending id (earliest index first) — the ordering the
// Front-load soft constraint selects its "largest exams" from.
func (pd *ProblemData) SortedByClassSize() []int {
	ids := make([]int, len(pd.Exams))
	for i := range ids {
		ids[i] = i
	}
	// Simple insertion sort: problem sizes (≤ a few thousand exams) make
	// this cheap and it keeps the stable tie-break explicit without
	// reaching for sort.Slice's non-guaranteed-stable semantics.
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && less(pd, ids[j], ids[j-1]) {
			ids[j], ids[j-1] = ids[j-1], ids[j]
			j--
		}
	}
	return ids
}

func less(pd *ProblemData, a, b int) bool {
	sa, sb := pd.Exams[a].Students, pd.Exams[b].Students
	if sa != sb {
		return sa > sb
	}
	return a < b
}
