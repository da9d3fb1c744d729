package model

import "testing"

func TestConflictMatrixSymmetricAdd(t *testing.T) {
	m := NewConflictMatrix(3)
	m.Add(0, 1, 2)
	if m.Get(0, 1) != 2 || m.Get(1, 0) != 2 {
		t.Fatalf("expected symmetric entry, got (0,1)=%d (1,0)=%d", m.Get(0, 1), m.Get(1, 0))
	}
	if m.Get(0, 2) != 0 {
		t.Fatalf("expected untouched entry to stay 0, got %d", m.Get(0, 2))
	}
	if !m.Conflicts(0, 1) || m.Conflicts(0, 2) {
		t.Fatalf("Conflicts disagrees with Get")
	}
}

func TestConflictMatrixAddSelfIsNoOp(t *testing.T) {
	m := NewConflictMatrix(2)
	m.Add(0, 0, 5)
	if m.Get(0, 0) != 0 {
		t.Fatalf("self-add should be a no-op, got %d", m.Get(0, 0))
	}
}

func TestBuildExamGraphMatchesMatrix(t *testing.T) {
	m := NewConflictMatrix(4)
	m.Add(0, 1, 1)
	m.Add(1, 2, 3)
	g := BuildExamGraph(m)

	want := map[int][]int{0: {1}, 1: {0, 2}, 2: {1}, 3: nil}
	for e, neighbors := range want {
		got := g.Neighbors(e)
		if len(got) != len(neighbors) {
			t.Fatalf("exam %d: neighbours = %v, want %v", e, got, neighbors)
		}
		for i := range neighbors {
			if got[i] != neighbors[i] {
				t.Fatalf("exam %d: neighbours = %v, want %v", e, got, neighbors)
			}
		}
	}
}

func TestBinaryConstraintExams(t *testing.T) {
	cases := []struct {
		hc       HardConstraint
		e1, e2   int
		wantOK   bool
	}{
		{After{E1: 1, E2: 2}, 1, 2, true},
		{Coincidence{E1: 3, E2: 4}, 3, 4, true},
		{Exclusion{E1: 5, E2: 6}, 5, 6, true},
		{RoomExclusive{Exam: 7}, 0, 0, false},
	}
	for _, c := range cases {
		e1, e2, ok := BinaryConstraintExams(c.hc)
		if ok != c.wantOK {
			t.Fatalf("%#v: ok = %v, want %v", c.hc, ok, c.wantOK)
		}
		if ok && (e1 != c.e1 || e2 != c.e2) {
			t.Fatalf("%#v: got (%d,%d), want (%d,%d)", c.hc, e1, e2, c.e1, c.e2)
		}
	}
}

func TestExamWantsExclusive(t *testing.T) {
	e := NewExam(0, 10, 60)
	if ExamWantsExclusive(e) {
		t.Fatalf("fresh exam should not want an exclusive room")
	}
	e.RoomConstraints = append(e.RoomConstraints, RoomExclusive{Exam: 0})
	if !ExamWantsExclusive(e) {
		t.Fatalf("expected ExamWantsExclusive to find the RoomExclusive constraint")
	}
}

func TestOtherExam(t *testing.T) {
	hc := After{E1: 2, E2: 5}
	if other, ok := OtherExam(hc, 2); !ok || other != 5 {
		t.Fatalf("OtherExam(hc, 2) = (%d, %v), want (5, true)", other, ok)
	}
	if other, ok := OtherExam(hc, 5); !ok || other != 2 {
		t.Fatalf("OtherExam(hc, 5) = (%d, %v), want (2, true)", other, ok)
	}
	if _, ok := OtherExam(hc, 9); ok {
		t.Fatalf("OtherExam should fail for an exam the constraint doesn't name")
	}
}

func TestSortedByClassSize(t *testing.T) {
	pd := &ProblemData{Exams: []*Exam{
		NewExam(0, 5, 60),
		NewExam(1, 20, 60),
		NewExam(2, 20, 60),
		NewExam(3, 1, 60),
	}}
	ids := pd.SortedByClassSize()
	want := []int{1, 2, 0, 3}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("SortedByClassSize = %v, want %v", ids, want)
		}
	}
}
