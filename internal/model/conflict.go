package model

// ConflictMatrix is a symmetric, non-negative matrix where entry [e1][e2] is
// the number of students enrolled in both e1 and e2. A positive entry means
// the two exams conflict and must not share a period.
type ConflictMatrix struct {
	n    int
	data []int32 // row-major, n*n
}

// NewConflictMatrix allocates an n-exam conflict matrix, all zero.
func NewConflictMatrix(n int) *ConflictMatrix {
	return &ConflictMatrix{n: n, data: make([]int32, n*n)}
}

// Get returns C[e1][e2].
func (m *ConflictMatrix) Get(e1, e2 int) int {
	return int(m.data[e1*m.n+e2])
}

// Add increments C[e1][e2] and C[e2][e1] by delta, keeping the matrix
// symmetric. e1 == e2 is a no-op (a student sitting one exam is not a
// self-conflict).
func (m *ConflictMatrix) Add(e1, e2 int, delta int) {
	if e1 == e2 {
		return
	}
	m.data[e1*m.n+e2] += int32(delta)
	m.data[e2*m.n+e1] += int32(delta)
}

// Conflicts reports whether e1 and e2 share at least one student.
func (m *ConflictMatrix) Conflicts(e1, e2 int) bool {
	return m.Get(e1, e2) > 0
}

// Size returns the number of exams the matrix is indexed over.
func (m *ConflictMatrix) Size() int {
	return m.n
}

// Density is the ratio of non-zero off-diagonal entries to the number of
// off-diagonal entries, mirroring TimetableProblemData::computeConflictMatrixDensity.
func (m *ConflictMatrix) Density() float64 {
	if m.n <= 1 {
		return 0
	}
	nonZero := 0
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.data[i*m.n+j] != 0 {
				nonZero++
			}
		}
	}
	total := float64(m.n*m.n - m.n)
	return float64(nonZero) / total
}

// ExamGraph is the adjacency-list projection of a ConflictMatrix: an
// undirected edge between every pair of exams with a positive conflict
// count. Kept alongside the matrix (rather than derived on demand) because
// Constructor's availability propagation and KempeMove's chain traversal
// both need fast neighbour iteration, while cost evaluation needs the O(1)
// conflict-strength lookup the matrix provides (§9: "Keep both").
type ExamGraph struct {
	neighbors [][]int
}

// BuildExamGraph derives the adjacency lists from a ConflictMatrix.
func BuildExamGraph(m *ConflictMatrix) *ExamGraph {
	n := m.Size()
	g := &ExamGraph{neighbors: make([][]int, n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && m.Conflicts(i, j) {
				g.neighbors[i] = append(g.neighbors[i], j)
			}
		}
	}
	return g
}

// Neighbors returns the exams in conflict with e.
func (g *ExamGraph) Neighbors(e int) []int {
	return g.neighbors[e]
}
