// Package kempe implements the Kempe-chain neighbourhood operator (§4.4):
// RoomMove and ShiftMove, and the build/evaluate/isFeasibleNeighbour/
// neighborCost/apply pipeline ThresholdAccepting and CellularEA drive their
// local search through. Grounded on the reference
// ETTPKempeChainHeuristic<EOT>, reworked around explicit rng handles and
// Timetable's ReplacePeriod rather than a global RNG and an in-place
// unschedule/reschedule dance.
package kempe

import (
	"github.com/examsolve/examsolve/internal/cost"
	"github.com/examsolve/examsolve/internal/model"
	"github.com/examsolve/examsolve/internal/rng"
	"github.com/examsolve/examsolve/internal/timetable"
)

// Operator names which of the two neighbourhood moves a Move instance is.
type Operator int

const (
	ShiftMove Operator = iota
	RoomMove
)

func (op Operator) String() string {
	if op == RoomMove {
		return "RoomMove"
	}
	return "ShiftMove"
}

// Move is a single candidate neighbour: built against a Timetable without
// mutating it, then Evaluate-d (which tentatively applies and rolls back the
// move to measure its cost and feasibility), then optionally Apply-ed to
// commit it for real. A Move is single-use: build one per candidate.
type Move struct {
	pd       *model.ProblemData
	operator Operator

	ti, tj int // tj == ti for RoomMove

	originalTi []timetable.ExamRoom
	originalTj []timetable.ExamRoom
	finalTi    []timetable.ExamRoom
	finalTj    []timetable.ExamRoom

	built    bool
	feasible bool

	costDelta    int
	neighborCost int
}

// Build picks an operator (equal probability), selects its random parameters
// against tt's current state, and computes the resulting Kempe chain — all
// without mutating tt. If no capacity-feasible room swap can be found for a
// RoomMove within a bounded number of tries, the move is built as
// infeasible directly, mirroring the reference implementation's bail-out.
func Build(tt *timetable.Timetable, pd *model.ProblemData, r *rng.Handle) *Move {
	if r.Bool() {
		return buildShiftMove(tt, pd, r)
	}
	return buildRoomMove(tt, pd, r)
}

// nonEmptyPeriod returns a uniformly random period holding at least one exam.
func nonEmptyPeriod(tt *timetable.Timetable, pd *model.ProblemData, r *rng.Handle) int {
	var candidates []int
	for t := 0; t < pd.NumPeriods(); t++ {
		if len(tt.PeriodExams(t)) > 0 {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[r.Intn(len(candidates))]
}

func buildShiftMove(tt *timetable.Timetable, pd *model.ProblemData, r *rng.Handle) *Move {
	m := &Move{pd: pd, operator: ShiftMove, built: true, feasible: true}

	ti := nonEmptyPeriod(tt, pd, r)
	if ti == -1 {
		m.feasible = false
		return m
	}
	tj := r.Intn(pd.NumPeriods() - 1)
	if tj >= ti {
		tj++
	}
	m.ti, m.tj = ti, tj
	m.originalTi = append([]timetable.ExamRoom(nil), tt.PeriodExams(ti)...)
	m.originalTj = append([]timetable.ExamRoom(nil), tt.PeriodExams(tj)...)

	exams := tt.PeriodExams(ti)
	ei := exams[r.Intn(len(exams))].Exam

	m.finalTi, m.finalTj = shiftChain(tt, pd, r, ti, tj, ei)
	return m
}

// shiftChain computes the post-move contents of ti and tj by repeatedly
// displacing whichever conflicting exam blocks the move, alternating sides,
// until no resident of either period still conflicts with a freshly crossed
// exam (§4.4). The first exam to cross (ei) is given a random
// capacity-feasible room at its destination; every other propagated exam
// keeps the room index it already held.
func shiftChain(tt *timetable.Timetable, pd *model.ProblemData, r *rng.Handle, ti, tj, ei int) (finalTi, finalTj []timetable.ExamRoom) {
	origTi := tt.PeriodExams(ti)
	origTj := tt.PeriodExams(tj)

	roomOf := make(map[int]int, len(origTi)+len(origTj))
	for _, er := range origTi {
		roomOf[er.Exam] = er.Room
	}
	for _, er := range origTj {
		roomOf[er.Exam] = er.Room
	}

	movedToTj := map[int]bool{ei: true}
	movedToTi := map[int]bool{}

	destRoom, ok := tt.RoomFor(ei, tj, r.Intn)
	if !ok {
		destRoom = roomOf[ei]
	}
	roomOf[ei] = destRoom

	type crossing struct {
		exam int
		toTj bool // true: just moved ti->tj, false: just moved tj->ti
	}
	queue := []crossing{{ei, true}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.toTj {
			for _, o := range origTj {
				if movedToTi[o.Exam] || movedToTj[o.Exam] {
					continue
				}
				if pd.Conflicts.Conflicts(cur.exam, o.Exam) {
					movedToTi[o.Exam] = true
					queue = append(queue, crossing{o.Exam, false})
				}
			}
		} else {
			for _, o := range origTi {
				if movedToTj[o.Exam] || movedToTi[o.Exam] {
					continue
				}
				if pd.Conflicts.Conflicts(cur.exam, o.Exam) {
					movedToTj[o.Exam] = true
					queue = append(queue, crossing{o.Exam, true})
				}
			}
		}
	}

	for _, er := range origTi {
		if !movedToTj[er.Exam] {
			finalTi = append(finalTi, er)
		}
	}
	for e := range movedToTi {
		finalTi = append(finalTi, timetable.ExamRoom{Exam: e, Room: roomOf[e]})
	}
	for _, er := range origTj {
		if !movedToTi[er.Exam] {
			finalTj = append(finalTj, er)
		}
	}
	for e := range movedToTj {
		finalTj = append(finalTj, timetable.ExamRoom{Exam: e, Room: roomOf[e]})
	}
	return finalTi, finalTj
}

func buildRoomMove(tt *timetable.Timetable, pd *model.ProblemData, r *rng.Handle) *Move {
	m := &Move{pd: pd, operator: RoomMove, built: true, feasible: true}

	ti := nonEmptyPeriod(tt, pd, r)
	if ti == -1 {
		m.feasible = false
		return m
	}
	m.ti, m.tj = ti, ti
	m.originalTi = append([]timetable.ExamRoom(nil), tt.PeriodExams(ti)...)

	exams := tt.PeriodExams(ti)
	ei := exams[r.Intn(len(exams))].Exam
	ri := tt.RoomOf(ei)

	riStudents, rjStudentsByRoom := 0, map[int]int{}
	for _, er := range exams {
		if er.Room == ri {
			riStudents += pd.Exams[er.Exam].Students
		} else {
			rjStudentsByRoom[er.Room] += pd.Exams[er.Exam].Students
		}
	}

	order := make([]int, 0, pd.NumRooms()-1)
	for rj := 0; rj < pd.NumRooms(); rj++ {
		if rj != ri {
			order = append(order, rj)
		}
	}
	r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	chosen, found := -1, false
	tries := 0
	for _, rj := range order {
		if tries >= 4 {
			break
		}
		tries++
		if rjStudentsByRoom[rj] > pd.Rooms[ri].Capacity {
			continue
		}
		if riStudents > pd.Rooms[rj].Capacity {
			continue
		}
		chosen, found = rj, true
		break
	}
	if !found {
		m.feasible = false
		return m
	}
	rj := chosen

	for _, er := range exams {
		switch er.Room {
		case ri:
			m.finalTi = append(m.finalTi, timetable.ExamRoom{Exam: er.Exam, Room: rj})
		case rj:
			m.finalTi = append(m.finalTi, timetable.ExamRoom{Exam: er.Exam, Room: ri})
		default:
			m.finalTi = append(m.finalTi, er)
		}
	}
	return m
}

// Evaluate tentatively applies the move to tt, checks every hard constraint
// it could have disturbed, measures the incremental soft-cost delta, and
// then rolls tt back to exactly its pre-Evaluate state. After Evaluate
// returns, tt is unchanged; call Apply separately to commit.
func (m *Move) Evaluate(tt *timetable.Timetable) {
	if !m.feasible {
		return
	}

	tt.ReplacePeriod(m.ti, m.finalTi)
	if m.tj != m.ti {
		tt.ReplacePeriod(m.tj, m.finalTj)
	}

	if !m.checkFeasible(tt) {
		m.feasible = false
	} else {
		tjForCost := m.tj
		beforeTj := m.originalTj
		if m.tj == m.ti {
			tjForCost = placeholderPeriod(m.pd, m.ti)
			beforeTj = tt.PeriodExams(tjForCost)
		}
		m.costDelta = cost.Incremental(m.pd, tt, m.ti, tjForCost, m.originalTi, beforeTj)
		m.neighborCost = tt.Cost() + m.costDelta
	}

	tt.ReplacePeriod(m.ti, m.originalTi)
	if m.tj != m.ti {
		tt.ReplacePeriod(m.tj, m.originalTj)
	}
}

// placeholderPeriod returns any period other than ti, used to give
// cost.Incremental a well-formed (ti, tj) pair when a RoomMove only ever
// touches one period.
func placeholderPeriod(pd *model.ProblemData, ti int) int {
	if ti == 0 {
		return pd.NumPeriods() - 1
	}
	return 0
}

// checkFeasible re-verifies Period-Utilisation, Period-Related, Room-Related,
// and Room-Occupancy hard constraints for every exam touched by the move,
// against the tentative post-move state already written into tt.
func (m *Move) checkFeasible(tt *timetable.Timetable) bool {
	touched := map[int]bool{}
	for _, er := range m.finalTi {
		touched[er.Exam] = true
	}
	for _, er := range m.finalTj {
		touched[er.Exam] = true
	}

	for _, t := range []int{m.ti, m.tj} {
		if !roomsOK(m.pd, tt, t) {
			return false
		}
	}

	for e := range touched {
		t := tt.PeriodOf(e)
		if m.pd.Exams[e].Duration > m.pd.Periods[t].Duration {
			return false
		}
		for _, hc := range m.pd.Exams[e].PeriodConstraints {
			other, ok := model.OtherExam(hc, e)
			if !ok || !tt.IsScheduled(other) {
				continue
			}
			if model.ConstraintViolated(m.pd, hc, e, t, other, tt.PeriodOf(other)) {
				return false
			}
		}
	}
	return true
}

// roomsOK checks No-Conflicts for the whole period t (conflicting exams may
// not share a period regardless of room), plus Room-Occupancy and
// Room-Related for every room used within it.
func roomsOK(pd *model.ProblemData, tt *timetable.Timetable, t int) bool {
	exams := tt.PeriodExams(t)
	for i := 0; i < len(exams); i++ {
		for j := i + 1; j < len(exams); j++ {
			if pd.Conflicts.Conflicts(exams[i].Exam, exams[j].Exam) {
				return false
			}
		}
	}
	byRoom := map[int][]int{}
	for _, er := range exams {
		byRoom[er.Room] = append(byRoom[er.Room], er.Exam)
	}
	for room, occupants := range byRoom {
		seats := 0
		exclusive := false
		for _, e := range occupants {
			seats += pd.Exams[e].Students
			if model.ExamWantsExclusive(pd.Exams[e]) {
				exclusive = true
			}
		}
		if seats > pd.Rooms[room].Capacity {
			return false
		}
		if exclusive && len(occupants) > 1 {
			return false
		}
	}
	return true
}

// IsFeasibleNeighbour reports whether Evaluate found the neighbour feasible.
func (m *Move) IsFeasibleNeighbour() bool { return m.feasible }

// NeighborCost returns the candidate's total soft cost, valid only after a
// feasible Evaluate.
func (m *Move) NeighborCost() int { return m.neighborCost }

// Operator reports which operator produced this move.
func (m *Move) Operator() Operator { return m.operator }

// Apply commits a feasible move to tt for real: replaces ti (and tj, for
// ShiftMove) with the move's final contents and updates the cached cost.
func (m *Move) Apply(tt *timetable.Timetable) {
	tt.ReplacePeriod(m.ti, m.finalTi)
	if m.tj != m.ti {
		tt.ReplacePeriod(m.tj, m.finalTj)
	}
	tt.SetCost(m.neighborCost)
}
