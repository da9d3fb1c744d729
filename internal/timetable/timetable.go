// Package timetable implements the mutable exam→(period,room) assignment
// state (§4.1 of the spec): schedule/unschedule primitives, per-period exam
// lists, per-(room,period) occupancy counters, and the cached feasibility
// flag and soft cost that higher layers (cost, construct, kempe) read and
// write.
package timetable

import "github.com/examsolve/examsolve/internal/model"

const unscheduled = -1

// Placement is the (period, room) pair an exam is assigned to, or the
// unscheduled sentinel.
type Placement struct {
	Period int
	Room   int
}

// ExamRoom names an exam placed in some room; used inside periodExams
// slices where the period itself is implicit from the slice index.
type ExamRoom struct {
	Exam int
	Room int
}

// occupancy tracks the two counters maintained per (room, period): the
// number of seats currently in use and the number of exams placed.
type occupancy struct {
	Seats int
	Exams int
}

// Timetable is the mutable solution. It is created empty by Constructor,
// mutated only through Schedule/Unschedule/ReplacePeriod, and explicitly
// Cloned when CellularEA needs an independent population member.
type Timetable struct {
	pd *model.ProblemData

	assign        []Placement   // per exam
	periodExams   [][]ExamRoom  // per period
	roomOccupancy [][]occupancy // [room][period]

	feasible bool
	cost     int
}

// New creates an empty Timetable over the given (immutable, shared)
// ProblemData: every exam unscheduled, every counter zero.
func New(pd *model.ProblemData) *Timetable {
	tt := &Timetable{
		pd:            pd,
		assign:        make([]Placement, pd.NumExams()),
		periodExams:   make([][]ExamRoom, pd.NumPeriods()),
		roomOccupancy: make([][]occupancy, pd.NumRooms()),
	}
	for e := range tt.assign {
		tt.assign[e] = Placement{Period: unscheduled, Room: unscheduled}
	}
	for r := range tt.roomOccupancy {
		tt.roomOccupancy[r] = make([]occupancy, pd.NumPeriods())
	}
	return tt
}

// ProblemData returns the (shared, read-only) problem this Timetable is a
// solution for.
func (tt *Timetable) ProblemData() *model.ProblemData { return tt.pd }

// IsScheduled reports whether exam e currently has a placement.
func (tt *Timetable) IsScheduled(e int) bool {
	return tt.assign[e].Period != unscheduled
}

// PeriodOf returns the period exam e is scheduled in, or -1.
func (tt *Timetable) PeriodOf(e int) int { return tt.assign[e].Period }

// RoomOf returns the room exam e is scheduled in, or -1.
func (tt *Timetable) RoomOf(e int) int { return tt.assign[e].Room }

// PeriodExams returns the exams (with their rooms) currently placed in
// period t. The returned slice must not be mutated by the caller.
func (tt *Timetable) PeriodExams(t int) []ExamRoom { return tt.periodExams[t] }

// SeatsUsed returns the number of seats currently occupied in room r during
// period t.
func (tt *Timetable) SeatsUsed(r, t int) int { return tt.roomOccupancy[r][t].Seats }

// ExamsIn returns the number of exams currently placed in room r during
// period t.
func (tt *Timetable) ExamsIn(r, t int) int { return tt.roomOccupancy[r][t].Exams }

// Feasible reports whether every exam is scheduled and all hard constraints
// hold. Only meaningful once Constructor has finished (or a caller has
// explicitly set it via SetFeasible after validating).
func (tt *Timetable) Feasible() bool { return tt.feasible }

// SetFeasible marks the timetable feasible or infeasible.
func (tt *Timetable) SetFeasible(v bool) { tt.feasible = v }

// Cost returns the cached soft-constraint cost. Valid iff Feasible().
func (tt *Timetable) Cost() int { return tt.cost }

// SetCost overwrites the cached soft cost (used by CostEvaluator after a
// full or incremental evaluation).
func (tt *Timetable) SetCost(c int) { tt.cost = c }

// Schedule places exam e into (t, r). Precondition: e is unscheduled. This
// is the primitive every higher layer builds on; it performs no feasibility
// check of its own.
func (tt *Timetable) Schedule(e, t, r int) {
	tt.assign[e] = Placement{Period: t, Room: r}
	tt.periodExams[t] = append(tt.periodExams[t], ExamRoom{Exam: e, Room: r})
	students := tt.pd.Exams[e].Students
	occ := &tt.roomOccupancy[r][t]
	occ.Seats += students
	occ.Exams++
}

// Unschedule removes exam e from its current placement. Precondition: e is
// scheduled.
func (tt *Timetable) Unschedule(e int) {
	p := tt.assign[e]
	t, r := p.Period, p.Room

	exams := tt.periodExams[t]
	for i, er := range exams {
		if er.Exam == e {
			exams[i] = exams[len(exams)-1]
			tt.periodExams[t] = exams[:len(exams)-1]
			break
		}
	}

	students := tt.pd.Exams[e].Students
	occ := &tt.roomOccupancy[r][t]
	occ.Seats -= students
	occ.Exams--

	tt.assign[e] = Placement{Period: unscheduled, Room: unscheduled}
}

// ReplacePeriod atomically removes every exam currently in period t and then
// schedules the given donor list into t; a donor still placed in another
// period is unscheduled from there first. Used by KempeMove to commit or roll
// back a chain of period swaps in one step.
func (tt *Timetable) ReplacePeriod(t int, donors []ExamRoom) {
	current := append([]ExamRoom(nil), tt.periodExams[t]...)
	for _, er := range current {
		tt.Unschedule(er.Exam)
	}
	for _, er := range donors {
		if tt.IsScheduled(er.Exam) {
			tt.Unschedule(er.Exam)
		}
		tt.Schedule(er.Exam, t, er.Room)
	}
}

// RoomFor returns a uniformly random room among those that simultaneously
// satisfy room capacity and the RoomExclusive hard constraint with respect
// to the current contents of period t, drawing the choice from rng. ok is
// false when no such room exists.
func (tt *Timetable) RoomFor(e, t int, pickIndex func(n int) int) (room int, ok bool) {
	exam := tt.pd.Exams[e]
	wantsExclusive := hasRoomExclusive(exam)

	var candidates []int
	for r, room := range tt.pd.Rooms {
		if tt.roomOccupancy[r][t].Seats+exam.Students > room.Capacity {
			continue
		}
		if tt.roomOccupancy[r][t].Exams > 0 {
			// Room already occupied in this period: disallowed if either
			// this exam wants exclusivity, or any occupant does.
			if wantsExclusive || tt.occupantWantsExclusive(r, t) {
				continue
			}
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[pickIndex(len(candidates))], true
}

func (tt *Timetable) occupantWantsExclusive(r, t int) bool {
	for _, er := range tt.periodExams[t] {
		if er.Room != r {
			continue
		}
		if hasRoomExclusive(tt.pd.Exams[er.Exam]) {
			return true
		}
	}
	return false
}

func hasRoomExclusive(exam *model.Exam) bool {
	for _, c := range exam.RoomConstraints {
		if _, ok := c.(model.RoomExclusive); ok {
			return true
		}
	}
	return false
}

// Clone performs one full, independent copy of the assignment, per-period
// exam lists, room occupancy counters, and the cached cost/feasibility
// flags. Used for population-level copies (CellularEA); the KempeMove hot
// path uses ReplacePeriod-based rollback instead to avoid the O(exams) cost
// here.
func (tt *Timetable) Clone() *Timetable {
	out := &Timetable{
		pd:       tt.pd,
		assign:   append([]Placement(nil), tt.assign...),
		feasible: tt.feasible,
		cost:     tt.cost,
	}
	out.periodExams = make([][]ExamRoom, len(tt.periodExams))
	for i, exams := range tt.periodExams {
		out.periodExams[i] = append([]ExamRoom(nil), exams...)
	}
	out.roomOccupancy = make([][]occupancy, len(tt.roomOccupancy))
	for i, row := range tt.roomOccupancy {
		out.roomOccupancy[i] = append([]occupancy(nil), row...)
	}
	return out
}

// CheckInvariants validates I1–I4 against the current state: every exam is
// scheduled, no two conflicting exams share a period, no room exceeds its
// capacity in any period, and every exam fits its period's duration. The
// per-exam hard constraints (I5) and the agreement of the per-period lists
// and room counters with the assignment (I6) are not checked. It is a debug
// aid called from tests rather than a hot-path check — consistent with §7's
// framing of InvariantViolation as "fatal, indicates a bug" rather than a
// routine outcome.
func (tt *Timetable) CheckInvariants() error {
	for e := range tt.assign {
		if !tt.IsScheduled(e) {
			return model.NewInvariantViolation("exam %d is unscheduled", e)
		}
	}
	for t := range tt.periodExams {
		exams := tt.periodExams[t]
		for i := 0; i < len(exams); i++ {
			for j := i + 1; j < len(exams); j++ {
				if tt.pd.Conflicts.Conflicts(exams[i].Exam, exams[j].Exam) {
					return model.NewInvariantViolation(
						"exams %d and %d conflict but share period %d",
						exams[i].Exam, exams[j].Exam, t)
				}
			}
		}
	}
	for r, row := range tt.roomOccupancy {
		for t, occ := range row {
			if occ.Seats > tt.pd.Rooms[r].Capacity {
				return model.NewInvariantViolation(
					"room %d period %d: %d seats used exceeds capacity %d",
					r, t, occ.Seats, tt.pd.Rooms[r].Capacity)
			}
		}
	}
	for e := range tt.assign {
		t := tt.PeriodOf(e)
		if tt.pd.Exams[e].Duration > tt.pd.Periods[t].Duration {
			return model.NewInvariantViolation(
				"exam %d duration %d exceeds period %d duration %d",
				e, tt.pd.Exams[e].Duration, t, tt.pd.Periods[t].Duration)
		}
	}
	return nil
}
