// Package construct implements the saturation-degree graph-colouring
// construction heuristic with value-conflict repair and Conflict-Based
// Statistics (§4.3), grounded on the reference
// GCHeuristics<EOT>::saturationDegree algorithm.
package construct

import (
	"github.com/examsolve/examsolve/internal/model"
	"github.com/examsolve/examsolve/internal/rng"
	"github.com/examsolve/examsolve/internal/runlog"
	"github.com/examsolve/examsolve/internal/timetable"
	"go.uber.org/zap"
)

// Constructor builds a feasible Timetable from ProblemData. The CBS table
// is owned by the Constructor instance and persists across repeated
// Construct() calls on the same instance (§4.3).
type Constructor struct {
	pd  *model.ProblemData
	rng *rng.Handle
	cbs *cbs
	log *zap.SugaredLogger
}

// Option configures a Constructor at construction time.
type Option func(*Constructor)

// WithLogger attaches a structured logger for Construct's progress (§2 C9).
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Constructor) { c.log = l }
}

// New creates a Constructor with a fresh CBS table.
func New(pd *model.ProblemData, r *rng.Handle, opts ...Option) *Constructor {
	c := &Constructor{pd: pd, rng: r, cbs: newCBS(), log: runlog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// variableValue names a candidate (period, room) placement.
type variableValue struct {
	period, room int
}

// displaced names an exam that must be unscheduled from its current
// placement so that another exam can take a conflicting slot.
type displaced struct {
	exam, period, room int
}

// Construct runs the saturation-degree heuristic to completion and returns a
// feasible Timetable.
func (c *Constructor) Construct() (*timetable.Timetable, error) {
	tt := timetable.New(c.pd)
	numExams := c.pd.NumExams()
	c.log.Infow("construction started", "exams", numExams, "periods", c.pd.NumPeriods(), "rooms", c.pd.NumRooms())

	available := c.initAvailablePeriods()

	queue := newExamQueue()
	scheduled := make([]bool, numExams)
	for e := 0; e < numExams; e++ {
		queue.Insert(e, countTrue(available[e]), c.rng.Float64())
	}

	numScheduled := 0
	for !queue.Empty() {
		e, numAvail := queue.PopMin()

		placedT, placedR := -1, -1
		ok := false
		if numAvail > 0 {
			placedT, placedR, ok = c.tryDirectPlacement(tt, e, available[e])
		}

		if ok {
			tt.Schedule(e, placedT, placedR)
		} else {
			t, r, conflicts := c.selectValue(tt, e, available[e])
			for _, d := range conflicts {
				tt.Unschedule(d.exam)
				scheduled[d.exam] = false
				numScheduled--
				queue.Insert(d.exam, countTrue(available[d.exam]), c.rng.Float64())
				c.cbs.increment(e, t, r, d.exam, d.period, d.room)
			}
			tt.Schedule(e, t, r)
			placedT, placedR = t, r
		}

		scheduled[e] = true
		numScheduled++
		c.propagateAvailability(e, placedT, available, scheduled, queue)

		if numScheduled == numExams && queue.Empty() {
			break
		}
	}

	if numScheduled != numExams {
		c.log.Warnw("construction failed", "scheduled", numScheduled, "exams", numExams)
		return nil, &ErrInfeasibleConstruction{Detail: "queue drained before every exam was scheduled"}
	}

	tt.SetFeasible(true)
	c.log.Infow("construction finished", "exams", numExams)
	return tt, nil
}

// tryDirectPlacement attempts the cheap path: a uniformly random available
// period, then a room query. Returns ok=false if that period breaks one of
// e's period-related constraints against an already scheduled exam, or if no
// room can be found there.
func (c *Constructor) tryDirectPlacement(tt *timetable.Timetable, e int, available []bool) (period, room int, ok bool) {
	periods := trueIndices(available)
	if len(periods) == 0 {
		return 0, 0, false
	}
	t := periods[c.rng.Intn(len(periods))]
	if !c.feasiblePeriodForExam(tt, e, t) {
		return 0, 0, false
	}
	for _, hc := range c.pd.Exams[e].PeriodConstraints {
		other, ok := model.OtherExam(hc, e)
		if ok && tt.IsScheduled(other) && model.ConstraintViolated(c.pd, hc, e, t, other, tt.PeriodOf(other)) {
			return 0, 0, false
		}
	}
	r, found := tt.RoomFor(e, t, c.rng.Intn)
	if !found {
		return 0, 0, false
	}
	return t, r, true
}

// selectValue iterates the cartesian product of periods × rooms and picks
// the (t, r) minimising the CBS-weighted hard-conflict count, breaking ties
// uniformly at random (§4.3 step 3).
func (c *Constructor) selectValue(tt *timetable.Timetable, e int, available []bool) (period, room int, conflicts []displaced) {
	type candidate struct {
		t, r      int
		n         int
		conflicts []displaced
	}
	var best []candidate
	bestN := -1

	for t := 0; t < c.pd.NumPeriods(); t++ {
		if !c.feasiblePeriodForExam(tt, e, t) {
			continue
		}
		for r := 0; r < c.pd.NumRooms(); r++ {
			conf := c.hardConflicts(tt, e, t, r)
			n := 0
			for _, d := range conf {
				n += 1 + c.cbs.get(e, t, r, d.exam, d.period, d.room)
			}
			if bestN == -1 || n < bestN {
				bestN = n
				best = best[:0]
				best = append(best, candidate{t, r, n, conf})
			} else if n == bestN {
				best = append(best, candidate{t, r, n, conf})
			}
		}
	}

	if len(best) == 0 {
		// No room satisfies period utilisation in isolation anywhere; fall
		// back to period 0, room 0, displacing everything there. This is a
		// last-resort repair path exercised only on pathological instances.
		conf := c.hardConflicts(tt, e, 0, 0)
		return 0, 0, conf
	}

	chosen := best[c.rng.Intn(len(best))]
	return chosen.t, chosen.r, chosen.conflicts
}

// feasiblePeriodForExam checks Period-Utilisation in isolation: the exam's
// duration must fit within the period's duration.
func (c *Constructor) feasiblePeriodForExam(tt *timetable.Timetable, e, t int) bool {
	return c.pd.Exams[e].Duration <= c.pd.Periods[t].Duration
}

// hardConflicts enumerates the minimal set of already-scheduled exams that
// must be displaced so that placing e at (t, r) restores all hard
// constraints: No-Conflicts within t, Room-Occupancy, Period-Related, and
// Room-Related (§4.3 step 3).
func (c *Constructor) hardConflicts(tt *timetable.Timetable, e, t, r int) []displaced {
	seen := map[int]bool{}
	var out []displaced
	add := func(other int) {
		if other == e || seen[other] {
			return
		}
		seen[other] = true
		out = append(out, displaced{exam: other, period: tt.PeriodOf(other), room: tt.RoomOf(other)})
	}

	// No-Conflicts: any exam sharing a student with e, currently in t.
	for _, er := range tt.PeriodExams(t) {
		if c.pd.Conflicts.Conflicts(e, er.Exam) {
			add(er.Exam)
		}
	}

	// Room-Related: RoomExclusive wanted by e, or already held by an
	// occupant of (r, t).
	wantsExclusive := model.ExamWantsExclusive(c.pd.Exams[e])
	occupantExclusive := false
	for _, er := range tt.PeriodExams(t) {
		if er.Room != r {
			continue
		}
		if model.ExamWantsExclusive(c.pd.Exams[er.Exam]) {
			occupantExclusive = true
		}
	}
	if wantsExclusive || occupantExclusive {
		for _, er := range tt.PeriodExams(t) {
			if er.Room == r {
				add(er.Exam)
			}
		}
	}

	// Room-Occupancy: free enough seats in r at t, removing occupants of r
	// (largest-first, to minimise how many must go) until e fits.
	students := c.pd.Exams[e].Students
	capacity := c.pd.Rooms[r].Capacity
	seatsUsed := tt.SeatsUsed(r, t)
	for _, d := range out {
		if d.room == r {
			seatsUsed -= c.pd.Exams[d.exam].Students
		}
	}
	if seatsUsed+students > capacity {
		type occupant struct {
			exam, students int
		}
		var occupants []occupant
		for _, er := range tt.PeriodExams(t) {
			if er.Room == r && !seen[er.Exam] {
				occupants = append(occupants, occupant{er.Exam, c.pd.Exams[er.Exam].Students})
			}
		}
		for len(occupants) > 0 && seatsUsed+students > capacity {
			maxIdx := 0
			for i, o := range occupants {
				if o.students > occupants[maxIdx].students {
					maxIdx = i
				}
			}
			add(occupants[maxIdx].exam)
			seatsUsed -= occupants[maxIdx].students
			occupants = append(occupants[:maxIdx], occupants[maxIdx+1:]...)
		}
	}

	// Period-Related: After / Coincidence / Exclusion against already
	// scheduled counterparts.
	for _, hc := range c.pd.Exams[e].PeriodConstraints {
		other, ok := model.OtherExam(hc, e)
		if !ok || !tt.IsScheduled(other) {
			continue
		}
		if model.ConstraintViolated(c.pd, hc, e, t, other, tt.PeriodOf(other)) {
			add(other)
		}
	}

	return out
}

// initAvailablePeriods initialises every exam's feasible-period set to "all
// periods satisfying Period-Utilisation in isolation", then pre-restricts
// exams at the tail of an After chain so there remains room for everything
// that must follow them (§4.3).
func (c *Constructor) initAvailablePeriods() [][]bool {
	numExams := c.pd.NumExams()
	numPeriods := c.pd.NumPeriods()
	available := make([][]bool, numExams)
	for e := 0; e < numExams; e++ {
		available[e] = make([]bool, numPeriods)
		for t := 0; t < numPeriods; t++ {
			available[e][t] = c.pd.Exams[e].Duration <= c.pd.Periods[t].Duration
		}
	}

	succ := make(map[int][]int) // e2 -> exams that must come strictly after e2
	for _, hc := range c.pd.HardConstraints {
		if a, ok := hc.(model.After); ok {
			succ[a.E2] = append(succ[a.E2], a.E1)
		}
	}
	trailing := make(map[int]int)
	var chainLen func(e int) int
	chainLen = func(e int) int {
		if v, ok := trailing[e]; ok {
			return v
		}
		trailing[e] = 0 // break cycles defensively
		best := 0
		for _, nxt := range succ[e] {
			if l := 1 + chainLen(nxt); l > best {
				best = l
			}
		}
		trailing[e] = best
		return best
	}
	for e := range succ {
		need := chainLen(e)
		limit := numPeriods - need
		for t := limit; t < numPeriods; t++ {
			if t >= 0 {
				available[e][t] = false
			}
		}
	}

	return available
}

// propagateAvailability removes the just-placed exam's period from every
// still-unscheduled neighbour's feasible-period set (§4.3 step 4).
func (c *Constructor) propagateAvailability(e, t int, available [][]bool, scheduled []bool, queue *examQueue) {
	for _, nb := range c.pd.Graph.Neighbors(e) {
		if scheduled[nb] || !queue.Contains(nb) {
			continue
		}
		if available[nb][t] {
			available[nb][t] = false
			queue.Update(nb, countTrue(available[nb]))
		}
	}
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func trueIndices(bs []bool) []int {
	var out []int
	for i, b := range bs {
		if b {
			out = append(out, i)
		}
	}
	return out
}
