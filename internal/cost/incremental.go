package cost

import (
	"sort"

	"github.com/examsolve/examsolve/internal/model"
	"github.com/examsolve/examsolve/internal/timetable"
)

// Incremental computes the signed change in total soft cost caused by a
// KempeMove that touched exactly periods ti and tj, given the pre-move
// contents of those two periods (beforeTi, beforeTj). tt must already hold
// the post-move state. Only exams that were in ti or tj before the move can
// have changed placement (§4.4: ShiftMove only ever relocates exams between
// the two periods it was built over), so this runs in time proportional to
// the number of moved exams rather than the size of the whole timetable.
func Incremental(pd *model.ProblemData, tt *timetable.Timetable, ti, tj int, beforeTi, beforeTj []timetable.ExamRoom) int {
	oldPlacement := make(map[int]timetable.Placement, len(beforeTi)+len(beforeTj))
	for _, er := range beforeTi {
		oldPlacement[er.Exam] = timetable.Placement{Period: ti, Room: er.Room}
	}
	for _, er := range beforeTj {
		oldPlacement[er.Exam] = timetable.Placement{Period: tj, Room: er.Room}
	}

	moved := make([]int, 0, len(oldPlacement))
	for e := range oldPlacement {
		moved = append(moved, e)
	}
	sort.Ints(moved)

	delta := 0
	w := pd.Weightings
	sorted := pd.SortedByClassSize()
	largeExam := make(map[int]bool, w.Front.NLargeExams)
	n := w.Front.NLargeExams
	if n > len(sorted) {
		n = len(sorted)
	}
	for i := 0; i < n; i++ {
		largeExam[sorted[i]] = true
	}
	lastPeriodStart := pd.NumPeriods() - w.Front.NLastPeriods

	for _, e := range moved {
		old := oldPlacement[e]
		newPeriod, newRoom := tt.PeriodOf(e), tt.RoomOf(e)
		if old.Period == newPeriod && old.Room == newRoom {
			continue
		}

		// Terms 6 & 7: per-exam room/period penalty.
		delta += pd.Rooms[newRoom].Penalty - pd.Rooms[old.Room].Penalty
		delta += pd.Periods[newPeriod].Penalty - pd.Periods[old.Period].Penalty

		// Term 5: front load, only when a large exam crosses the boundary.
		if largeExam[e] {
			wasLate := old.Period >= lastPeriodStart
			isLate := newPeriod >= lastPeriodStart
			if isLate && !wasLate {
				delta += w.Front.Weight
			} else if wasLate && !isLate {
				delta -= w.Front.Weight
			}
		}

		// Terms 1-3: pairwise row/day/spread against every exam in a
		// period related to e's old (resp. new) period. Each unordered pair
		// between two moved exams is counted exactly once, from the
		// lower-id mover's perspective, to avoid double counting.
		for _, po := range relatedPeriods(pd, old.Period) {
			for _, o := range examsInPeriodAt(tt, po, ti, tj, beforeTi, beforeTj, true) {
				if o.Exam == e {
					continue
				}
				if _, isMover := oldPlacement[o.Exam]; isMover && o.Exam < e {
					continue
				}
				delta -= pairwiseWeighted(pd, e, old.Period, o.Exam, po)
			}
		}
		for _, pn := range relatedPeriods(pd, newPeriod) {
			for _, o := range examsInPeriodAt(tt, pn, ti, tj, beforeTi, beforeTj, false) {
				if o.Exam == e {
					continue
				}
				if _, isMover := oldPlacement[o.Exam]; isMover && o.Exam < e {
					continue
				}
				delta += pairwiseWeighted(pd, e, newPeriod, o.Exam, pn)
			}
		}
	}

	// Term 4: mixed durations are entirely local to (room, period); only
	// the rooms used within ti and tj can have changed.
	delta -= mixedDurationForPeriod(pd, beforeTi, w.Mixed)
	delta -= mixedDurationForPeriod(pd, beforeTj, w.Mixed)
	delta += mixedDurationForPeriod(pd, tt.PeriodExams(ti), w.Mixed)
	delta += mixedDurationForPeriod(pd, tt.PeriodExams(tj), w.Mixed)

	return delta
}

// relatedPeriods returns the period ids t' != t for which a pair of exams
// placed at (t, t') can possibly contribute to terms 1-3: same calendar day,
// or within the period-spread radius.
func relatedPeriods(pd *model.ProblemData, t int) []int {
	var out []int
	for tp := 0; tp < pd.NumPeriods(); tp++ {
		if tp == t {
			continue
		}
		dist := tp - t
		if dist < 0 {
			dist = -dist
		}
		if pd.Periods[t].SameDay(*pd.Periods[tp]) || dist <= pd.Weightings.Spread {
			out = append(out, tp)
		}
	}
	return out
}

// examsInPeriodAt returns the exam list that period's contents should be
// read from for the purposes of computing an "old" (useOld=true) or "new"
// (useOld=false) pairwise contribution. For any period other than the two
// the move touched, old and new are identical (the period wasn't touched).
func examsInPeriodAt(tt *timetable.Timetable, period, ti, tj int, beforeTi, beforeTj []timetable.ExamRoom, useOld bool) []timetable.ExamRoom {
	if useOld {
		switch period {
		case ti:
			return beforeTi
		case tj:
			return beforeTj
		}
	}
	return tt.PeriodExams(period)
}

// pairwiseWeighted returns the weighted term-1/2/3 contribution of a single
// exam pair placed at (periodA, periodB), or 0 if the pair doesn't conflict.
func pairwiseWeighted(pd *model.ProblemData, examA, periodA, examB, periodB int) int {
	n := pd.Conflicts.Get(examA, examB)
	if n == 0 {
		return 0
	}
	w := pd.Weightings
	dist := periodB - periodA
	if dist < 0 {
		dist = -dist
	}
	total := 0
	sameDay := pd.Periods[periodA].SameDay(*pd.Periods[periodB])
	if sameDay {
		if dist == 1 {
			total += n * w.Row
		} else {
			total += n * w.Day
		}
	}
	if dist <= w.Spread {
		total += n
	}
	return total
}
