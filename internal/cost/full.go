package cost

import (
	"github.com/examsolve/examsolve/internal/model"
	"github.com/examsolve/examsolve/internal/timetable"
)

// Full computes the seven soft-cost terms from scratch, period by period.
// It is the reference evaluator: correct but O(exams^2) in the worst case,
// used for construction's final scoring and for verifying Incremental's
// output in tests (P6).
func Full(pd *model.ProblemData, tt *timetable.Timetable) Breakdown {
	var b Breakdown
	w := pd.Weightings

	// 1, 2 & 3: two-in-a-row, two-in-a-day, period spread.
	numPeriods := pd.NumPeriods()
	for t1 := 0; t1 < numPeriods; t1++ {
		p1Exams := tt.PeriodExams(t1)
		for _, er1 := range p1Exams {
			for t2 := t1 + 1; t2 < numPeriods; t2++ {
				sameDay := pd.Periods[t1].SameDay(*pd.Periods[t2])
				dist := t2 - t1
				if !sameDay && dist > w.Spread {
					continue
				}
				for _, er2 := range tt.PeriodExams(t2) {
					n := pd.Conflicts.Get(er1.Exam, er2.Exam)
					if n == 0 {
						continue
					}
					if sameDay {
						if dist == 1 {
							b.Row += n * w.Row
						} else {
							b.Day += n * w.Day
						}
					}
					if dist <= w.Spread {
						b.Spread += n
					}
				}
			}
		}
	}

	// 4: mixed durations, per (room, period).
	for t := 0; t < numPeriods; t++ {
		b.Mixed += mixedDurationForPeriod(pd, tt.PeriodExams(t), w.Mixed)
	}

	// 5: front load.
	sorted := pd.SortedByClassSize()
	n := w.Front.NLargeExams
	if n > len(sorted) {
		n = len(sorted)
	}
	for i := 0; i < n; i++ {
		e := sorted[i]
		if tt.PeriodOf(e) >= numPeriods-w.Front.NLastPeriods {
			b.Front += w.Front.Weight
		}
	}

	// 6 & 7: soft room/period penalty, per scheduled exam.
	for e := range pd.Exams {
		if !tt.IsScheduled(e) {
			continue
		}
		b.Room += pd.Rooms[tt.RoomOf(e)].Penalty
		b.Period += pd.Periods[tt.PeriodOf(e)].Penalty
	}

	return b
}

// mixedDurationForPeriod computes the term-4 contribution of a single
// period's current exam list: for each room used, the number of distinct
// exam durations minus one, weighted.
func mixedDurationForPeriod(pd *model.ProblemData, exams []timetable.ExamRoom, weight int) int {
	byRoom := map[int]map[int]bool{}
	for _, er := range exams {
		set, ok := byRoom[er.Room]
		if !ok {
			set = map[int]bool{}
			byRoom[er.Room] = set
		}
		set[pd.Exams[er.Exam].Duration] = true
	}
	total := 0
	for _, set := range byRoom {
		if k := len(set); k > 1 {
			total += (k - 1) * weight
		}
	}
	return total
}
