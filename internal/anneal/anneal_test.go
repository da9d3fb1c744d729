package anneal

import (
	"context"
	"testing"
	"time"

	"github.com/examsolve/examsolve/internal/cost"
	"github.com/examsolve/examsolve/internal/model"
	"github.com/examsolve/examsolve/internal/rng"
	"github.com/examsolve/examsolve/internal/timetable"
)

func fixture() *model.ProblemData {
	base := time.Date(2007, 1, 1, 9, 0, 0, 0, time.UTC)
	periods := make([]*model.Period, 6)
	for i := range periods {
		periods[i] = &model.Period{ID: i, Date: base.Add(time.Duration(i) * 24 * time.Hour), Duration: 120, Penalty: 0}
	}
	exams := make([]*model.Exam, 8)
	for i := range exams {
		exams[i] = model.NewExam(i, 5, 60)
	}
	pd := &model.ProblemData{
		Exams:   exams,
		Periods: periods,
		Rooms:   []*model.Room{{ID: 0, Capacity: 20}, {ID: 1, Capacity: 20}},
		Weightings: model.Weightings{
			Row: 1, Day: 1, Spread: 1, Mixed: 1,
			Front: model.FrontLoad{NLargeExams: 2, NLastPeriods: 2, Weight: 2},
		},
	}
	pd.Conflicts = model.NewConflictMatrix(8)
	for i := 0; i < 7; i += 2 {
		pd.Conflicts.Add(i, i+1, 1)
	}
	pd.Graph = model.BuildExamGraph(pd.Conflicts)
	return pd
}

func buildStart(pd *model.ProblemData) *timetable.Timetable {
	tt := timetable.New(pd)
	for e := 0; e < pd.NumExams(); e++ {
		tt.Schedule(e, e%pd.NumPeriods(), e%pd.NumRooms())
	}
	tt.SetFeasible(true)
	full := cost.Full(pd, tt)
	tt.SetCost(full.Total())
	return tt
}

func TestRunNeverWorsensBest(t *testing.T) {
	pd := fixture()
	start := buildStart(pd)
	startCost := start.Cost()

	sched := Schedule{TMax: 20, Alpha: 0.7, Span: 25, TMin: 1}
	best := Run(context.Background(), start, pd, sched, rng.New(11))

	if best.Cost() > startCost {
		t.Fatalf("best cost %d is worse than starting cost %d", best.Cost(), startCost)
	}
	if err := best.CheckInvariants(); err != nil {
		t.Fatalf("invariant violation in best: %v", err)
	}
	full := cost.Full(pd, best)
	if best.Cost() != full.Total() {
		t.Fatalf("cached cost %d does not match recomputed %d", best.Cost(), full.Total())
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	pd := fixture()
	start := buildStart(pd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched := Schedule{TMax: 20, Alpha: 0.9, Span: 1000, TMin: 0.1}
	best := Run(ctx, start, pd, sched, rng.New(3))

	if best.Cost() != start.Cost() {
		t.Fatalf("expected no progress after immediate cancellation, got cost %d vs start %d", best.Cost(), start.Cost())
	}
}
