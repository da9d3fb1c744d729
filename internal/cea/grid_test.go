package cea

import (
	"context"
	"testing"
	"time"

	"github.com/examsolve/examsolve/internal/anneal"
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

func seedFeasible(pd *model.ProblemData) func(*rng.Handle) (*timetable.Timetable, error) {
	return func(r *rng.Handle) (*timetable.Timetable, error) {
		tt := timetable.New(pd)
		order := make([]int, pd.NumExams())
		for i := range order {
			order[i] = i
		}
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for i, e := range order {
			tt.Schedule(e, i%pd.NumPeriods(), i%pd.NumRooms())
		}
		tt.SetFeasible(true)
		full := cost.Full(pd, tt)
		tt.SetCost(full.Total())
		return tt, nil
	}
}

func TestGridStepNeverRegressesBest(t *testing.T) {
	pd := fixture()
	sched := anneal.Schedule{TMax: 10, Alpha: 0.8, Span: 5, TMin: 1}
	r := rng.New(21)

	grid, err := NewGrid(pd, 4, 4, sched, 0.8, 0.2, seedFeasible(pd), r)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	bestBefore, _ := grid.Best().Evaluate()
	for gen := 0; gen < 5; gen++ {
		if err := grid.Step(context.Background(), r); err != nil {
			t.Fatalf("Step: %v", err)
		}
		bestAfter, _ := grid.Best().Evaluate()
		if bestAfter > bestBefore {
			t.Fatalf("generation %d: best cost regressed from %v to %v", gen, bestBefore, bestAfter)
		}
		bestBefore = bestAfter
	}

	if err := grid.Best().Timetable().CheckInvariants(); err != nil {
		t.Fatalf("invariant violation in best individual: %v", err)
	}
}

func TestRunRespectsGenerationBudget(t *testing.T) {
	pd := fixture()
	sched := anneal.Schedule{TMax: 5, Alpha: 0.9, Span: 3, TMin: 1}
	r := rng.New(7)

	grid, err := NewGrid(pd, 4, 4, sched, 0.8, 0.2, seedFeasible(pd), r)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	tt, err := Run(context.Background(), grid, 3, r)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := tt.CheckInvariants(); err != nil {
		t.Fatalf("invariant violation: %v", err)
	}
}
