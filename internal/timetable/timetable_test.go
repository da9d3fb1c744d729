package timetable

import (
	"testing"
	"time"

	"github.com/examsolve/examsolve/internal/model"
)

func fixture() *model.ProblemData {
	pd := &model.ProblemData{
		Exams: []*model.Exam{
			model.NewExam(0, 10, 60),
			model.NewExam(1, 5, 60),
		},
		Periods: []*model.Period{
			{ID: 0, Date: time.Date(2007, 1, 1, 9, 0, 0, 0, time.UTC), Duration: 120, Penalty: 0},
			{ID: 1, Date: time.Date(2007, 1, 1, 11, 0, 0, 0, time.UTC), Duration: 120, Penalty: 0},
		},
		Rooms: []*model.Room{
			{ID: 0, Capacity: 20, Penalty: 0},
		},
	}
	pd.Conflicts = model.NewConflictMatrix(2)
	pd.Conflicts.Add(0, 1, 3)
	pd.Graph = model.BuildExamGraph(pd.Conflicts)
	return pd
}

func TestScheduleUnschedule(t *testing.T) {
	pd := fixture()
	tt := New(pd)

	if tt.IsScheduled(0) {
		t.Fatal("exam 0 should start unscheduled")
	}

	tt.Schedule(0, 0, 0)
	if !tt.IsScheduled(0) {
		t.Fatal("exam 0 should be scheduled")
	}
	if tt.PeriodOf(0) != 0 || tt.RoomOf(0) != 0 {
		t.Fatal("wrong placement")
	}
	if tt.SeatsUsed(0, 0) != 10 {
		t.Fatalf("expected 10 seats used, got %d", tt.SeatsUsed(0, 0))
	}
	if tt.ExamsIn(0, 0) != 1 {
		t.Fatalf("expected 1 exam in room, got %d", tt.ExamsIn(0, 0))
	}

	tt.Unschedule(0)
	if tt.IsScheduled(0) {
		t.Fatal("exam 0 should be unscheduled again")
	}
	if tt.SeatsUsed(0, 0) != 0 {
		t.Fatalf("expected 0 seats used after unschedule, got %d", tt.SeatsUsed(0, 0))
	}
}

func TestReplacePeriod(t *testing.T) {
	pd := fixture()
	tt := New(pd)
	tt.Schedule(0, 0, 0)

	tt.ReplacePeriod(0, []ExamRoom{{Exam: 1, Room: 0}})

	if tt.IsScheduled(0) {
		t.Fatal("exam 0 should have been evicted from period 0")
	}
	if !tt.IsScheduled(1) || tt.PeriodOf(1) != 0 {
		t.Fatal("exam 1 should now be in period 0")
	}
}

func TestRoomForCapacity(t *testing.T) {
	pd := fixture()
	pd.Rooms[0].Capacity = 12
	tt := New(pd)
	tt.Schedule(0, 0, 0) // uses 10 seats, leaving 2

	if _, ok := tt.RoomFor(1, 0, func(n int) int { return 0 }); ok {
		t.Fatal("exam 1 (5 students) should not fit in remaining 2 seats")
	}
}

func TestRoomExclusiveRejectsSharing(t *testing.T) {
	pd := fixture()
	pd.Exams[0].RoomConstraints = append(pd.Exams[0].RoomConstraints, model.RoomExclusive{Exam: 0})
	pd.Rooms = append(pd.Rooms, &model.Room{ID: 1, Capacity: 20})

	tt := New(pd)
	tt.Schedule(0, 0, 0)

	room, ok := tt.RoomFor(1, 0, func(n int) int { return 0 })
	if !ok || room == 0 {
		t.Fatalf("room 0 is exclusive to exam 0 and must not be offered; want free room 1, got room %d ok=%v", room, ok)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	pd := fixture()
	tt := New(pd)
	tt.Schedule(0, 0, 0)
	tt.SetFeasible(true)
	tt.SetCost(42)

	clone := tt.Clone()
	clone.Unschedule(0)
	clone.SetCost(7)

	if !tt.IsScheduled(0) {
		t.Fatal("mutating clone must not affect original")
	}
	if tt.Cost() != 42 {
		t.Fatal("mutating clone's cost must not affect original's cost")
	}
}

func TestCheckInvariantsDetectsConflict(t *testing.T) {
	pd := fixture()
	tt := New(pd)
	tt.Schedule(0, 0, 0)
	tt.Schedule(1, 0, 0)

	if err := tt.CheckInvariants(); err == nil {
		t.Fatal("expected invariant violation for two conflicting exams sharing a period")
	}
}
