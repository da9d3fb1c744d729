package itcio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/examsolve/examsolve/internal/model"
	"github.com/examsolve/examsolve/internal/timetable"
)

const sample = `
[Exams:4]
60, 1, 2
90, 2, 3
60, 4
120, 1, 4

[Periods:3]
01:06:2007, 09:00:00, 180, 0
01:06:2007, 14:00:00, 180, 0
02:06:2007, 09:00:00, 180, 5

[Rooms:2]
50, 0
30, 1

[PeriodHardConstraints]
0, AFTER, 1
2, EXCLUSION, 3

[RoomHardConstraints]
1, ROOM_EXCLUSIVE

[InstitutionalWeightings]
TWOINAROW, 7
TWOINADAY, 5
PERIODSPREAD, 3
NONMIXEDDURATIONS, 10
FRONTLOAD, 2, 2, 18
`

func TestParseFullFile(t *testing.T) {
	pd, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pd.NumExams() != 4 {
		t.Fatalf("NumExams = %d, want 4", pd.NumExams())
	}
	if pd.NumPeriods() != 3 {
		t.Fatalf("NumPeriods = %d, want 3", pd.NumPeriods())
	}
	if pd.NumRooms() != 2 {
		t.Fatalf("NumRooms = %d, want 2", pd.NumRooms())
	}
	if pd.Exams[0].Students != 2 {
		t.Fatalf("exam 0 students = %d, want 2", pd.Exams[0].Students)
	}
	if pd.Exams[1].Duration != 90 {
		t.Fatalf("exam 1 duration = %d, want 90", pd.Exams[1].Duration)
	}

	// Students 2 and 4 each sit two exams, so exams (0,1) share student 2 and
	// exams (2,3) share student 4.
	if !pd.Conflicts.Conflicts(0, 1) {
		t.Fatalf("expected exams 0,1 to conflict via shared student 2")
	}
	if !pd.Conflicts.Conflicts(2, 3) {
		t.Fatalf("expected exams 2,3 to conflict via shared student 4")
	}
	if pd.Conflicts.Conflicts(0, 2) {
		t.Fatalf("exams 0,2 share no student, should not conflict")
	}

	if len(pd.HardConstraints) != 3 {
		t.Fatalf("len(HardConstraints) = %d, want 3", len(pd.HardConstraints))
	}
	if len(pd.Exams[0].PeriodConstraints) != 1 {
		t.Fatalf("exam 0 should carry its AFTER constraint")
	}
	if len(pd.Exams[1].RoomConstraints) != 1 {
		t.Fatalf("exam 1 should carry its ROOM_EXCLUSIVE constraint")
	}

	if pd.Weightings.Row != 7 || pd.Weightings.Day != 5 || pd.Weightings.Spread != 3 || pd.Weightings.Mixed != 10 {
		t.Fatalf("unexpected weightings: %+v", pd.Weightings)
	}
	if pd.Weightings.Front != (model.FrontLoad{NLargeExams: 2, NLastPeriods: 2, Weight: 18}) {
		t.Fatalf("unexpected front-load weighting: %+v", pd.Weightings.Front)
	}

	if pd.Graph == nil {
		t.Fatalf("expected a non-nil exam graph")
	}
}

func TestParseRejectsMalformedHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("[Exhibits:4]\n"))
	if err == nil {
		t.Fatalf("expected an error for an unrecognised section header")
	}
	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("expected a *ParseError, got %T", err)
	}
}

func TestParseRejectsOutOfRangeExamReference(t *testing.T) {
	bad := `
[Exams:2]
60, 1
60, 2

[Periods:1]
01:06:2007, 09:00:00, 180, 0

[Rooms:1]
50, 0

[PeriodHardConstraints]
0, AFTER, 9

[RoomHardConstraints]

[InstitutionalWeightings]
TWOINAROW, 0
TWOINADAY, 0
PERIODSPREAD, 0
NONMIXEDDURATIONS, 0
FRONTLOAD, 0, 0, 0
`
	_, err := Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatalf("expected an error for an out-of-range exam reference")
	}
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

func TestWriteEmitsOnePerExamInOrder(t *testing.T) {
	pd, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tt := timetable.New(pd)
	tt.Schedule(0, 1, 0)
	tt.Schedule(1, 0, 0)
	tt.Schedule(2, 2, 1)
	tt.Schedule(3, 0, 1)

	var buf bytes.Buffer
	if err := Write(&buf, tt); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "1, 0\r\n0, 0\r\n2, 1\r\n0, 1"
	if buf.String() != want {
		t.Fatalf("Write output = %q, want %q", buf.String(), want)
	}
}

func TestWriteRejectsUnscheduledExam(t *testing.T) {
	pd, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tt := timetable.New(pd)
	tt.Schedule(0, 0, 0)
	var buf bytes.Buffer
	if err := Write(&buf, tt); err == nil {
		t.Fatalf("expected an error when not every exam is scheduled")
	}
}
