// Package itcio reads ITC-2007 ".exam" benchmark files into ProblemData and
// writes a solved Timetable back out as a ".sol" file. Grounded on the
// reference ITC2007TestSet::load and its readExams/readPeriods/readRooms/
// readConstraints pipeline, reworked from a boost::regex-per-line reader
// into a section-at-a-time scanner built on bufio.Scanner and strconv.
package itcio

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/examsolve/examsolve/internal/model"
)

const dateTimeLayout = "02:01:2006 15:04:05"

// lineReader yields non-blank, trimmed lines with 1-based line numbers and a
// single line of lookahead, which the section-boundary scan in Parse needs
// to tell "another hard-constraint line" from "the next section header"
// without consuming it first.
type lineReader struct {
	sc         *bufio.Scanner
	lineNum    int
	pending    string
	hasPending bool
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24) // exam lines list every enrolled student
	return &lineReader{sc: sc}
}

func (lr *lineReader) next() (string, bool) {
	if lr.hasPending {
		lr.hasPending = false
		return lr.pending, true
	}
	for lr.sc.Scan() {
		lr.lineNum++
		line := strings.TrimSpace(lr.sc.Text())
		if line == "" {
			continue
		}
		return line, true
	}
	return "", false
}

func (lr *lineReader) peek() (string, bool) {
	if lr.hasPending {
		return lr.pending, true
	}
	line, ok := lr.next()
	if !ok {
		return "", false
	}
	lr.pending, lr.hasPending = line, true
	return line, true
}

// Parse reads a complete .exam benchmark file and returns a fully populated,
// ready-to-solve ProblemData: exams, periods, rooms, conflict matrix, exam
// graph, per-exam hard-constraint lists, and weightings.
func Parse(r io.Reader) (*model.ProblemData, error) {
	lr := newLineReader(r)

	exams, conflicts, err := parseExams(lr)
	if err != nil {
		return nil, err
	}
	periods, err := parsePeriods(lr)
	if err != nil {
		return nil, err
	}
	rooms, err := parseRooms(lr)
	if err != nil {
		return nil, err
	}
	hardConstraints, err := parseHardConstraints(lr, exams)
	if err != nil {
		return nil, err
	}
	weightings, err := parseWeightings(lr)
	if err != nil {
		return nil, err
	}

	pd := &model.ProblemData{
		Exams:           exams,
		Periods:         periods,
		Rooms:           rooms,
		Conflicts:       conflicts,
		HardConstraints: hardConstraints,
		Weightings:      weightings,
	}
	pd.Graph = model.BuildExamGraph(conflicts)
	return pd, nil
}

func parseSectionHeader(lr *lineReader, tag string) (int, error) {
	line, ok := lr.next()
	if !ok {
		return 0, newParseError(lr.lineNum, "expected [%s:N] section header, got EOF", tag)
	}
	prefix, suffix := "["+tag+":", "]"
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, suffix) {
		return 0, newParseError(lr.lineNum, "expected [%s:N] section header, got %q", tag, line)
	}
	n, err := strconv.Atoi(line[len(prefix) : len(line)-len(suffix)])
	if err != nil {
		return 0, newParseError(lr.lineNum, "malformed %s count: %v", tag, err)
	}
	return n, nil
}

func splitFields(line string) []string {
	raw := strings.Split(line, ",")
	out := make([]string, len(raw))
	for i, f := range raw {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

// parseExams reads the [Exams:N] section and derives the conflict matrix
// from shared student enrolment, grounded on buildStudentMap +
// buildConflictMatrix.
func parseExams(lr *lineReader) ([]*model.Exam, *model.ConflictMatrix, error) {
	n, err := parseSectionHeader(lr, "Exams")
	if err != nil {
		return nil, nil, err
	}

	exams := make([]*model.Exam, n)
	studentExams := map[int][]int{}
	for i := 0; i < n; i++ {
		line, ok := lr.next()
		if !ok {
			return nil, nil, newParseError(lr.lineNum, "expected exam %d, got EOF", i)
		}
		fields := splitFields(line)
		if len(fields) < 1 {
			return nil, nil, newParseError(lr.lineNum, "malformed exam line %q", line)
		}
		duration, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, newParseError(lr.lineNum, "malformed exam duration: %v", err)
		}
		students := 0
		for _, f := range fields[1:] {
			s, err := strconv.Atoi(f)
			if err != nil {
				return nil, nil, newParseError(lr.lineNum, "malformed student id: %v", err)
			}
			studentExams[s] = append(studentExams[s], i)
			students++
		}
		exams[i] = model.NewExam(i, students, duration)
	}

	conflicts := model.NewConflictMatrix(n)
	for _, list := range studentExams {
		for a := 0; a < len(list); a++ {
			for b := a + 1; b < len(list); b++ {
				conflicts.Add(list[a], list[b], 1)
			}
		}
	}
	return exams, conflicts, nil
}

// parsePeriods reads the [Periods:N] section, grounded on
// matchPeriodSequenceLine's "dd:mm:yyyy, hh:mm:ss, duration, penalty" shape.
func parsePeriods(lr *lineReader) ([]*model.Period, error) {
	n, err := parseSectionHeader(lr, "Periods")
	if err != nil {
		return nil, err
	}
	periods := make([]*model.Period, n)
	for i := 0; i < n; i++ {
		line, ok := lr.next()
		if !ok {
			return nil, newParseError(lr.lineNum, "expected period %d, got EOF", i)
		}
		fields := splitFields(line)
		if len(fields) != 4 {
			return nil, newParseError(lr.lineNum, "expected 4 comma-separated fields, got %q", line)
		}
		at, err := time.Parse(dateTimeLayout, fields[0]+" "+fields[1])
		if err != nil {
			return nil, newParseError(lr.lineNum, "malformed period date/time: %v", err)
		}
		duration, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, newParseError(lr.lineNum, "malformed period duration: %v", err)
		}
		penalty, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, newParseError(lr.lineNum, "malformed period penalty: %v", err)
		}
		periods[i] = &model.Period{ID: i, Date: at, Start: at, Duration: duration, Penalty: penalty}
	}
	return periods, nil
}

// parseRooms reads the [Rooms:N] section: "capacity, penalty" per line.
func parseRooms(lr *lineReader) ([]*model.Room, error) {
	n, err := parseSectionHeader(lr, "Rooms")
	if err != nil {
		return nil, err
	}
	rooms := make([]*model.Room, n)
	for i := 0; i < n; i++ {
		line, ok := lr.next()
		if !ok {
			return nil, newParseError(lr.lineNum, "expected room %d, got EOF", i)
		}
		fields := splitFields(line)
		if len(fields) != 2 {
			return nil, newParseError(lr.lineNum, "expected 2 comma-separated fields, got %q", line)
		}
		capacity, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, newParseError(lr.lineNum, "malformed room capacity: %v", err)
		}
		penalty, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, newParseError(lr.lineNum, "malformed room penalty: %v", err)
		}
		rooms[i] = &model.Room{ID: i, Capacity: capacity, Penalty: penalty}
	}
	return rooms, nil
}

// parseHardConstraints reads [PeriodHardConstraints] then
// [RoomHardConstraints], attaching each constraint to the exam(s) it names
// as well as returning the flat list.
func parseHardConstraints(lr *lineReader, exams []*model.Exam) ([]model.HardConstraint, error) {
	if err := expectSection(lr, "[PeriodHardConstraints]"); err != nil {
		return nil, err
	}
	var out []model.HardConstraint
	for {
		line, ok := lr.peek()
		if !ok || strings.HasPrefix(line, "[") {
			break
		}
		lr.next()
		fields := splitFields(line)
		if len(fields) != 3 {
			return nil, newParseError(lr.lineNum, "expected 'exam, TYPE, exam', got %q", line)
		}
		e1, err := examRef(fields[0], len(exams), lr.lineNum)
		if err != nil {
			return nil, err
		}
		e2, err := examRef(fields[2], len(exams), lr.lineNum)
		if err != nil {
			return nil, err
		}
		var hc model.HardConstraint
		switch fields[1] {
		case "AFTER":
			hc = model.After{E1: e1, E2: e2}
		case "EXAM_COINCIDENCE":
			hc = model.Coincidence{E1: e1, E2: e2}
		case "EXCLUSION":
			hc = model.Exclusion{E1: e1, E2: e2}
		default:
			continue // unrecognised constraint types are ignored
		}
		out = append(out, hc)
		exams[e1].PeriodConstraints = append(exams[e1].PeriodConstraints, hc)
		exams[e2].PeriodConstraints = append(exams[e2].PeriodConstraints, hc)
	}

	if err := expectSection(lr, "[RoomHardConstraints]"); err != nil {
		return nil, err
	}
	for {
		line, ok := lr.peek()
		if !ok || strings.HasPrefix(line, "[") {
			break
		}
		lr.next()
		fields := splitFields(line)
		if len(fields) != 2 || fields[1] != "ROOM_EXCLUSIVE" {
			return nil, newParseError(lr.lineNum, "expected 'exam, ROOM_EXCLUSIVE', got %q", line)
		}
		e, err := examRef(fields[0], len(exams), lr.lineNum)
		if err != nil {
			return nil, err
		}
		hc := model.RoomExclusive{Exam: e}
		out = append(out, hc)
		exams[e].RoomConstraints = append(exams[e].RoomConstraints, hc)
	}
	return out, nil
}

func examRef(field string, numExams, line int) (int, error) {
	e, err := strconv.Atoi(field)
	if err != nil {
		return 0, newParseError(line, "malformed exam reference %q: %v", field, err)
	}
	if e < 0 || e >= numExams {
		return 0, newParseError(line, "exam reference %d out of range [0,%d)", e, numExams)
	}
	return e, nil
}

func expectSection(lr *lineReader, tag string) error {
	line, ok := lr.next()
	if !ok || line != tag {
		return newParseError(lr.lineNum, "expected %s section header", tag)
	}
	return nil
}

// parseWeightings reads [InstitutionalWeightings]: TWOINAROW, TWOINADAY,
// PERIODSPREAD, NONMIXEDDURATIONS, FRONTLOAD.
func parseWeightings(lr *lineReader) (model.Weightings, error) {
	if err := expectSection(lr, "[InstitutionalWeightings]"); err != nil {
		return model.Weightings{}, err
	}
	var w model.Weightings
	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		fields := splitFields(line)
		if len(fields) < 2 {
			return model.Weightings{}, newParseError(lr.lineNum, "malformed weighting line %q", line)
		}
		switch fields[0] {
		case "TWOINAROW":
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return model.Weightings{}, newParseError(lr.lineNum, "malformed TWOINAROW: %v", err)
			}
			w.Row = v
		case "TWOINADAY":
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return model.Weightings{}, newParseError(lr.lineNum, "malformed TWOINADAY: %v", err)
			}
			w.Day = v
		case "PERIODSPREAD":
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return model.Weightings{}, newParseError(lr.lineNum, "malformed PERIODSPREAD: %v", err)
			}
			w.Spread = v
		case "NONMIXEDDURATIONS":
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return model.Weightings{}, newParseError(lr.lineNum, "malformed NONMIXEDDURATIONS: %v", err)
			}
			w.Mixed = v
		case "FRONTLOAD":
			if len(fields) != 4 {
				return model.Weightings{}, newParseError(lr.lineNum, "expected 'FRONTLOAD, n, m, w', got %q", line)
			}
			nLarge, err1 := strconv.Atoi(fields[1])
			nLast, err2 := strconv.Atoi(fields[2])
			weight, err3 := strconv.Atoi(fields[3])
			if err1 != nil || err2 != nil || err3 != nil {
				return model.Weightings{}, newParseError(lr.lineNum, "malformed FRONTLOAD line %q", line)
			}
			w.Front = model.FrontLoad{NLargeExams: nLarge, NLastPeriods: nLast, Weight: weight}
		default:
			// Unrecognised weighting keywords are ignored.
		}
	}
	return w, nil
}
