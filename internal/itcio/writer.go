package itcio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/examsolve/examsolve/internal/timetable"
)

// Write emits a solved Timetable as an ITC-2007 ".sol" file: "period, room"
// CRLF-separated lines, one per exam in ascending exam id order, with no
// trailing line terminator (§6). Every exam must be scheduled; Write returns
// an error rather than emit a malformed solution for one that isn't.
func Write(w io.Writer, tt *timetable.Timetable) error {
	bw := bufio.NewWriter(w)
	pd := tt.ProblemData()
	for e := 0; e < pd.NumExams(); e++ {
		if !tt.IsScheduled(e) {
			return fmt.Errorf("itcio: exam %d has no placement", e)
		}
		if e > 0 {
			if _, err := bw.WriteString("\r\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%d, %d", tt.PeriodOf(e), tt.RoomOf(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
