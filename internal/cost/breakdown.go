// Package cost implements full and incremental evaluation of the seven
// ITC-2007 soft-constraint terms (§4.2), following the canonical
// eoChromosome::computeCost definitions (the front-load-bearing variant;
// §9 open question (ii)).
package cost

// Breakdown names the seven soft-cost sub-totals plus their weighted sum,
// for diagnostics and logging.
type Breakdown struct {
	Row    int // two exams in a row, weighted
	Day    int // two exams in a day, weighted
	Spread int // period spread, unweighted raw count
	Mixed  int // mixed durations, weighted
	Front  int // front load, weighted
	Room   int // soft room penalty
	Period int // soft period penalty
}

// Total sums the seven sub-totals into the single scalar objective.
func (b Breakdown) Total() int {
	return b.Row + b.Day + b.Spread + b.Mixed + b.Front + b.Room + b.Period
}
