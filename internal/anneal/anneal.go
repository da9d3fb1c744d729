// Package anneal implements Threshold Accepting (§5): a deterministic
// relative of simulated annealing that accepts any KempeMove neighbour whose
// cost increase does not exceed a threshold that decays geometrically over
// fixed-length rounds. Unlike the original CEA mutation operator it is
// grounded on (Mutation<EOT>, which accepts every feasible move
// unconditionally), Threshold Accepting rejects feasible moves that would
// worsen the solution beyond the current threshold — giving it the
// escape-local-optima behaviour the memetic CellularEA needs from its local
// search step.
package anneal

import (
	"context"

	"github.com/examsolve/examsolve/internal/kempe"
	"github.com/examsolve/examsolve/internal/model"
	"github.com/examsolve/examsolve/internal/rng"
	"github.com/examsolve/examsolve/internal/runlog"
	"github.com/examsolve/examsolve/internal/timetable"
)

// Schedule is a geometric cooling schedule: the threshold starts at TMax,
// is multiplied by Alpha after every Span accepted-or-rejected trials, and
// the search stops once the threshold drops below TMin.
type Schedule struct {
	TMax  float64
	Alpha float64
	Span  int
	TMin  float64
}

// Run drives Threshold Accepting to completion (or until ctx is cancelled),
// starting from start and returning the best feasible Timetable found. start
// is never mutated; the caller retains ownership of it.
func Run(ctx context.Context, start *timetable.Timetable, pd *model.ProblemData, sched Schedule, r *rng.Handle) *timetable.Timetable {
	log := runlog.FromContext(ctx)
	current := start.Clone()
	best := current.Clone()
	bestCost := current.Cost()

	for threshold := sched.TMax; threshold >= sched.TMin; threshold *= sched.Alpha {
		log.Debugw("threshold accepting round", "threshold", threshold, "bestCost", bestCost)
		for i := 0; i < sched.Span; i++ {
			select {
			case <-ctx.Done():
				return best
			default:
			}

			m := kempe.Build(current, pd, r)
			m.Evaluate(current)
			if !m.IsFeasibleNeighbour() {
				continue
			}

			delta := m.NeighborCost() - current.Cost()
			if float64(delta) > threshold {
				continue
			}
			m.Apply(current)

			if current.Cost() < bestCost {
				bestCost = current.Cost()
				best = current.Clone()
			}
		}
	}

	return best
}
