package cea

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/examsolve/examsolve/internal/anneal"
	"github.com/examsolve/examsolve/internal/model"
	"github.com/examsolve/examsolve/internal/rng"
	"github.com/examsolve/examsolve/internal/runlog"
	"github.com/examsolve/examsolve/internal/timetable"
)

// Grid is the toroidal population: Rows x Cols cells, each holding one
// Genome, connected by a von-Neumann neighbourhood (north/south/east/west,
// wrapping at the edges) plus the cell itself.
type Grid struct {
	pd     *model.ProblemData
	sched  anneal.Schedule
	pm, pi float64

	rows, cols int
	cells      [][]*Genome
}

// NewGrid seeds a rows x cols population, one individual per cell, each
// built by calling seed with its own PRNG sub-stream so seeding is
// reproducible but independent across cells. pm and pi are the per-cell
// mutation and improvement probabilities (§4.6 steps 4-5).
func NewGrid(pd *model.ProblemData, rows, cols int, sched anneal.Schedule, pm, pi float64, seed func(*rng.Handle) (*timetable.Timetable, error), r *rng.Handle) (*Grid, error) {
	cells := make([][]*Genome, rows)
	for i := 0; i < rows; i++ {
		cells[i] = make([]*Genome, cols)
		for j := 0; j < cols; j++ {
			tt, err := seed(r.Sub())
			if err != nil {
				return nil, err
			}
			cells[i][j] = NewGenome(pd, tt, sched)
		}
	}
	return &Grid{pd: pd, sched: sched, pm: pm, pi: pi, rows: rows, cols: cols, cells: cells}, nil
}

// neighbours returns the (wrapping) von-Neumann neighbourhood of cell (i, j)
// plus the cell itself (§4.6 step 1): north, south, west, east, self.
func (g *Grid) neighbours(i, j int) [5]*Genome {
	north := g.cells[(i-1+g.rows)%g.rows][j]
	south := g.cells[(i+1)%g.rows][j]
	west := g.cells[i][(j-1+g.cols)%g.cols]
	east := g.cells[i][(j+1)%g.cols]
	self := g.cells[i][j]
	return [5]*Genome{north, south, west, east, self}
}

// Best returns the lowest-cost individual currently in the grid.
func (g *Grid) Best() *Genome {
	var best *Genome
	var bestCost float64
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			c, _ := g.cells[i][j].Evaluate()
			if best == nil || c < bestCost {
				best, bestCost = g.cells[i][j], c
			}
		}
	}
	return best
}

// Step advances the grid by one generation: every cell independently runs
// binary tournament over its own von-Neumann neighbourhood, with probability
// pm anneals a clone of the tournament winner, with probability pi anneals a
// clone of its own occupant, and keeps the better result only if it strictly
// improves on the cell's current occupant (§5: "an offspring replaces the incumbent only
// on strict improvement"). Rows are updated concurrently via errgroup, each
// with its own PRNG sub-stream, into a freshly allocated next-generation
// buffer so no row reads a value another row already overwrote (§5:
// "double-buffered").
func (g *Grid) Step(ctx context.Context, r *rng.Handle) error {
	next := make([][]*Genome, g.rows)
	eg, ctx := errgroup.WithContext(ctx)

	for i := 0; i < g.rows; i++ {
		i := i
		rowRNG := r.Sub()
		next[i] = make([]*Genome, g.cols)
		eg.Go(func() error {
			for j := 0; j < g.cols; j++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				next[i][j] = g.evolveCell(ctx, i, j, rowRNG)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	g.cells = next
	return nil
}

// evolveCell runs binary tournament selection over cell (i, j)'s
// neighbourhood (§4.6 step 2), then applies the two independent operators
// the spec names: with probability pm, mutation runs one full
// ThresholdAccepting trajectory on a clone of the tournament winner (step
// 4); with probability pi, improvement runs ThresholdAccepting on a clone of
// the cell's own incumbent, intensifying it regardless of how the
// tournament went (step 5). Crossover is disabled (step 3, p_c = 0).
// Whichever of {incumbent, mutated offspring, improved incumbent} has the
// lowest cost replaces the cell only on strict improvement (step 6).
func (g *Grid) evolveCell(ctx context.Context, i, j int, r *rng.Handle) *Genome {
	neighs := g.neighbours(i, j)
	a := neighs[r.Intn(len(neighs))]
	b := neighs[r.Intn(len(neighs))]

	costA, _ := a.Evaluate()
	costB, _ := b.Evaluate()
	winner := a
	if costB < costA {
		winner = b
	}

	current := g.cells[i][j]
	best := current
	bestCost, _ := best.Evaluate()

	if r.Float64() < g.pm {
		offspring := winner.Clone().(*Genome)
		offspring.Anneal(ctx, r)
		if c, _ := offspring.Evaluate(); c < bestCost {
			best, bestCost = offspring, c
		}
	}

	if r.Float64() < g.pi {
		improved := current.Clone().(*Genome)
		improved.Anneal(ctx, r)
		if c, _ := improved.Evaluate(); c < bestCost {
			best, bestCost = improved, c
		}
	}

	curCost, _ := current.Evaluate()
	if bestCost < curCost {
		return best
	}
	return current
}

// Run steps the grid for the given number of generations, or until ctx is
// cancelled, and returns the best Timetable found.
func Run(ctx context.Context, g *Grid, generations int, r *rng.Handle) (*timetable.Timetable, error) {
	log := runlog.FromContext(ctx)
	for gen := 0; gen < generations; gen++ {
		select {
		case <-ctx.Done():
			return g.Best().Timetable(), ctx.Err()
		default:
		}
		if err := g.Step(ctx, r); err != nil {
			return g.Best().Timetable(), err
		}
		bestCost, _ := g.Best().Evaluate()
		log.Infow("cellular EA generation finished", "generation", gen, "bestCost", bestCost)
	}
	return g.Best().Timetable(), nil
}
