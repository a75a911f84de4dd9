// Package solver implements a ruin-and-recreate metaheuristic for vehicle
// routing problems with time windows, capacities, and skills.
package solver

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Config tunes the search. Zero values fall back to defaults.
type Config struct {
	TimeBudget     time.Duration
	MaxGenerations int
	Seed           int64
	InitTemp       float64
	Cooling        float64
	// InsertionWeights seeds the adaptive weights for greedy and regret-2
	// recreate selection.
	InsertionWeights []float64
	// Progress, when set, is called periodically with the generation count
	// and the best cost so far.
	Progress func(generation int, bestCost float64)
	// ProgressEvery controls how often Progress fires (generations).
	ProgressEvery int
}

// Metrics reports what the search did.
type Metrics struct {
	Generations           int
	Improvements          int
	AcceptedWorse         int
	BestCost              float64
	Seed                  int64
	InsertSelects         [2]int // greedy, regret
	FinalInsertionWeights [2]float64
	Snapshots             []WeightSnapshot
}

type WeightSnapshot struct {
	Generation int
	Insertion  [2]float64
}

// Solve runs the metaheuristic until the context is done, the time budget
// expires, or the generation cap is reached, and returns the best solution
// found.
func Solve(ctx context.Context, p *Problem, cfg Config) (*Solution, Metrics) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	curr := greedySeed(p)
	best := curr.Copy()
	m := Metrics{BestCost: best.Cost, Seed: seed}

	ruin := DefaultComposite()
	recreates := []Recreate{GreedyInsertion{}, RegretInsertion{}}
	insW := []float64{1, 1}
	if len(cfg.InsertionWeights) == 2 {
		insW = append([]float64(nil), cfg.InsertionWeights...)
	}
	temp := 1.0
	if cfg.InitTemp > 0 {
		temp = cfg.InitTemp
	}
	cool := 0.999
	if cfg.Cooling > 0 && cfg.Cooling < 1 {
		cool = cfg.Cooling
	}
	budget := cfg.TimeBudget
	if budget <= 0 && cfg.MaxGenerations <= 0 {
		budget = 5 * time.Second
	}
	var deadline time.Time
	if budget > 0 {
		deadline = time.Now().Add(budget)
	}
	progressEvery := cfg.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 100
	}
	const snapshotEvery = 50

	for {
		if ctx.Err() != nil {
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			break
		}
		if cfg.MaxGenerations > 0 && m.Generations >= cfg.MaxGenerations {
			break
		}
		m.Generations++

		cand := curr.Copy()
		removed := ruin.Run(rng, p, cand)
		for _, job := range removed {
			cand.Unassigned[job] = struct{}{}
		}
		// retry everything currently unassigned, not just this ruin's jobs
		pending := make([]int, 0, len(cand.Unassigned))
		for job := range cand.Unassigned {
			pending = append(pending, job)
		}
		sort.Ints(pending) // map order must not leak into the search
		ip := selectOp(insW, rng)
		m.InsertSelects[ip]++
		recreates[ip].Run(p, cand, pending)
		twoOptImprove(p, cand)
		orOptImprove(p, cand)
		cand.Cost = p.Cost(cand)

		delta := cand.Cost - curr.Cost
		switch {
		case cand.Cost < best.Cost:
			best = cand.Copy()
			curr = cand
			insW[ip] += 0.1
			m.Improvements++
			m.BestCost = best.Cost
		case delta < 0 || rng.Float64() < math.Exp(-delta/(temp+1e-9)):
			curr = cand
			insW[ip] += 0.01
			if delta > 0 {
				m.AcceptedWorse++
			}
		default:
			insW[ip] = math.Max(0.01, insW[ip]*0.999)
		}
		temp *= cool

		if m.Generations%snapshotEvery == 0 {
			m.Snapshots = append(m.Snapshots, WeightSnapshot{Generation: m.Generations, Insertion: [2]float64{insW[0], insW[1]}})
		}
		if cfg.Progress != nil && m.Generations%progressEvery == 0 {
			cfg.Progress(m.Generations, best.Cost)
		}
	}
	m.FinalInsertionWeights = [2]float64{insW[0], insW[1]}
	if cfg.Progress != nil {
		cfg.Progress(m.Generations, best.Cost)
	}
	return best, m
}

func selectOp(weights []float64, rng *rand.Rand) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return 0
	}
	r := rng.Float64() * sum
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}
