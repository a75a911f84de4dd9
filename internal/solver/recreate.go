package solver

// Recreate reinserts removed jobs into the solution. Jobs without a
// feasible placement are recorded as unassigned.
type Recreate interface {
	Run(p *Problem, s *Solution, jobs []int)
}

// GreedyInsertion always takes the globally cheapest feasible placement.
type GreedyInsertion struct{}

func (GreedyInsertion) Run(p *Problem, s *Solution, jobs []int) {
	pending := append([]int(nil), jobs...)
	for len(pending) > 0 {
		bestJob := -1
		var bestPl placement
		for i, job := range pending {
			pl, _, ok := evaluateJob(p, s, job)
			if !ok {
				continue
			}
			if bestJob == -1 || pl.delta < bestPl.delta {
				bestJob, bestPl = i, pl
			}
		}
		if bestJob == -1 {
			for _, job := range pending {
				s.Unassigned[job] = struct{}{}
			}
			return
		}
		applyPlacement(p, s, pending[bestJob], bestPl)
		pending = append(pending[:bestJob], pending[bestJob+1:]...)
	}
}

// RegretInsertion picks the job with the largest regret-2 value, the gap
// between its best and second best placements, so jobs that are about to
// lose their good spot go first.
type RegretInsertion struct{}

func (RegretInsertion) Run(p *Problem, s *Solution, jobs []int) {
	pending := append([]int(nil), jobs...)
	for len(pending) > 0 {
		bestJob := -1
		var bestPl placement
		bestRegret := -1.0
		for i, job := range pending {
			pl, second, ok := evaluateJob(p, s, job)
			if !ok {
				continue
			}
			regret := second.delta - pl.delta
			if regret < 0 {
				regret = 0
			}
			if bestJob == -1 || regret > bestRegret {
				bestJob, bestPl, bestRegret = i, pl, regret
			}
		}
		if bestJob == -1 {
			for _, job := range pending {
				s.Unassigned[job] = struct{}{}
			}
			return
		}
		applyPlacement(p, s, pending[bestJob], bestPl)
		pending = append(pending[:bestJob], pending[bestJob+1:]...)
	}
}
