package solver

// greedySeed builds an initial solution by cheapest feasible insertion,
// visiting jobs in index order. Jobs with no feasible placement start out
// unassigned.
func greedySeed(p *Problem) *Solution {
	s := NewSolution(p)
	for job := range p.Jobs {
		best, _, ok := evaluateJob(p, s, job)
		if !ok {
			s.Unassigned[job] = struct{}{}
			continue
		}
		applyPlacement(p, s, job, best)
	}
	s.Cost = p.Cost(s)
	return s
}
