package solver

import "math"

// placement is a concrete feasible insertion of a job into a tour.
type placement struct {
	tour      int
	positions []int // one per job node, after prior insertions
	delta     float64
}

// evaluateJob finds the cheapest and second cheapest feasible placements of
// a job across all tours. Multi-node jobs are inserted in node order, each
// node strictly after the previous one.
func evaluateJob(p *Problem, s *Solution, job int) (best, second placement, ok bool) {
	best.delta = math.Inf(1)
	second.delta = math.Inf(1)
	j := p.Jobs[job]
	for vi, t := range s.Tours {
		if !vehicleCanServe(p.Vehicles[vi], j) {
			continue
		}
		base := 0.0
		if sc, feasible := p.ScheduleTour(t); feasible {
			base = p.TourCost(t, sc)
		} else {
			continue
		}
		for _, pos := range candidatePositions(p, t, j) {
			cand := t.Copy()
			for k, ni := range j.Nodes {
				cand.Insert(p, pos[k], ni)
			}
			if !cand.validOrder(p) {
				continue
			}
			sc, feasible := p.ScheduleTour(cand)
			if !feasible {
				continue
			}
			delta := p.TourCost(cand, sc) - base
			pl := placement{tour: vi, positions: pos, delta: delta}
			if delta < best.delta {
				second = best
				best = pl
			} else if delta < second.delta {
				second = pl
			}
		}
	}
	return best, second, !math.IsInf(best.delta, 1)
}

// candidatePositions enumerates insertion position tuples for the job's
// nodes. Positions are expressed against the tour as it grows, so a
// two-node job with tuple (i, k) gets its first node at i and its second
// at k where k > i.
func candidatePositions(p *Problem, t *Tour, j JobRef) [][]int {
	n := t.Len()
	switch len(j.Nodes) {
	case 1:
		out := make([][]int, 0, n+1)
		for i := 0; i <= n; i++ {
			out = append(out, []int{i})
		}
		return out
	case 2:
		out := make([][]int, 0, (n+1)*(n+2)/2)
		for i := 0; i <= n; i++ {
			for k := i + 1; k <= n+1; k++ {
				out = append(out, []int{i, k})
			}
		}
		return out
	default:
		// jobs with more than two legs are inserted back to back
		pos := make([]int, len(j.Nodes))
		out := make([][]int, 0, n+1)
		for i := 0; i <= n; i++ {
			tuple := make([]int, len(pos))
			for k := range tuple {
				tuple[k] = i + k
			}
			out = append(out, tuple)
		}
		return out
	}
}

// applyPlacement inserts the job into the solution at the placement.
func applyPlacement(p *Problem, s *Solution, job int, pl placement) {
	t := s.Tours[pl.tour]
	for k, ni := range p.Jobs[job].Nodes {
		t.Insert(p, pl.positions[k], ni)
	}
	delete(s.Unassigned, job)
}
