package solver

import (
	"math/rand"
	"sort"
)

// Ruin removes jobs from the solution and returns their indices so a
// recreate step can reinsert them.
type Ruin interface {
	Run(rng *rand.Rand, p *Problem, s *Solution) []int
}

// RandomJobRemoval removes up to Max random jobs.
type RandomJobRemoval struct {
	Max int
}

func (r RandomJobRemoval) Run(rng *rand.Rand, p *Problem, s *Solution) []int {
	max := r.Max
	if max <= 0 {
		max = 3
	}
	assigned := s.assignedJobs()
	if len(assigned) == 0 {
		return nil
	}
	k := 1 + rng.Intn(max)
	removed := []int{}
	for i := 0; i < k && len(assigned) > 0; i++ {
		j := rng.Intn(len(assigned))
		job := assigned[j]
		assigned = append(assigned[:j], assigned[j+1:]...)
		if t := s.tourOf(job); t != nil && t.RemoveJob(p, job) {
			removed = append(removed, job)
		}
	}
	return removed
}

// RandomRouteRemoval clears between Min and Max random non-empty routes.
type RandomRouteRemoval struct {
	Min, Max int
}

func (r RandomRouteRemoval) Run(rng *rand.Rand, p *Problem, s *Solution) []int {
	min, max := r.Min, r.Max
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min + 2
	}
	busy := []int{}
	for i, t := range s.Tours {
		if t.HasJobs() {
			busy = append(busy, i)
		}
	}
	if len(busy) == 0 {
		return nil
	}
	k := min + rng.Intn(max-min+1)
	if k > len(busy) {
		k = len(busy)
	}
	rng.Shuffle(len(busy), func(i, j int) { busy[i], busy[j] = busy[j], busy[i] })
	removed := []int{}
	for _, vi := range busy[:k] {
		removed = append(removed, s.Tours[vi].Clear()...)
	}
	return removed
}

// AdjustedStringRemoval removes geographically contiguous activity strings
// from the routes nearest to a random seed activity, following the
// slack-induction-by-string-removal scheme.
type AdjustedStringRemoval struct {
	// MaxStringLen bounds the length of a removed string.
	MaxStringLen int
	// MaxStrings bounds how many routes are ruined.
	MaxStrings int
}

func (r AdjustedStringRemoval) Run(rng *rand.Rand, p *Problem, s *Solution) []int {
	lmax := r.MaxStringLen
	if lmax <= 0 {
		lmax = 10
	}
	smax := r.MaxStrings
	if smax <= 0 {
		smax = 3
	}
	assigned := s.assignedJobs()
	if len(assigned) == 0 {
		return nil
	}
	seedJob := assigned[rng.Intn(len(assigned))]
	seedLoc := p.Nodes[p.Jobs[seedJob].Nodes[0]].Loc

	// order non-empty tours by the distance of their closest activity to
	// the seed
	type ranked struct {
		tour int
		dist float64
	}
	order := []ranked{}
	for vi, t := range s.Tours {
		if !t.HasJobs() {
			continue
		}
		best := -1.0
		for _, ni := range t.Activities() {
			d := p.Distance(seedLoc, p.Nodes[ni].Loc)
			if best < 0 || d < best {
				best = d
			}
		}
		order = append(order, ranked{tour: vi, dist: best})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].dist < order[j].dist })

	strings := 1 + rng.Intn(smax)
	removed := []int{}
	for _, rk := range order {
		if strings == 0 {
			break
		}
		strings--
		t := s.Tours[rk.tour]
		// closest activity to the seed anchors the string
		anchor, bestD := 0, -1.0
		for i, ni := range t.Activities() {
			d := p.Distance(seedLoc, p.Nodes[ni].Loc)
			if bestD < 0 || d < bestD {
				anchor, bestD = i, d
			}
		}
		l := 1 + rng.Intn(lmax)
		if l > t.Len() {
			l = t.Len()
		}
		start := anchor - rng.Intn(l)
		if start < 0 {
			start = 0
		}
		end := start + l
		if end > t.Len() {
			end = t.Len()
		}
		jobs := []int{}
		seen := map[int]struct{}{}
		for _, ni := range t.Activities()[start:end] {
			job := p.Nodes[ni].Job
			if _, dup := seen[job]; !dup {
				seen[job] = struct{}{}
				jobs = append(jobs, job)
			}
		}
		for _, job := range jobs {
			if t.RemoveJob(p, job) {
				removed = append(removed, job)
			}
		}
	}
	return removed
}

// weightedRuin pairs a ruin with its run probability.
type weightedRuin struct {
	ruin Ruin
	prob float64
}

// CompositeRuin runs each ruin with its probability and merges the
// removed jobs.
type CompositeRuin struct {
	ruins []weightedRuin
}

// DefaultComposite mirrors the canonical operator mix: adjusted string
// removal nearly always, random route removal rarely, random job removal
// as a light diversifier.
func DefaultComposite() *CompositeRuin {
	return &CompositeRuin{ruins: []weightedRuin{
		{AdjustedStringRemoval{}, 1.0},
		{RandomRouteRemoval{}, 0.01},
		{RandomJobRemoval{}, 0.1},
	}}
}

func (c *CompositeRuin) Run(rng *rand.Rand, p *Problem, s *Solution) []int {
	removed := []int{}
	seen := map[int]struct{}{}
	for _, wr := range c.ruins {
		if rng.Float64() >= wr.prob {
			continue
		}
		for _, job := range wr.ruin.Run(rng, p, s) {
			if _, dup := seen[job]; !dup {
				seen[job] = struct{}{}
				removed = append(removed, job)
			}
		}
	}
	// guarantee progress even when every probabilistic ruin was skipped
	if len(removed) == 0 {
		removed = RandomJobRemoval{}.Run(rng, p, s)
	}
	return removed
}
