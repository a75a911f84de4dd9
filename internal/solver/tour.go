package solver

import "sort"

// Tour is an ordered container of job activities for one vehicle. It keeps
// the set of jobs in sync with the activity list: removing a job removes
// every activity that belongs to it. The vehicle's shift start and end act
// as implicit terminals; a vehicle without an end location runs an open
// tour.
type Tour struct {
	Vehicle int
	nodes   []int
	jobs    map[int]struct{}
}

func NewTour(vehicle int) *Tour {
	return &Tour{Vehicle: vehicle, jobs: map[int]struct{}{}}
}

// Insert places node index ni at position pos.
func (t *Tour) Insert(p *Problem, pos, ni int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(t.nodes) {
		pos = len(t.nodes)
	}
	t.nodes = append(t.nodes, 0)
	copy(t.nodes[pos+1:], t.nodes[pos:])
	t.nodes[pos] = ni
	t.jobs[p.Nodes[ni].Job] = struct{}{}
}

// Append adds node index ni to the end of the tour.
func (t *Tour) Append(p *Problem, ni int) {
	t.Insert(p, len(t.nodes), ni)
}

// RemoveJob removes every activity of the job and reports whether the job
// was present.
func (t *Tour) RemoveJob(p *Problem, job int) bool {
	if _, ok := t.jobs[job]; !ok {
		return false
	}
	kept := t.nodes[:0]
	for _, ni := range t.nodes {
		if p.Nodes[ni].Job != job {
			kept = append(kept, ni)
		}
	}
	t.nodes = kept
	delete(t.jobs, job)
	return true
}

// Contains reports whether the job has activities in this tour.
func (t *Tour) Contains(job int) bool {
	_, ok := t.jobs[job]
	return ok
}

// Index returns the position of the first activity of the job, or -1.
func (t *Tour) Index(p *Problem, job int) int {
	for i, ni := range t.nodes {
		if p.Nodes[ni].Job == job {
			return i
		}
	}
	return -1
}

func (t *Tour) Get(i int) int { return t.nodes[i] }

// Activities returns the activity node indices in visit order.
func (t *Tour) Activities() []int { return t.nodes }

func (t *Tour) Len() int { return len(t.nodes) }

func (t *Tour) JobCount() int { return len(t.jobs) }

func (t *Tour) HasJobs() bool { return len(t.jobs) > 0 }

// Jobs returns the job indices present in the tour, sorted so callers that
// feed them to a seeded RNG stay deterministic.
func (t *Tour) Jobs() []int {
	out := make([]int, 0, len(t.jobs))
	for j := range t.jobs {
		out = append(out, j)
	}
	sort.Ints(out)
	return out
}

// Clear removes all activities and returns the removed job indices.
func (t *Tour) Clear() []int {
	out := t.Jobs()
	t.nodes = t.nodes[:0]
	t.jobs = map[int]struct{}{}
	return out
}

// Copy deep-copies the tour.
func (t *Tour) Copy() *Tour {
	c := &Tour{Vehicle: t.Vehicle, nodes: append([]int(nil), t.nodes...), jobs: make(map[int]struct{}, len(t.jobs))}
	for j := range t.jobs {
		c.jobs[j] = struct{}{}
	}
	return c
}

// validOrder checks that multi-node jobs keep their node sequence within
// the tour (pickup before delivery).
func (t *Tour) validOrder(p *Problem) bool {
	lastSeq := map[int]int{}
	for _, ni := range t.nodes {
		nd := p.Nodes[ni]
		if prev, ok := lastSeq[nd.Job]; ok && nd.Seq <= prev {
			return false
		}
		lastSeq[nd.Job] = nd.Seq
	}
	for job := range t.jobs {
		want := len(p.Jobs[job].Nodes) - 1
		if got, ok := lastSeq[job]; !ok || got != want {
			return false
		}
	}
	return true
}

// Solution is a set of tours, one per vehicle, plus unassigned jobs.
type Solution struct {
	Tours      []*Tour
	Unassigned map[int]struct{}
	Cost       float64
}

func NewSolution(p *Problem) *Solution {
	s := &Solution{Tours: make([]*Tour, len(p.Vehicles)), Unassigned: map[int]struct{}{}}
	for i := range p.Vehicles {
		s.Tours[i] = NewTour(i)
	}
	return s
}

func (s *Solution) Copy() *Solution {
	c := &Solution{Tours: make([]*Tour, len(s.Tours)), Unassigned: make(map[int]struct{}, len(s.Unassigned)), Cost: s.Cost}
	for i, t := range s.Tours {
		c.Tours[i] = t.Copy()
	}
	for j := range s.Unassigned {
		c.Unassigned[j] = struct{}{}
	}
	return c
}

// tourOf returns the tour containing the job, or nil.
func (s *Solution) tourOf(job int) *Tour {
	for _, t := range s.Tours {
		if t.Contains(job) {
			return t
		}
	}
	return nil
}

// assignedJobs returns the jobs currently placed in any tour.
func (s *Solution) assignedJobs() []int {
	out := []int{}
	for _, t := range s.Tours {
		out = append(out, t.Jobs()...)
	}
	return out
}
