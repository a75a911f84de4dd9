package solver

import (
	"sort"
	"testing"
)

// pairProblem builds a two-job problem where job 1 is a pickup/delivery
// pair and job 0 a plain delivery.
func pairProblem() *Problem {
	p := &Problem{
		Planar:   true,
		SpeedKmh: 3.6, // 1 unit/sec
		Nodes: []Node{
			{JobID: "d1", Kind: "delivery", Loc: [2]float64{0, 10}, Demand: []int{1}, Job: 0, Seq: 0, LoadsAtStart: true},
			{JobID: "p2", Kind: "pickup", Loc: [2]float64{0, 20}, Demand: []int{2}, Job: 1, Seq: 0},
			{JobID: "p2", Kind: "delivery", Loc: [2]float64{0, 30}, Demand: []int{2}, Job: 1, Seq: 1},
		},
		Jobs: []JobRef{
			{ID: "d1", Nodes: []int{0}},
			{ID: "p2", Nodes: []int{1, 2}},
		},
		Vehicles: []Vehicle{
			{ID: "v1", TypeID: "t", Capacity: []int{5}, Start: [2]float64{0, 0}},
		},
	}
	return p
}

func TestTourInsertRemove(t *testing.T) {
	p := pairProblem()
	tr := NewTour(0)
	tr.Append(p, 0)
	tr.Append(p, 1)
	tr.Append(p, 2)
	if tr.Len() != 3 || tr.JobCount() != 2 {
		t.Fatalf("len=%d jobs=%d", tr.Len(), tr.JobCount())
	}
	if !tr.Contains(1) || tr.Index(p, 1) != 1 {
		t.Fatalf("job 1 lookup failed")
	}
	// removing the paired job removes both of its activities
	if !tr.RemoveJob(p, 1) {
		t.Fatal("RemoveJob returned false")
	}
	if tr.Len() != 1 || tr.Contains(1) {
		t.Fatalf("pair removal left %d activities", tr.Len())
	}
	if tr.RemoveJob(p, 1) {
		t.Fatal("second removal should report absence")
	}
}

func TestTourValidOrder(t *testing.T) {
	p := pairProblem()
	tr := NewTour(0)
	tr.Append(p, 2) // delivery before pickup
	tr.Append(p, 1)
	if tr.validOrder(p) {
		t.Fatal("delivery before pickup should be invalid")
	}
	tr = NewTour(0)
	tr.Append(p, 1)
	tr.Append(p, 2)
	if !tr.validOrder(p) {
		t.Fatal("pickup then delivery should be valid")
	}
	// a lone pickup without its delivery is incomplete
	tr = NewTour(0)
	tr.Append(p, 1)
	if tr.validOrder(p) {
		t.Fatal("incomplete pair should be invalid")
	}
}

func TestTourCopyIsDeep(t *testing.T) {
	p := pairProblem()
	tr := NewTour(0)
	tr.Append(p, 0)
	cp := tr.Copy()
	cp.Append(p, 1)
	if tr.Len() != 1 || cp.Len() != 2 {
		t.Fatalf("copy aliases original: %d/%d", tr.Len(), cp.Len())
	}
}

func TestTourClear(t *testing.T) {
	p := pairProblem()
	tr := NewTour(0)
	tr.Append(p, 0)
	tr.Append(p, 1)
	tr.Append(p, 2)
	jobs := tr.Clear()
	sort.Ints(jobs)
	if len(jobs) != 2 || jobs[0] != 0 || jobs[1] != 1 {
		t.Fatalf("cleared jobs: %v", jobs)
	}
	if tr.HasJobs() || tr.Len() != 0 {
		t.Fatal("tour not empty after Clear")
	}
}

func TestScheduleTourTimesAndLoads(t *testing.T) {
	p := pairProblem()
	tr := NewTour(0)
	tr.Append(p, 0)
	tr.Append(p, 1)
	tr.Append(p, 2)
	sc, ok := p.ScheduleTour(tr)
	if !ok {
		t.Fatal("schedule infeasible")
	}
	// distances: 10 + 10 + 10 units at 1 unit/sec
	if sc.DistM != 30 || sc.DriveSec != 30 {
		t.Fatalf("dist=%v drive=%v", sc.DistM, sc.DriveSec)
	}
	// load: starts with 1 (delivery on board), drops to 0, +2, -2
	if sc.Loads[0][0] != 0 || sc.Loads[1][0] != 2 || sc.Loads[2][0] != 0 {
		t.Fatalf("loads: %v", sc.Loads)
	}
}

func TestScheduleTourCapacityViolation(t *testing.T) {
	p := pairProblem()
	p.Vehicles[0].Capacity = []int{1}
	tr := NewTour(0)
	tr.Append(p, 1) // pickup of 2 exceeds capacity 1
	tr.Append(p, 2)
	if _, ok := p.ScheduleTour(tr); ok {
		t.Fatal("expected capacity violation")
	}
}

func TestScheduleTourWindowViolation(t *testing.T) {
	p := pairProblem()
	p.Nodes[0].Windows = []Window{{Start: 0, End: 5}} // arrival at t=10
	tr := NewTour(0)
	tr.Append(p, 0)
	if _, ok := p.ScheduleTour(tr); ok {
		t.Fatal("expected window violation")
	}
}

func TestScheduleTourWaitsForWindow(t *testing.T) {
	p := pairProblem()
	p.Nodes[0].Windows = []Window{{Start: 100, End: 200}}
	tr := NewTour(0)
	tr.Append(p, 0)
	sc, ok := p.ScheduleTour(tr)
	if !ok {
		t.Fatal("schedule infeasible")
	}
	if sc.WaitSec != 90 {
		t.Fatalf("wait: got %v, want 90", sc.WaitSec)
	}
	if sc.Departures[0] != 100 {
		t.Fatalf("departure: got %v, want 100", sc.Departures[0])
	}
}
