package solver

import (
	"context"
	"strings"
	"testing"

	"vrpsolve/internal/format/pragmatic"
)

const berlinProblem = `{
  "plan": {
    "jobs": [
      {
        "id": "job1",
        "deliveries": [
          {
            "places": [
              {
                "location": {"lat": 52.52599, "lng": 13.45413},
                "duration": 240,
                "times": [["2019-07-04T09:00:00Z", "2019-07-04T18:00:00Z"]]
              }
            ],
            "demand": [1]
          }
        ]
      },
      {
        "id": "job2",
        "pickups": [
          {
            "places": [
              {"location": {"lat": 52.5165, "lng": 13.3808}, "duration": 120}
            ],
            "demand": [1]
          }
        ],
        "deliveries": [
          {
            "places": [
              {"location": {"lat": 52.5447, "lng": 13.4106}, "duration": 120}
            ],
            "demand": [1]
          }
        ]
      }
    ]
  },
  "fleet": {
    "vehicles": [
      {
        "typeId": "vehicle",
        "vehicleIds": ["vehicle_1"],
        "costs": {"fixed": 22.0, "distance": 0.0002, "time": 0.004806},
        "shifts": [
          {
            "start": {"earliest": "2019-07-04T09:00:00Z", "location": {"lat": 52.5316, "lng": 13.3884}},
            "end": {"latest": "2019-07-04T18:00:00Z", "location": {"lat": 52.5316, "lng": 13.3884}}
          }
        ],
        "capacity": [10]
      }
    ]
  }
}`

func berlinBridge(t *testing.T) *Bridge {
	t.Helper()
	mp, err := pragmatic.ReadProblem(strings.NewReader(berlinProblem))
	if err != nil {
		t.Fatalf("read problem: %v", err)
	}
	b, err := FromModel(mp)
	if err != nil {
		t.Fatalf("FromModel: %v", err)
	}
	return b
}

func TestFromModel(t *testing.T) {
	b := berlinBridge(t)
	p := b.Problem
	if len(p.Jobs) != 2 || len(p.Nodes) != 3 {
		t.Fatalf("jobs=%d nodes=%d", len(p.Jobs), len(p.Nodes))
	}
	// job2 is a pickup/delivery pair, in pickup-first order
	j2 := p.Jobs[1]
	if len(j2.Nodes) != 2 {
		t.Fatalf("job2 nodes: %d", len(j2.Nodes))
	}
	if p.Nodes[j2.Nodes[0]].Kind != "pickup" || p.Nodes[j2.Nodes[1]].Kind != "delivery" {
		t.Fatalf("pair order wrong: %s then %s", p.Nodes[j2.Nodes[0]].Kind, p.Nodes[j2.Nodes[1]].Kind)
	}
	if p.Nodes[j2.Nodes[1]].LoadsAtStart {
		t.Fatal("paired delivery must not load at start")
	}
	if !p.Nodes[p.Jobs[0].Nodes[0]].LoadsAtStart {
		t.Fatal("plain delivery must load at start")
	}
	// epoch is the shift start, so the window begins at 0
	w := p.Nodes[p.Jobs[0].Nodes[0]].Windows[0]
	if w.Start != 0 || w.End != 9*3600 {
		t.Fatalf("window: %+v", w)
	}
	v := p.Vehicles[0]
	if v.ID != "vehicle_1" || v.ShiftStart != 0 || v.ShiftEnd != 9*3600 || v.End == nil {
		t.Fatalf("vehicle: %+v", v)
	}
}

func TestSolveAndBuildSolution(t *testing.T) {
	b := berlinBridge(t)
	s, m := Solve(context.Background(), b.Problem, Config{Seed: 11, MaxGenerations: 100})
	sol, err := b.ToModel(s, m)
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	if len(sol.Tours) != 1 {
		t.Fatalf("tours: %d", len(sol.Tours))
	}
	tour := sol.Tours[0]
	if tour.VehicleID != "vehicle_1" {
		t.Fatalf("vehicle: %s", tour.VehicleID)
	}
	first := tour.Stops[0]
	if first.Activities[0].Type != "departure" {
		t.Fatalf("first stop: %+v", first)
	}
	last := tour.Stops[len(tour.Stops)-1]
	if last.Activities[0].Type != "arrival" {
		t.Fatalf("last stop: %+v", last)
	}
	// every job shows up exactly once across the stops
	seen := map[string]int{}
	for _, st := range tour.Stops {
		for _, a := range st.Activities {
			seen[a.JobID]++
		}
	}
	if seen["job1"] != 1 || seen["job2"] != 2 {
		t.Fatalf("activities per job: %v", seen)
	}
	if sol.Statistic.Cost <= 0 || sol.Statistic.Distance <= 0 {
		t.Fatalf("statistic: %+v", sol.Statistic)
	}
	if sol.Extras == nil || sol.Extras.Seed != 11 {
		t.Fatalf("extras: %+v", sol.Extras)
	}
	// timestamps are RFC3339 and start at the shift start
	if first.Time.Departure != "2019-07-04T09:00:00Z" {
		t.Fatalf("departure stamp: %s", first.Time.Departure)
	}
}
