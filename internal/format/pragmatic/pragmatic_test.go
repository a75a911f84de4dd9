package pragmatic

import (
	"bytes"
	"strings"
	"testing"
)

const sampleProblem = `{
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
        ]
      }
    ]
  },
  "fleet": {
    "vehicles": [
      {
        "typeId": "vehicle",
        "vehicleIds": ["vehicle_1"],
        "profile": "normal_car",
        "costs": {"fixed": 22.0, "distance": 0.0002, "time": 0.004806},
        "shifts": [
          {
            "start": {"earliest": "2019-07-04T09:00:00Z", "location": {"lat": 52.5316, "lng": 13.3884}},
            "end": {"latest": "2019-07-04T18:00:00Z", "location": {"lat": 52.5316, "lng": 13.3884}}
          }
        ],
        "capacity": [10]
      }
    ],
    "profiles": [{"name": "normal_car", "type": "car"}]
  }
}`

func TestReadProblem(t *testing.T) {
	p, err := ReadProblem(strings.NewReader(sampleProblem))
	if err != nil {
		t.Fatalf("ReadProblem: %v", err)
	}
	if len(p.Plan.Jobs) != 2 {
		t.Fatalf("jobs: got %d, want 2", len(p.Plan.Jobs))
	}
	if p.Plan.Jobs[0].ID != "job1" || len(p.Plan.Jobs[0].Deliveries) != 1 {
		t.Fatalf("job1 parsed wrong: %+v", p.Plan.Jobs[0])
	}
	v := p.Fleet.Vehicles[0]
	if v.TypeID != "vehicle" || v.Costs.Fixed != 22.0 || v.Capacity[0] != 10 {
		t.Fatalf("vehicle parsed wrong: %+v", v)
	}
	if v.Shifts[0].End == nil || v.Shifts[0].End.Latest != "2019-07-04T18:00:00Z" {
		t.Fatalf("shift end parsed wrong: %+v", v.Shifts[0])
	}
}

func TestReadProblemRejectsUnknownFields(t *testing.T) {
	bad := strings.Replace(sampleProblem, `"plan"`, `"plam"`, 1)
	if _, err := ReadProblem(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidateProblemErrors(t *testing.T) {
	// duplicate id
	dup := strings.Replace(sampleProblem, `"id": "job2"`, `"id": "job1"`, 1)
	if _, err := ReadProblem(strings.NewReader(dup)); err == nil || !strings.Contains(err.Error(), "duplicated") {
		t.Fatalf("duplicate id: got %v", err)
	}
	// inverted window
	inv := strings.Replace(sampleProblem,
		`[["2019-07-04T09:00:00Z", "2019-07-04T18:00:00Z"]]`,
		`[["2019-07-04T18:00:00Z", "2019-07-04T09:00:00Z"]]`, 1)
	if _, err := ReadProblem(strings.NewReader(inv)); err == nil || !strings.Contains(err.Error(), "ends before") {
		t.Fatalf("inverted window: got %v", err)
	}
}

func TestProblemRoundTrip(t *testing.T) {
	p, err := ReadProblem(strings.NewReader(sampleProblem))
	if err != nil {
		t.Fatalf("ReadProblem: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteProblem(&buf, p); err != nil {
		t.Fatalf("WriteProblem: %v", err)
	}
	p2, err := ReadProblem(&buf)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if len(p2.Plan.Jobs) != len(p.Plan.Jobs) || p2.Fleet.Vehicles[0].TypeID != p.Fleet.Vehicles[0].TypeID {
		t.Fatal("round trip lost data")
	}
}
