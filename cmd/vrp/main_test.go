package main

import (
	"strings"
	"testing"

	"vrpsolve/internal/model"
)

const solomonSample = `C101

VEHICLE
NUMBER     CAPACITY
   2         200

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME  DUE DATE   SERVICE TIME

    0      40         50          0          0       1236          0
    1      45         68         10          0       1000         10
    2      45         70         30          0       1000         10
`

func TestReadProblemSolomon(t *testing.T) {
	mp, planar, err := readProblem(strings.NewReader(solomonSample), "solomon")
	if err != nil {
		t.Fatalf("readProblem: %v", err)
	}
	if !planar {
		t.Error("solomon should be planar")
	}
	if len(mp.Plan.Jobs) != 2 {
		t.Errorf("jobs: got %d, want 2", len(mp.Plan.Jobs))
	}
}

func TestReadProblemUnknownFormat(t *testing.T) {
	if _, _, err := readProblem(strings.NewReader("x"), "tsv"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriteSolomonText(t *testing.T) {
	s := &model.Solution{
		Statistic: model.Statistic{Cost: 10.5},
		Tours: []model.Tour{{
			VehicleID: "vehicle_1",
			Stops: []model.Stop{
				{Activities: []model.Activity{{JobID: "departure", Type: "departure"}}},
				{Activities: []model.Activity{{JobID: "2", Type: "delivery"}}},
				{Activities: []model.Activity{{JobID: "1", Type: "delivery"}}},
				{Activities: []model.Activity{{JobID: "arrival", Type: "arrival"}}},
			},
		}},
	}
	var sb strings.Builder
	if err := writeSolomonText(&sb, s); err != nil {
		t.Fatalf("writeSolomonText: %v", err)
	}
	got := sb.String()
	if !strings.Contains(got, "Route 1: 2 1") {
		t.Errorf("missing route line:\n%s", got)
	}
	if !strings.Contains(got, "Cost 10.50") {
		t.Errorf("missing cost line:\n%s", got)
	}
}

func TestWriteSolomonTextRejectsNamedJobs(t *testing.T) {
	s := &model.Solution{
		Tours: []model.Tour{{
			Stops: []model.Stop{
				{Activities: []model.Activity{{JobID: "job_a", Type: "delivery"}}},
			},
		}},
	}
	if err := writeSolomonText(&strings.Builder{}, s); err == nil {
		t.Fatal("expected error for non-numeric job id")
	}
}
