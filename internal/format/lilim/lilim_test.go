package lilim

import (
	"strings"
	"testing"
)

const sample = `5 200 1
0   40   50    0     0  1236    0   0   0
1   45   68   10     0  1127   90   0   3
3   42   66  -10   100  1200   90   1   0
2   45   70   20     0  1100   60   0   4
4   44   69  -20    50  1150   60   2   0
`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Vehicles != 5 || p.Capacity != 200 {
		t.Errorf("header: %d/%d", p.Vehicles, p.Capacity)
	}
	if len(p.Requests) != 2 {
		t.Fatalf("requests: got %d, want 2", len(p.Requests))
	}
	for _, req := range p.Requests {
		if req.Pickup.Demand <= 0 || req.Delivery.Demand >= 0 {
			t.Errorf("bad pairing: %+v", req)
		}
		if req.Pickup.Delivery != req.Delivery.ID {
			t.Errorf("pickup %d not linked to delivery %d", req.Pickup.ID, req.Delivery.ID)
		}
	}
}

func TestParseRequestOrderStable(t *testing.T) {
	first, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for run := 0; run < 20; run++ {
		p, err := Parse(strings.NewReader(sample))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		for i, req := range p.Requests {
			if req.Pickup.ID != first.Requests[i].Pickup.ID {
				t.Fatalf("run %d: request %d pickup %d, want %d",
					run, i, req.Pickup.ID, first.Requests[i].Pickup.ID)
			}
		}
	}
	// pickups appear in file order
	if first.Requests[0].Pickup.ID != 1 || first.Requests[1].Pickup.ID != 2 {
		t.Errorf("request order: got %d, %d", first.Requests[0].Pickup.ID, first.Requests[1].Pickup.ID)
	}
}

func TestParseUnbalancedDemand(t *testing.T) {
	bad := strings.Replace(sample, "-10", "-5", 1)
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for unbalanced demand")
	}
}

func TestParseMissingDelivery(t *testing.T) {
	bad := strings.Replace(sample, "   0   3\n3", "   0   9\n3", 1)
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for dangling delivery reference")
	}
}
