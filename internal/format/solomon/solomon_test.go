package solomon

import (
	"bytes"
	"strings"
	"testing"
)

const sample = `C101

VEHICLE
NUMBER     CAPACITY
  25         200

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME  DUE DATE   SERVICE TIME

    0      40         50          0          0       1236          0
    1      45         68         10        912        967         90
    2      45         70         30        825        870         90
    3      42         66         10         65        146         90
`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Name != "C101" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Vehicles != 25 || p.Capacity != 200 {
		t.Errorf("vehicle section: got %d/%d", p.Vehicles, p.Capacity)
	}
	if p.Depot.X != 40 || p.Depot.Y != 50 || p.Depot.Due != 1236 {
		t.Errorf("depot: %+v", p.Depot)
	}
	if len(p.Customers) != 3 {
		t.Fatalf("customers: got %d, want 3", len(p.Customers))
	}
	c := p.Customers[1]
	if c.ID != 2 || c.Demand != 30 || c.Ready != 825 || c.Service != 90 {
		t.Errorf("customer 2: %+v", c)
	}
}

func TestParseRejectsShortRow(t *testing.T) {
	bad := sample + "    4      42\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for short customer row")
	}
}

func TestWriteSolution(t *testing.T) {
	var buf bytes.Buffer
	routes := []Route{{Customers: []int{3, 1}}, {}, {Customers: []int{2}}}
	if err := WriteSolution(&buf, routes, 42.5); err != nil {
		t.Fatalf("WriteSolution: %v", err)
	}
	got := buf.String()
	want := "Route 1: 3 1\nRoute 2: 2\nCost 42.50\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
