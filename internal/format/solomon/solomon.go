// Package solomon reads the classic Solomon VRPTW text format and writes
// the matching plain-text solution.
package solomon

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Customer is one row of the customer table. Coordinates are planar.
type Customer struct {
	ID      int
	X, Y    float64
	Demand  int
	Ready   int
	Due     int
	Service int
}

// Problem is a parsed Solomon instance. Customer 0 is the depot.
type Problem struct {
	Name      string
	Vehicles  int
	Capacity  int
	Depot     Customer
	Customers []Customer
}

// Parse reads a Solomon instance:
//
//	<name>
//	VEHICLE
//	NUMBER CAPACITY
//	 <n>     <q>
//	CUSTOMER
//	CUST NO. XCOORD. YCOORD. DEMAND READY TIME DUE DATE SERVICE TIME
//	 <rows...>
func Parse(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	p := &Problem{}
	section := ""
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		upper := strings.ToUpper(text)
		switch {
		case p.Name == "" && section == "":
			p.Name = text
			continue
		case upper == "VEHICLE":
			section = "vehicle"
			continue
		case upper == "CUSTOMER":
			section = "customer"
			continue
		case strings.HasPrefix(upper, "NUMBER") || strings.HasPrefix(upper, "CUST NO."):
			continue
		}
		fields := strings.Fields(text)
		switch section {
		case "vehicle":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: vehicle row needs 2 fields, got %d", line, len(fields))
			}
			n, err1 := strconv.Atoi(fields[0])
			q, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line %d: bad vehicle row %q", line, text)
			}
			p.Vehicles, p.Capacity = n, q
		case "customer":
			c, err := parseCustomer(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if c.ID == 0 {
				p.Depot = c
			} else {
				p.Customers = append(p.Customers, c)
			}
		default:
			return nil, fmt.Errorf("line %d: unexpected row %q", line, text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if p.Vehicles <= 0 || p.Capacity <= 0 {
		return nil, fmt.Errorf("missing or invalid VEHICLE section")
	}
	if len(p.Customers) == 0 {
		return nil, fmt.Errorf("no customers")
	}
	return p, nil
}

func parseCustomer(fields []string) (Customer, error) {
	if len(fields) != 7 {
		return Customer{}, fmt.Errorf("customer row needs 7 fields, got %d", len(fields))
	}
	vals := make([]float64, 7)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Customer{}, fmt.Errorf("bad field %q", f)
		}
		vals[i] = v
	}
	return Customer{
		ID:      int(vals[0]),
		X:       vals[1],
		Y:       vals[2],
		Demand:  int(vals[3]),
		Ready:   int(vals[4]),
		Due:     int(vals[5]),
		Service: int(vals[6]),
	}, nil
}

// Route is one vehicle's customer visit order for text output.
type Route struct {
	Customers []int
}

// WriteSolution writes routes in the conventional text form:
//
//	Route 1: 5 3 7
//	Route 2: 1 2
//	Cost 123.45
func WriteSolution(w io.Writer, routes []Route, cost float64) error {
	bw := bufio.NewWriter(w)
	n := 0
	for _, rt := range routes {
		if len(rt.Customers) == 0 {
			continue
		}
		n++
		parts := make([]string, len(rt.Customers))
		for i, c := range rt.Customers {
			parts[i] = strconv.Itoa(c)
		}
		if _, err := fmt.Fprintf(bw, "Route %d: %s\n", n, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "Cost %.2f\n", cost); err != nil {
		return err
	}
	return bw.Flush()
}
