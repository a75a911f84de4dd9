// Package lilim reads the Li & Lim PDPTW text format. Each customer row
// carries pickup/delivery pairing columns; a pair of rows forms one
// pickup-and-delivery request.
package lilim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Node struct {
	ID       int
	X, Y     float64
	Demand   int
	Ready    int
	Due      int
	Service  int
	Pickup   int // row id of the paired pickup, 0 on pickup rows
	Delivery int // row id of the paired delivery, 0 on delivery rows
}

// Request is a paired pickup and delivery.
type Request struct {
	Pickup   Node
	Delivery Node
}

type Problem struct {
	Vehicles int
	Capacity int
	Depot    Node
	Requests []Request
}

// Parse reads a Li & Lim instance. The first row is
// "<vehicles> <capacity> <speed>", followed by node rows with 9 columns.
func Parse(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	p := &Problem{}
	nodes := map[int]Node{}
	var order []int // file order, pairing must not depend on map iteration
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if line == 1 {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line 1: header needs vehicles and capacity")
			}
			n, err1 := strconv.Atoi(fields[0])
			q, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line 1: bad header %q", text)
			}
			p.Vehicles, p.Capacity = n, q
			continue
		}
		nd, err := parseNode(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if nd.ID == 0 {
			p.Depot = nd
		} else {
			nodes[nd.ID] = nd
			order = append(order, nd.ID)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// pair pickups with deliveries, in file order
	for _, id := range order {
		nd := nodes[id]
		if nd.Pickup != 0 {
			continue // delivery row, handled from its pickup
		}
		if nd.Delivery == 0 {
			return nil, fmt.Errorf("node %d is a pickup without a delivery reference", id)
		}
		del, ok := nodes[nd.Delivery]
		if !ok {
			return nil, fmt.Errorf("node %d references missing delivery %d", id, nd.Delivery)
		}
		if nd.Demand+del.Demand != 0 {
			return nil, fmt.Errorf("request %d/%d demands do not cancel (%d, %d)", id, del.ID, nd.Demand, del.Demand)
		}
		p.Requests = append(p.Requests, Request{Pickup: nd, Delivery: del})
	}
	if len(p.Requests) == 0 {
		return nil, fmt.Errorf("no requests")
	}
	return p, nil
}

func parseNode(fields []string) (Node, error) {
	if len(fields) != 9 {
		return Node{}, fmt.Errorf("node row needs 9 fields, got %d", len(fields))
	}
	vals := make([]float64, 9)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Node{}, fmt.Errorf("bad field %q", f)
		}
		vals[i] = v
	}
	return Node{
		ID:       int(vals[0]),
		X:        vals[1],
		Y:        vals[2],
		Demand:   int(vals[3]),
		Ready:    int(vals[4]),
		Due:      int(vals[5]),
		Service:  int(vals[6]),
		Pickup:   int(vals[7]),
		Delivery: int(vals[8]),
	}, nil
}
