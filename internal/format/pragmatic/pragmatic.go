// Package pragmatic reads and writes the pragmatic JSON problem and
// solution formats.
package pragmatic

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"vrpsolve/internal/model"
)

// ReadProblem decodes and validates a pragmatic problem.
func ReadProblem(r io.Reader) (*model.Problem, error) {
	var p model.Problem
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode problem: %w", err)
	}
	if err := ValidateProblem(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// WriteProblem encodes a problem with stable indentation.
func WriteProblem(w io.Writer, p *model.Problem) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ReadSolution decodes a pragmatic solution.
func ReadSolution(r io.Reader) (*model.Solution, error) {
	var s model.Solution
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode solution: %w", err)
	}
	return &s, nil
}

// WriteSolution encodes a solution with stable indentation.
func WriteSolution(w io.Writer, s *model.Solution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ValidateProblem checks the structural invariants the solver relies on.
func ValidateProblem(p *model.Problem) error {
	if len(p.Plan.Jobs) == 0 {
		return fmt.Errorf("plan.jobs must not be empty")
	}
	seen := map[string]bool{}
	for i, j := range p.Plan.Jobs {
		if j.ID == "" {
			return fmt.Errorf("plan.jobs[%d].id is required", i)
		}
		if seen[j.ID] {
			return fmt.Errorf("plan.jobs[%d].id %q is duplicated", i, j.ID)
		}
		seen[j.ID] = true
		if len(j.Deliveries) == 0 && len(j.Pickups) == 0 {
			return fmt.Errorf("job %q has neither deliveries nor pickups", j.ID)
		}
		for _, t := range append(append([]model.Task{}, j.Deliveries...), j.Pickups...) {
			if len(t.Places) == 0 {
				return fmt.Errorf("job %q has a task without places", j.ID)
			}
			for _, pl := range t.Places {
				if pl.Duration < 0 {
					return fmt.Errorf("job %q has negative duration", j.ID)
				}
				for _, tw := range pl.Times {
					if err := checkWindow(tw); err != nil {
						return fmt.Errorf("job %q: %w", j.ID, err)
					}
				}
			}
		}
	}
	if len(p.Fleet.Vehicles) == 0 {
		return fmt.Errorf("fleet.vehicles must not be empty")
	}
	for i, v := range p.Fleet.Vehicles {
		if v.TypeID == "" {
			return fmt.Errorf("fleet.vehicles[%d].typeId is required", i)
		}
		if len(v.VehicleIDs) == 0 {
			return fmt.Errorf("vehicle type %q has no vehicleIds", v.TypeID)
		}
		if len(v.Shifts) == 0 {
			return fmt.Errorf("vehicle type %q has no shifts", v.TypeID)
		}
		for si, sh := range v.Shifts {
			if sh.Start.Earliest != "" {
				if _, err := time.Parse(time.RFC3339, sh.Start.Earliest); err != nil {
					return fmt.Errorf("vehicle type %q shift %d: bad start.earliest: %w", v.TypeID, si, err)
				}
			}
			if sh.End != nil && sh.End.Latest != "" {
				if _, err := time.Parse(time.RFC3339, sh.End.Latest); err != nil {
					return fmt.Errorf("vehicle type %q shift %d: bad end.latest: %w", v.TypeID, si, err)
				}
			}
		}
	}
	return nil
}

func checkWindow(tw [2]string) error {
	start, err := time.Parse(time.RFC3339, tw[0])
	if err != nil {
		return fmt.Errorf("bad time window start %q: %w", tw[0], err)
	}
	end, err := time.Parse(time.RFC3339, tw[1])
	if err != nil {
		return fmt.Errorf("bad time window end %q: %w", tw[1], err)
	}
	if end.Before(start) {
		return fmt.Errorf("time window ends before it starts (%s > %s)", tw[0], tw[1])
	}
	return nil
}
