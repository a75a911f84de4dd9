package solver

import (
	"fmt"
	"time"

	"vrpsolve/internal/model"
)

// Bridge converts between the pragmatic model and the solver
// representation and keeps the context needed to assemble a solution
// document afterwards.
type Bridge struct {
	Problem *Problem
	epoch   time.Time
}

// FromModel builds the solver problem from a validated pragmatic problem.
func FromModel(mp *model.Problem) (*Bridge, error) {
	b := &Bridge{Problem: &Problem{Objectives: mp.Objectives}}
	epoch, err := earliestShift(mp)
	if err != nil {
		return nil, err
	}
	b.epoch = epoch

	for ji, mj := range mp.Plan.Jobs {
		jr := JobRef{ID: mj.ID, Skills: mj.Skills}
		hasPickup := len(mj.Pickups) > 0
		add := func(t model.Task, kind string) error {
			if len(t.Places) == 0 {
				return fmt.Errorf("job %q: task without places", mj.ID)
			}
			pl := t.Places[0]
			windows, err := b.windows(pl.Times)
			if err != nil {
				return fmt.Errorf("job %q: %w", mj.ID, err)
			}
			nd := Node{
				JobID:        mj.ID,
				Kind:         kind,
				Loc:          [2]float64{pl.Location.Lat, pl.Location.Lng},
				ServiceSec:   pl.Duration,
				Windows:      windows,
				Demand:       t.Demand,
				Job:          ji,
				Seq:          len(jr.Nodes),
				LoadsAtStart: kind == "delivery" && !hasPickup,
			}
			jr.Nodes = append(jr.Nodes, len(b.Problem.Nodes))
			b.Problem.Nodes = append(b.Problem.Nodes, nd)
			return nil
		}
		for _, t := range mj.Pickups {
			if err := add(t, "pickup"); err != nil {
				return nil, err
			}
		}
		for _, t := range mj.Deliveries {
			if err := add(t, "delivery"); err != nil {
				return nil, err
			}
		}
		b.Problem.Jobs = append(b.Problem.Jobs, jr)
	}

	for _, vt := range mp.Fleet.Vehicles {
		for _, vid := range vt.VehicleIDs {
			for si, sh := range vt.Shifts {
				v := Vehicle{
					ID:         vid,
					TypeID:     vt.TypeID,
					ShiftIndex: si,
					Capacity:   vt.Capacity,
					Costs:      Costs{Fixed: vt.Costs.Fixed, PerMeter: vt.Costs.Distance, PerSec: vt.Costs.Time},
					Start:      [2]float64{sh.Start.Location.Lat, sh.Start.Location.Lng},
					Skills:     vt.Skills,
				}
				if sh.Start.Earliest != "" {
					ts, err := time.Parse(time.RFC3339, sh.Start.Earliest)
					if err != nil {
						return nil, fmt.Errorf("vehicle %s: bad shift start: %w", vid, err)
					}
					v.ShiftStart = ts.Sub(b.epoch).Seconds()
				}
				if sh.End != nil {
					loc := [2]float64{sh.End.Location.Lat, sh.End.Location.Lng}
					v.End = &loc
					if sh.End.Latest != "" {
						ts, err := time.Parse(time.RFC3339, sh.End.Latest)
						if err != nil {
							return nil, fmt.Errorf("vehicle %s: bad shift end: %w", vid, err)
						}
						v.ShiftEnd = ts.Sub(b.epoch).Seconds()
					}
				}
				b.Problem.Vehicles = append(b.Problem.Vehicles, v)
			}
		}
	}
	return b, nil
}

func (b *Bridge) windows(times [][2]string) ([]Window, error) {
	out := make([]Window, 0, len(times))
	for _, tw := range times {
		start, err := time.Parse(time.RFC3339, tw[0])
		if err != nil {
			return nil, fmt.Errorf("bad time window start %q: %w", tw[0], err)
		}
		end, err := time.Parse(time.RFC3339, tw[1])
		if err != nil {
			return nil, fmt.Errorf("bad time window end %q: %w", tw[1], err)
		}
		out = append(out, Window{Start: start.Sub(b.epoch).Seconds(), End: end.Sub(b.epoch).Seconds()})
	}
	return out, nil
}

func earliestShift(mp *model.Problem) (time.Time, error) {
	var epoch time.Time
	found := false
	for _, vt := range mp.Fleet.Vehicles {
		for _, sh := range vt.Shifts {
			if sh.Start.Earliest == "" {
				continue
			}
			ts, err := time.Parse(time.RFC3339, sh.Start.Earliest)
			if err != nil {
				return time.Time{}, fmt.Errorf("vehicle type %s: bad shift start: %w", vt.TypeID, err)
			}
			if !found || ts.Before(epoch) {
				epoch = ts
				found = true
			}
		}
	}
	if !found {
		epoch = time.Unix(0, 0).UTC()
	}
	return epoch, nil
}

func (b *Bridge) stamp(sec float64) string {
	return b.epoch.Add(time.Duration(sec * float64(time.Second))).UTC().Format(time.RFC3339)
}

// ToModel assembles the pragmatic solution document for a solved problem.
func (b *Bridge) ToModel(s *Solution, m Metrics) (*model.Solution, error) {
	p := b.Problem
	out := &model.Solution{}
	for _, t := range s.Tours {
		if !t.HasJobs() {
			continue
		}
		sc, ok := p.ScheduleTour(t)
		if !ok {
			return nil, fmt.Errorf("tour for vehicle %s is infeasible", p.Vehicles[t.Vehicle].ID)
		}
		out.Tours = append(out.Tours, b.buildTour(t, sc))
	}
	for job := range s.Unassigned {
		out.Unassigned = append(out.Unassigned, model.UnassignedJob{
			JobID: p.Jobs[job].ID,
			Reasons: []model.UnassignedReason{
				{Code: "NO_FEASIBLE_PLACEMENT", Description: "cannot be assigned without violating constraints"},
			},
		})
	}
	for _, t := range out.Tours {
		out.Statistic.Cost += t.Statistic.Cost
		out.Statistic.Distance += t.Statistic.Distance
		out.Statistic.Duration += t.Statistic.Duration
		out.Statistic.Times.Driving += t.Statistic.Times.Driving
		out.Statistic.Times.Serving += t.Statistic.Times.Serving
		out.Statistic.Times.Waiting += t.Statistic.Times.Waiting
	}
	out.Extras = &model.Extras{Iterations: m.Generations, Seed: m.Seed, BestCost: m.BestCost}
	return out, nil
}

func (b *Bridge) buildTour(t *Tour, sc TourSchedule) model.Tour {
	p := b.Problem
	v := p.Vehicles[t.Vehicle]
	mt := model.Tour{VehicleID: v.ID, TypeID: v.TypeID, ShiftIndex: v.ShiftIndex}

	dims := len(v.Capacity)
	if dims == 0 {
		dims = 1
	}
	initial := make([]int, dims)
	for _, ni := range t.Activities() {
		nd := p.Nodes[ni]
		if nd.Kind == "delivery" && nd.LoadsAtStart {
			addDemand(initial, nd.Demand, 1)
		}
	}

	speed := p.speed()
	departStart := v.ShiftStart
	mt.Stops = append(mt.Stops, model.Stop{
		Location:   model.Location{Lat: v.Start[0], Lng: v.Start[1]},
		Time:       model.StopTime{Arrival: b.stamp(departStart), Departure: b.stamp(departStart)},
		Distance:   0,
		Load:       append([]int(nil), initial...),
		Activities: []model.Activity{{JobID: "departure", Type: "departure"}},
	})

	dist := 0.0
	cur := v.Start
	for i, ni := range t.Activities() {
		nd := p.Nodes[ni]
		dist += p.Distance(cur, nd.Loc)
		cur = nd.Loc
		mt.Stops = append(mt.Stops, model.Stop{
			Location:   model.Location{Lat: nd.Loc[0], Lng: nd.Loc[1]},
			Time:       model.StopTime{Arrival: b.stamp(sc.Arrivals[i]), Departure: b.stamp(sc.Departures[i])},
			Distance:   int(dist),
			Load:       append([]int(nil), sc.Loads[i]...),
			Activities: []model.Activity{{JobID: nd.JobID, Type: nd.Kind}},
		})
	}
	if v.End != nil {
		last := len(sc.Departures) - 1
		arrive := sc.Departures[last] + p.Distance(cur, *v.End)/speed
		dist += p.Distance(cur, *v.End)
		// pickups stay on board until the vehicle returns
		endLoad := append([]int(nil), sc.Loads[last]...)
		mt.Stops = append(mt.Stops, model.Stop{
			Location:   model.Location{Lat: (*v.End)[0], Lng: (*v.End)[1]},
			Time:       model.StopTime{Arrival: b.stamp(arrive), Departure: b.stamp(arrive)},
			Distance:   int(dist),
			Load:       endLoad,
			Activities: []model.Activity{{JobID: "arrival", Type: "arrival"}},
		})
	}

	dur := sc.EndTime - v.ShiftStart
	mt.Statistic = model.Statistic{
		Cost:     p.TourCost(t, sc),
		Distance: int(sc.DistM),
		Duration: int(dur),
		Times: model.Times{
			Driving: int(sc.DriveSec),
			Serving: int(sc.ServeSec),
			Waiting: int(sc.WaitSec),
		},
	}
	return mt
}
