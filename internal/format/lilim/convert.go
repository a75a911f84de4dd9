package lilim

import (
	"fmt"
	"time"

	"vrpsolve/internal/model"
)

// ToModel maps a Li & Lim instance onto the pragmatic model. Each request
// becomes one job with a pickup and a delivery task; coordinates are
// planar (lat=Y, lng=X) and time units are seconds from the Unix epoch.
func (p *Problem) ToModel() *model.Problem {
	mp := &model.Problem{}
	for _, req := range p.Requests {
		mp.Plan.Jobs = append(mp.Plan.Jobs, model.Job{
			ID: fmt.Sprintf("%d_%d", req.Pickup.ID, req.Delivery.ID),
			Pickups: []model.Task{{
				Places: []model.Place{place(req.Pickup)},
				Demand: []int{req.Pickup.Demand},
			}},
			Deliveries: []model.Task{{
				Places: []model.Place{place(req.Delivery)},
				Demand: []int{-req.Delivery.Demand},
			}},
		})
	}
	ids := make([]string, p.Vehicles)
	for i := range ids {
		ids[i] = fmt.Sprintf("vehicle_%d", i+1)
	}
	depot := model.Location{Lat: p.Depot.Y, Lng: p.Depot.X}
	mp.Fleet.Vehicles = []model.VehicleType{{
		TypeID:     "vehicle",
		VehicleIDs: ids,
		Costs:      model.VehicleCosts{Distance: 1},
		Shifts: []model.Shift{{
			Start: model.ShiftStart{Earliest: stamp(p.Depot.Ready), Location: depot},
			End:   &model.ShiftEnd{Latest: stamp(p.Depot.Due), Location: depot},
		}},
		Capacity: []int{p.Capacity},
	}}
	return mp
}

func place(n Node) model.Place {
	return model.Place{
		Location: model.Location{Lat: n.Y, Lng: n.X},
		Duration: float64(n.Service),
		Times:    [][2]string{{stamp(n.Ready), stamp(n.Due)}},
	}
}

func stamp(sec int) string {
	return time.Unix(int64(sec), 0).UTC().Format(time.RFC3339)
}
