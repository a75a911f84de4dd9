package solomon

import (
	"fmt"
	"time"

	"vrpsolve/internal/model"
)

// ToModel maps a Solomon instance onto the pragmatic model with planar
// coordinates (lat=Y, lng=X) and time units treated as seconds from the
// Unix epoch. Customer IDs become job IDs so text output can map back.
func (p *Problem) ToModel() *model.Problem {
	mp := &model.Problem{}
	for _, c := range p.Customers {
		mp.Plan.Jobs = append(mp.Plan.Jobs, model.Job{
			ID: fmt.Sprintf("%d", c.ID),
			Deliveries: []model.Task{{
				Places: []model.Place{{
					Location: model.Location{Lat: c.Y, Lng: c.X},
					Duration: float64(c.Service),
					Times:    [][2]string{{stamp(c.Ready), stamp(c.Due)}},
				}},
				Demand: []int{c.Demand},
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

func stamp(sec int) string {
	return time.Unix(int64(sec), 0).UTC().Format(time.RFC3339)
}
