package solver

import "math"

// Window is a service time window in seconds from the problem epoch.
type Window struct {
	Start, End float64
}

// Node is a single activity location of a job.
type Node struct {
	JobID      string
	Kind       string // "delivery" or "pickup"
	Loc        [2]float64
	ServiceSec float64
	Windows    []Window
	Demand     []int
	Job        int // index into Problem.Jobs
	Seq        int // position within the job's node list
	// LoadsAtStart marks deliveries that are on board when the vehicle
	// leaves the depot (jobs without a pickup leg).
	LoadsAtStart bool
}

// JobRef groups the nodes of one job. Multi-node jobs (pickup then
// delivery) must be served in order by the same vehicle.
type JobRef struct {
	ID     string
	Nodes  []int
	Skills []string
}

type Costs struct {
	Fixed    float64
	PerMeter float64
	PerSec   float64
}

// Vehicle is one concrete vehicle shift.
type Vehicle struct {
	ID         string
	TypeID     string
	ShiftIndex int
	Capacity   []int
	Costs      Costs
	Start      [2]float64
	End        *[2]float64 // nil for open tours
	ShiftStart float64     // seconds from epoch
	ShiftEnd   float64     // 0 means unbounded
	Skills     []string
}

// Problem is the solver-internal representation, independent of the wire
// formats.
type Problem struct {
	Nodes      []Node
	Jobs       []JobRef
	Vehicles   []Vehicle
	Planar     bool // planar coordinates with Euclidean distances
	SpeedKmh   float64
	Objectives map[string]float64
}

const unassignedPenalty = 1e4

func (p *Problem) speed() float64 {
	if p.SpeedKmh <= 0 {
		return 50 / 3.6
	}
	return p.SpeedKmh / 3.6
}

func (p *Problem) weight(name string, def float64) float64 {
	if p.Objectives == nil {
		return def
	}
	if w, ok := p.Objectives[name]; ok {
		return w
	}
	return def
}

// Distance returns meters for geographic problems and plain Euclidean
// units for planar ones.
func (p *Problem) Distance(a, b [2]float64) float64 {
	if p.Planar {
		dx, dy := a[0]-b[0], a[1]-b[1]
		return math.Sqrt(dx*dx + dy*dy)
	}
	return haversine(a[0], a[1], b[0], b[1])
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// TourSchedule holds the timing breakdown of one scheduled tour.
type TourSchedule struct {
	DriveSec float64
	ServeSec float64
	WaitSec  float64
	DistM    float64
	EndTime  float64
	// Arrivals and Departures are per activity, same order as the tour.
	Arrivals   []float64
	Departures []float64
	// Loads is the load vector after each activity.
	Loads [][]int
}

// ScheduleTour propagates times and loads along a tour. Returns false when
// a time window, capacity, or shift bound is violated.
func (p *Problem) ScheduleTour(t *Tour) (TourSchedule, bool) {
	v := p.Vehicles[t.Vehicle]
	sc := TourSchedule{EndTime: v.ShiftStart}
	if t.Len() == 0 {
		return sc, true
	}
	dims := len(v.Capacity)
	load := make([]int, dims)
	for _, ni := range t.nodes {
		nd := p.Nodes[ni]
		if nd.Kind == "delivery" && nd.LoadsAtStart {
			addDemand(load, nd.Demand, 1)
		}
	}
	if !fitsCapacity(load, v.Capacity) {
		return sc, false
	}
	cur := v.Start
	tm := v.ShiftStart
	speed := p.speed()
	for _, ni := range t.nodes {
		nd := p.Nodes[ni]
		d := p.Distance(cur, nd.Loc)
		drive := d / speed
		tm += drive
		sc.DriveSec += drive
		sc.DistM += d
		arrival := tm
		if len(nd.Windows) > 0 {
			w, ok := firstOpenWindow(nd.Windows, arrival)
			if !ok {
				return sc, false
			}
			if arrival < w.Start {
				sc.WaitSec += w.Start - arrival
				tm = w.Start
			}
		}
		sc.Arrivals = append(sc.Arrivals, arrival)
		switch nd.Kind {
		case "pickup":
			addDemand(load, nd.Demand, 1)
		case "delivery":
			addDemand(load, nd.Demand, -1)
		}
		if !fitsCapacity(load, v.Capacity) {
			return sc, false
		}
		sc.Loads = append(sc.Loads, append([]int(nil), load...))
		tm += nd.ServiceSec
		sc.ServeSec += nd.ServiceSec
		sc.Departures = append(sc.Departures, tm)
		cur = nd.Loc
	}
	if v.End != nil {
		d := p.Distance(cur, *v.End)
		drive := d / speed
		tm += drive
		sc.DriveSec += drive
		sc.DistM += d
	}
	if v.ShiftEnd > 0 && tm > v.ShiftEnd {
		return sc, false
	}
	sc.EndTime = tm
	return sc, true
}

func firstOpenWindow(ws []Window, arrival float64) (Window, bool) {
	for _, w := range ws {
		if arrival <= w.End {
			return w, true
		}
	}
	return Window{}, false
}

func addDemand(load, demand []int, sign int) {
	for i := 0; i < len(load) && i < len(demand); i++ {
		load[i] += sign * demand[i]
	}
}

func fitsCapacity(load, limit []int) bool {
	for i := range load {
		if load[i] < 0 {
			return false
		}
		if i < len(limit) && load[i] > limit[i] {
			return false
		}
	}
	return true
}

// TourCost is the monetary cost of a scheduled tour plus objective
// reweighting of its time and distance components.
func (p *Problem) TourCost(t *Tour, sc TourSchedule) float64 {
	if t.Len() == 0 {
		return 0
	}
	v := p.Vehicles[t.Vehicle]
	dur := sc.EndTime - v.ShiftStart
	wDrive := p.weight("driveTime", 1)
	wDist := p.weight("distance", 1)
	return v.Costs.Fixed + wDist*v.Costs.PerMeter*sc.DistM + wDrive*v.Costs.PerSec*dur
}

// Cost computes the full solution cost; infeasible tours contribute +Inf.
func (p *Problem) Cost(s *Solution) float64 {
	total := 0.0
	for _, t := range s.Tours {
		sc, ok := p.ScheduleTour(t)
		if !ok {
			return math.Inf(1)
		}
		total += p.TourCost(t, sc)
	}
	wFail := p.weight("failed", 1)
	total += wFail * unassignedPenalty * float64(len(s.Unassigned))
	return total
}

// vehicleCanServe checks the skill constraint for every node of a job.
func vehicleCanServe(v Vehicle, j JobRef) bool {
	if len(j.Skills) == 0 {
		return true
	}
	have := map[string]bool{}
	for _, s := range v.Skills {
		have[s] = true
	}
	for _, s := range j.Skills {
		if !have[s] {
			return false
		}
	}
	return true
}
