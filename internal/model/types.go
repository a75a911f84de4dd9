package model

// Pragmatic problem and solution types shared by the formats, the solver
// bridge, the stores, and the API.

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Problem is the pragmatic problem definition.
type Problem struct {
	Plan       Plan               `json:"plan"`
	Fleet      Fleet              `json:"fleet"`
	Objectives map[string]float64 `json:"objectives,omitempty"`
}

type Plan struct {
	Jobs []Job `json:"jobs"`
}

type Job struct {
	ID         string   `json:"id"`
	Skills     []string `json:"skills,omitempty"`
	Deliveries []Task   `json:"deliveries,omitempty"`
	Pickups    []Task   `json:"pickups,omitempty"`
}

// Task is a single demand of a job. Exactly one of its places is visited.
type Task struct {
	Places []Place `json:"places"`
	Demand []int   `json:"demand,omitempty"`
}

type Place struct {
	Location Location    `json:"location"`
	Duration float64     `json:"duration"`
	Times    [][2]string `json:"times,omitempty"`
}

type Fleet struct {
	Vehicles []VehicleType `json:"vehicles"`
	Profiles []Profile     `json:"profiles,omitempty"`
}

type Profile struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type VehicleType struct {
	TypeID     string       `json:"typeId"`
	VehicleIDs []string     `json:"vehicleIds"`
	Profile    string       `json:"profile,omitempty"`
	Costs      VehicleCosts `json:"costs"`
	Shifts     []Shift      `json:"shifts"`
	Capacity   []int        `json:"capacity"`
	Skills     []string     `json:"skills,omitempty"`
}

type VehicleCosts struct {
	Fixed    float64 `json:"fixed"`
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
}

type Shift struct {
	Start ShiftStart `json:"start"`
	End   *ShiftEnd  `json:"end,omitempty"`
}

type ShiftStart struct {
	Earliest string   `json:"earliest"`
	Location Location `json:"location"`
}

type ShiftEnd struct {
	Latest   string   `json:"latest"`
	Location Location `json:"location"`
}

// Solution is the pragmatic solution document.
type Solution struct {
	Statistic  Statistic       `json:"statistic"`
	Tours      []Tour          `json:"tours"`
	Unassigned []UnassignedJob `json:"unassigned,omitempty"`
	Extras     *Extras         `json:"extras,omitempty"`
}

type Statistic struct {
	Cost     float64 `json:"cost"`
	Distance int     `json:"distance"`
	Duration int     `json:"duration"`
	Times    Times   `json:"times"`
}

type Times struct {
	Driving int `json:"driving"`
	Serving int `json:"serving"`
	Waiting int `json:"waiting"`
}

type Tour struct {
	VehicleID  string    `json:"vehicleId"`
	TypeID     string    `json:"typeId"`
	ShiftIndex int       `json:"shiftIndex"`
	Stops      []Stop    `json:"stops"`
	Statistic  Statistic `json:"statistic"`
}

type Stop struct {
	Location   Location   `json:"location"`
	Time       StopTime   `json:"time"`
	Distance   int        `json:"distance"`
	Load       []int      `json:"load"`
	Activities []Activity `json:"activities"`
}

type StopTime struct {
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
}

// Activity types mirror the pragmatic format: departure and arrival mark the
// shift terminals, delivery/pickup carry a job id.
type Activity struct {
	JobID string `json:"jobId"`
	Type  string `json:"type"`
}

type UnassignedJob struct {
	JobID   string             `json:"jobId"`
	Reasons []UnassignedReason `json:"reasons"`
}

type UnassignedReason struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Extras carries solver diagnostics attached to a solution.
type Extras struct {
	Iterations int     `json:"iterations,omitempty"`
	Seed       int64   `json:"seed,omitempty"`
	BestCost   float64 `json:"bestCost,omitempty"`
}

// SolveRequest is the API request body for POST /v1/solve.
type SolveRequest struct {
	ProblemID      string             `json:"problemId"`
	TimeBudgetMs   int                `json:"timeBudgetMs,omitempty"`
	MaxGenerations int                `json:"maxGenerations,omitempty"`
	Seed           int64              `json:"seed,omitempty"`
	InitTemp       float64            `json:"initTemp,omitempty"`
	Cooling        float64            `json:"cooling,omitempty"`
	Objectives     map[string]float64 `json:"objectives,omitempty"`
	Async          bool               `json:"async,omitempty"`
}

// SolutionRecord is the stored wrapper around a solution document.
type SolutionRecord struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	ProblemID string    `json:"problemId"`
	Status    string    `json:"status"` // pending, running, completed, failed
	Error     string    `json:"error,omitempty"`
	CreatedAt string    `json:"createdAt"`
	Solution  *Solution `json:"solution,omitempty"`
}

// ProblemRecord is the stored wrapper around a problem document.
type ProblemRecord struct {
	ID        string   `json:"id"`
	TenantID  string   `json:"tenantId"`
	Name      string   `json:"name,omitempty"`
	CreatedAt string   `json:"createdAt"`
	Problem   *Problem `json:"problem,omitempty"`
	Jobs      int      `json:"jobs"`
	Vehicles  int      `json:"vehicles"`
}

type SubscriptionRequest struct {
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret"`
}

type Subscription struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret,omitempty"`
}
