package engine

import "time"

// Metrics is a point-in-time snapshot of the coordination loop. All
// counters refer to the most recently completed cycle except the
// cumulative CycleCount and Evacuated totals.
type Metrics struct {
	CycleCount  int64   `json:"cycleCount"`
	LastCycleMs float64 `json:"lastCycleMs"`

	Occupants   int `json:"occupants"`
	Exits       int `json:"exits"`
	HazardCells int `json:"hazardCells"`

	// Assignments is the size of the last cycle's occupant-to-exit
	// assignment map; RouteFailures the number of assigned occupants
	// skipped because planning or delivery failed.
	Assignments   int   `json:"assignments"`
	RouteFailures int   `json:"routeFailures"`
	Evacuated     int64 `json:"evacuated"`

	GraphNodes int `json:"graphNodes"`
	GraphEdges int `json:"graphEdges"`

	UpdatedAt time.Time `json:"updatedAt"`
}
