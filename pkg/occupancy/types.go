// Package occupancy tracks the live occupant roster and exit inventory.
// Stores are single-writer from the engine's perspective: external
// updates land between cycles and each cycle works from a snapshot copy.
package occupancy

import (
	"time"

	"github.com/egresslab/go-egress/pkg/geometry"
)

// Occupant is one tracked person needing evacuation guidance.
type Occupant struct {
	ID               string           `json:"id"`
	Position         geometry.Vector3 `json:"position"`
	Heading          float64          `json:"heading"`          // degrees, compass bearing of travel
	ViewingDirection float64          `json:"viewingDirection"` // degrees
	Speed            float64          `json:"speed"`            // m/s
	GroupSize        int              `json:"groupSize"`
	LastUpdate       time.Time        `json:"lastUpdate"`
}

// ExitStatus marks whether an exit is usable.
type ExitStatus string

const (
	ExitClear   ExitStatus = "clear"
	ExitBlocked ExitStatus = "blocked"
)

// Exit is a building egress point with finite throughput capacity.
// CurrentLoad may exceed Capacity: overload is signaled by the
// assignment engine's imbalance warning, never rejected.
type Exit struct {
	ID          string           `json:"id"`
	Position    geometry.Vector3 `json:"position"`
	Status      ExitStatus       `json:"status"`
	Capacity    int              `json:"capacity"`
	CurrentLoad int              `json:"currentLoad"`
}

// Eligible reports whether the exit can take further assignments.
func (e Exit) Eligible() bool {
	return e.Status == ExitClear && e.CurrentLoad < e.Capacity
}
