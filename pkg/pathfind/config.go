package pathfind

import (
	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/hazard"
)

// Stairwell is a configured stairwell anchor point. Stairwells span all
// floors at a fixed (X, Z) position.
type Stairwell struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Z  float64 `json:"z"`
}

// Bounds is the floor-local grid extent in cells.
type Bounds struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether a cell coordinate lies inside the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Config holds all tunable parameters for route planning.
type Config struct {
	// Grid geometry
	Bounds   Bounds
	CellSize float64 // meters per cell

	// Building geometry
	FloorHeight float64     // meters per floor
	Stairwells  []Stairwell // anchor points for floor transitions

	// Route shaping
	TurnThreshold float64 // degrees; waypoints with smaller bearing change are dropped
	WalkingSpeed  float64 // m/s, used for time estimates
}

// DefaultConfig returns the recommended planner configuration.
func DefaultConfig() Config {
	return Config{
		Bounds:        Bounds{Width: 100, Height: 100},
		CellSize:      1.0,
		FloorHeight:   3.5,
		TurnThreshold: 15.0, // drop near-collinear waypoints
		WalkingSpeed:  1.2,  // average evacuation walking speed
	}
}

// cellOf maps a world position to its floor-local grid cell.
func (c Config) cellOf(pos geometry.Vector3) hazard.CellKey {
	return hazard.CellKey{
		X: int(roundHalfUp(pos.X / c.CellSize)),
		Y: int(roundHalfUp(pos.Z / c.CellSize)),
	}
}

// positionOf maps a grid cell back to a world position at height y.
func (c Config) positionOf(key hazard.CellKey, y float64) geometry.Vector3 {
	return geometry.Vector3{
		X: float64(key.X) * c.CellSize,
		Y: y,
		Z: float64(key.Y) * c.CellSize,
	}
}

func roundHalfUp(v float64) float64 {
	if v >= 0 {
		return float64(int(v + 0.5))
	}
	return float64(int(v - 0.5))
}
