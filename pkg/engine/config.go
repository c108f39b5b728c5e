package engine

import (
	"time"

	"github.com/egresslab/go-egress/pkg/assignment"
	"github.com/egresslab/go-egress/pkg/pathfind"
)

// Config holds the orchestration loop tunables.
type Config struct {
	// CyclePeriod is the fixed cadence of the coordination cycle.
	CyclePeriod time.Duration

	// Workers bounds the plan+deliver fan-out per cycle.
	Workers int

	// RebuildThreshold is the number of grid cells that must be touched
	// by merges before the navigation graph is rebuilt. Zero rebuilds on
	// any change.
	RebuildThreshold int

	// ArrivalRadius is the distance to the assigned exit below which an
	// occupant counts as evacuated.
	ArrivalRadius float64

	// StaleTimeout drops occupants with no position update for this
	// long. Zero disables pruning.
	StaleTimeout time.Duration

	// Planner and Assignment configure the per-cycle solvers.
	Planner    pathfind.Config
	Assignment assignment.Config
}

// DefaultConfig returns the recommended engine configuration.
func DefaultConfig() Config {
	return Config{
		CyclePeriod:      1 * time.Second,
		Workers:          4,
		RebuildThreshold: 0,
		ArrivalRadius:    2.0,
		StaleTimeout:     30 * time.Second,
		Planner:          pathfind.DefaultConfig(),
		Assignment:       assignment.DefaultConfig(),
	}
}
