package pathfind

import "errors"

// Sentinel errors for planning failures. All are per-occupant soft
// failures: the caller skips the occupant and continues.
var (
	// ErrNoRoute is returned when no path exists between start and goal,
	// including when either endpoint is isolated by hazards.
	ErrNoRoute = errors.New("pathfind: no route found")

	// ErrNoStairwell is returned when a floor transition is required but
	// no stairwell anchors are configured.
	ErrNoStairwell = errors.New("pathfind: no stairwell configured")
)
