package pathfind

import (
	"math"

	"github.com/egresslab/go-egress/pkg/geometry"
)

// simplify collapses near-collinear waypoints: an interior waypoint is
// kept only when the bearing change between its incoming and outgoing
// segments exceeds the turn threshold. First and last waypoints are
// always retained. Idempotent for a fixed threshold.
func (p *Planner) simplify(waypoints []Waypoint) []Waypoint {
	if len(waypoints) <= 2 {
		return waypoints
	}

	out := []Waypoint{waypoints[0]}
	for i := 1; i < len(waypoints)-1; i++ {
		prev := out[len(out)-1].Position
		cur := waypoints[i].Position
		next := waypoints[i+1].Position

		in := geometry.Bearing(prev, cur)
		outBearing := geometry.Bearing(cur, next)
		if math.Abs(geometry.TurnAngle(in, outBearing)) > p.cfg.TurnThreshold {
			out = append(out, waypoints[i])
		}
	}
	return append(out, waypoints[len(waypoints)-1])
}
