package pathfind

import (
	"fmt"
	"math"

	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/hazard"
)

// floorTransitionRoute routes between floors through a stairwell: the
// nearest anchor to the start by planar distance. The waypoint chain is
// start → stairwell entry → one waypoint per floor crossed → stairwell
// exit → goal, with distance summed over 3D segment lengths.
func (p *Planner) floorTransitionRoute(start, goal geometry.Vector3, startFloor, goalFloor int, snap hazard.Snapshot) (*Route, error) {
	stairwell, err := p.nearestStairwell(start)
	if err != nil {
		return nil, err
	}

	waypoints := []Waypoint{{
		ID:       "wp-start",
		Position: start,
		Type:     WaypointNormal,
	}}

	entry := geometry.Vector3{X: stairwell.X, Y: start.Y, Z: stairwell.Z}
	waypoints = append(waypoints, Waypoint{
		ID:       fmt.Sprintf("stair-%s-entry", stairwell.ID),
		Position: entry,
		Type:     WaypointStairwell,
	})

	// One waypoint per floor crossed, descending or ascending.
	step := -1
	if goalFloor > startFloor {
		step = 1
	}
	for floor := startFloor + step; floor != goalFloor; floor += step {
		waypoints = append(waypoints, Waypoint{
			ID: fmt.Sprintf("stair-%s-f%d", stairwell.ID, floor),
			Position: geometry.Vector3{
				X: stairwell.X,
				Y: float64(floor) * p.cfg.FloorHeight,
				Z: stairwell.Z,
			},
			Type: WaypointStairwell,
		})
	}

	exit := geometry.Vector3{X: stairwell.X, Y: goal.Y, Z: stairwell.Z}
	waypoints = append(waypoints, Waypoint{
		ID:       fmt.Sprintf("stair-%s-exit", stairwell.ID),
		Position: exit,
		Type:     WaypointStairwell,
	})

	waypoints = append(waypoints, Waypoint{
		ID:       "wp-goal",
		Position: goal,
		Type:     WaypointExit,
	})

	return p.assemble(waypoints, snap), nil
}

// nearestStairwell picks the anchor closest to pos by planar distance.
func (p *Planner) nearestStairwell(pos geometry.Vector3) (Stairwell, error) {
	if len(p.cfg.Stairwells) == 0 {
		return Stairwell{}, ErrNoStairwell
	}

	best := p.cfg.Stairwells[0]
	bestDist := math.Inf(1)
	for _, sw := range p.cfg.Stairwells {
		anchor := geometry.Vector3{X: sw.X, Z: sw.Z}
		d := geometry.PlanarDistance(pos, anchor)
		if d < bestDist {
			bestDist = d
			best = sw
		}
	}
	return best, nil
}
