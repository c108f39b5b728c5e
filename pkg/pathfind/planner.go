package pathfind

import (
	"fmt"
	"time"

	"github.com/egresslab/go-egress/internal/log"
	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/hazard"
)

// Planner produces hazard-aware evacuation routes. The navigation graph
// is rebuilt by the owner whenever the grid changes materially; within a
// cycle the planner only reads the current graph and snapshot.
type Planner struct {
	cfg   Config
	graph *Graph
}

// New creates a planner with an empty graph. Call Rebuild before the
// first FindRoute.
func New(cfg Config) *Planner {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 1.0
	}
	if cfg.WalkingSpeed <= 0 {
		cfg.WalkingSpeed = DefaultConfig().WalkingSpeed
	}
	return &Planner{cfg: cfg}
}

// Config returns the planner configuration.
func (p *Planner) Config() Config {
	return p.cfg
}

// SetBounds replaces the grid bounds. The graph must be rebuilt before
// the next FindRoute for the change to take effect.
func (p *Planner) SetBounds(b Bounds) {
	p.cfg.Bounds = b
}

// SetFloorHeight replaces the floor height used for floor math.
// Non-positive values are ignored.
func (p *Planner) SetFloorHeight(h float64) {
	if h > 0 {
		p.cfg.FloorHeight = h
	}
}

// Rebuild reconstructs the navigation graph from a grid snapshot.
func (p *Planner) Rebuild(snap hazard.Snapshot) {
	start := time.Now()
	p.graph = BuildGraph(snap, p.cfg.Bounds, p.cfg.CellSize)
	log.Debug("navigation graph rebuilt",
		"nodes", p.graph.NodeCount(),
		"edges", p.graph.EdgeCount(),
		"took", time.Since(start))
}

// NodeCount returns the current graph node count, zero before the first
// rebuild.
func (p *Planner) NodeCount() int {
	if p.graph == nil {
		return 0
	}
	return p.graph.NodeCount()
}

// EdgeCount returns the current graph edge count.
func (p *Planner) EdgeCount() int {
	if p.graph == nil {
		return 0
	}
	return p.graph.EdgeCount()
}

// FindRoute computes the cheapest safe route from start to goal against
// the given snapshot. Cross-floor requests are routed through the
// nearest stairwell; same-floor requests run A* over the graph.
func (p *Planner) FindRoute(start, goal geometry.Vector3, snap hazard.Snapshot) (*Route, error) {
	startFloor := geometry.FloorOf(start, p.cfg.FloorHeight)
	goalFloor := geometry.FloorOf(goal, p.cfg.FloorHeight)
	if startFloor != goalFloor {
		return p.floorTransitionRoute(start, goal, startFloor, goalFloor, snap)
	}

	if p.graph == nil {
		return nil, ErrNoRoute
	}

	cells := p.graph.astar(p.cfg.cellOf(start), p.cfg.cellOf(goal))
	if cells == nil {
		return nil, ErrNoRoute
	}

	waypoints := make([]Waypoint, len(cells))
	for i, key := range cells {
		waypoints[i] = Waypoint{
			ID:       fmt.Sprintf("wp-%d", i),
			Position: p.cfg.positionOf(key, start.Y),
			Type:     WaypointNormal,
		}
	}
	waypoints = p.simplify(waypoints)
	waypoints[len(waypoints)-1].Type = WaypointExit

	return p.assemble(waypoints, snap), nil
}

// assemble finishes a route: distance, time estimate, hazard warnings.
func (p *Planner) assemble(waypoints []Waypoint, snap hazard.Snapshot) *Route {
	var distance float64
	for i := 1; i < len(waypoints); i++ {
		distance += geometry.Distance(waypoints[i-1].Position, waypoints[i].Position)
	}
	return &Route{
		Waypoints:      waypoints,
		Distance:       distance,
		EstimatedTime:  distance / p.cfg.WalkingSpeed,
		HazardWarnings: p.annotate(waypoints, snap),
		ComputedAt:     time.Now(),
	}
}
