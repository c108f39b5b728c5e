package pathfind

import (
	"errors"
	"testing"

	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/hazard"
)

func TestFloorTransition_RoutesThroughNearestStairwell(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stairwells = []Stairwell{
		{ID: "north", X: 5, Z: 5},
		{ID: "south", X: 40, Z: 40},
	}
	p := New(cfg)
	snap := hazard.NewGrid().Snapshot()

	// Start on floor 2 near the north stairwell, goal on the ground floor.
	start := geometry.Vector3{X: 8, Y: 7, Z: 6}
	goal := geometry.Vector3{X: 20, Y: 0, Z: 20}

	route, err := p.FindRoute(start, goal, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Chain: start, entry, one waypoint for floor 1, exit, goal.
	if len(route.Waypoints) != 5 {
		t.Fatalf("waypoint count: got %d, want 5", len(route.Waypoints))
	}

	entry := route.Waypoints[1]
	if entry.Type != WaypointStairwell {
		t.Errorf("entry type: got %q, want stairwell", entry.Type)
	}
	if entry.Position.X != 5 || entry.Position.Z != 5 {
		t.Errorf("routed via %v, want nearest stairwell at (5,5)", entry.Position)
	}

	mid := route.Waypoints[2]
	if mid.Position.Y != 3.5 {
		t.Errorf("intermediate floor waypoint Y: got %v, want 3.5", mid.Position.Y)
	}

	last := route.Waypoints[len(route.Waypoints)-1]
	if last.Type != WaypointExit {
		t.Errorf("final waypoint type: got %q, want exit", last.Type)
	}

	// Distance is the sum of 3D segment lengths; time at walking speed.
	var want float64
	for i := 1; i < len(route.Waypoints); i++ {
		want += geometry.Distance(route.Waypoints[i-1].Position, route.Waypoints[i].Position)
	}
	if route.Distance != want {
		t.Errorf("distance: got %v, want %v", route.Distance, want)
	}
	if route.EstimatedTime != want/cfg.WalkingSpeed {
		t.Errorf("time: got %v, want %v", route.EstimatedTime, want/cfg.WalkingSpeed)
	}
}

func TestFloorTransition_Ascending(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stairwells = []Stairwell{{ID: "main", X: 10, Z: 10}}
	p := New(cfg)

	route, err := p.FindRoute(
		geometry.Vector3{X: 2, Y: 0, Z: 2},
		geometry.Vector3{X: 2, Y: 10.5, Z: 2}, // floor 3
		hazard.NewGrid().Snapshot(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// start, entry, floors 1 and 2, exit, goal
	if len(route.Waypoints) != 6 {
		t.Fatalf("waypoint count: got %d, want 6", len(route.Waypoints))
	}
	if route.Waypoints[2].Position.Y != 3.5 || route.Waypoints[3].Position.Y != 7.0 {
		t.Errorf("intermediate floors: got Y=%v and Y=%v, want 3.5 and 7.0",
			route.Waypoints[2].Position.Y, route.Waypoints[3].Position.Y)
	}
}

func TestFloorTransition_NoStairwellConfigured(t *testing.T) {
	p := New(DefaultConfig())

	_, err := p.FindRoute(
		geometry.Vector3{Y: 7},
		geometry.Vector3{Y: 0},
		hazard.NewGrid().Snapshot(),
	)
	if !errors.Is(err, ErrNoStairwell) {
		t.Errorf("expected ErrNoStairwell, got %v", err)
	}
}

// TestFloorTransition_ReferenceBuilding pins the waypoint chain for the
// original demo building: a two-floor office with a single east
// stairwell. Regression fixture; the general algorithm above must keep
// reproducing this exact sequence.
func TestFloorTransition_ReferenceBuilding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stairwells = []Stairwell{{ID: "east", X: 25, Z: 12}}
	p := New(cfg)

	route, err := p.FindRoute(
		geometry.Vector3{X: 10, Y: 3.5, Z: 8},  // office, floor 1
		geometry.Vector3{X: 30, Y: 0, Z: 2},    // ground-floor exit
		hazard.NewGrid().Snapshot(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fixture := []geometry.Vector3{
		{X: 10, Y: 3.5, Z: 8}, // start
		{X: 25, Y: 3.5, Z: 12}, // stairwell entry, floor 1
		{X: 25, Y: 0, Z: 12},  // stairwell exit, ground
		{X: 30, Y: 0, Z: 2},   // exit
	}
	if len(route.Waypoints) != len(fixture) {
		t.Fatalf("waypoint count: got %d, want %d", len(route.Waypoints), len(fixture))
	}
	for i, want := range fixture {
		if route.Waypoints[i].Position != want {
			t.Errorf("waypoint %d: got %v, want %v", i, route.Waypoints[i].Position, want)
		}
	}
}
