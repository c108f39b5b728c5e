package pathfind

import (
	"errors"
	"math"
	"testing"

	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/hazard"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func testPlanner(bounds Bounds) *Planner {
	cfg := DefaultConfig()
	cfg.Bounds = bounds
	return New(cfg)
}

func TestFindRoute_ClearGridStraightLine(t *testing.T) {
	p := testPlanner(Bounds{Width: 20, Height: 20})
	p.Rebuild(hazard.NewGrid().Snapshot())

	// Grid-aligned start and goal on an unobstructed grid: path length
	// must equal the straight-line grid distance.
	route, err := p.FindRoute(geometry.Vector3{X: 2, Z: 5}, geometry.Vector3{X: 12, Z: 5}, hazard.NewGrid().Snapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(route.Distance, 10) {
		t.Errorf("distance: got %v, want 10", route.Distance)
	}
	if route.EstimatedTime <= 0 {
		t.Errorf("estimated time should be positive, got %v", route.EstimatedTime)
	}

	last := route.Waypoints[len(route.Waypoints)-1]
	if last.Type != WaypointExit {
		t.Errorf("final waypoint type: got %q, want %q", last.Type, WaypointExit)
	}
	if len(route.HazardWarnings) != 0 {
		t.Errorf("clear grid produced %d warnings", len(route.HazardWarnings))
	}
}

func TestFindRoute_DiagonalDistance(t *testing.T) {
	p := testPlanner(Bounds{Width: 20, Height: 20})
	snap := hazard.NewGrid().Snapshot()
	p.Rebuild(snap)

	route, err := p.FindRoute(geometry.Vector3{X: 0, Z: 0}, geometry.Vector3{X: 5, Z: 5}, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 5 * math.Sqrt2
	if math.Abs(route.Distance-want) > 1e-6 {
		t.Errorf("diagonal distance: got %v, want %v", route.Distance, want)
	}
}

func TestFindRoute_AvoidsImpassableFire(t *testing.T) {
	p := testPlanner(Bounds{Width: 3, Height: 10})
	grid := hazard.NewGrid()

	// Wall of impassable fire across the middle, no gaps.
	grid.Merge(map[hazard.CellKey]*hazard.Cell{
		{X: 0, Y: 5}: {Fire: &hazard.Fire{Intensity: 5}},
		{X: 1, Y: 5}: {Fire: &hazard.Fire{Intensity: 5}},
		{X: 2, Y: 5}: {Fire: &hazard.Fire{Intensity: 5}},
	})
	snap := grid.Snapshot()
	p.Rebuild(snap)

	for x := 0; x < 3; x++ {
		if p.graph.HasNode(hazard.CellKey{X: x, Y: 5}) {
			t.Errorf("burning cell (%d,5) should not be a graph node", x)
		}
	}

	_, err := p.FindRoute(geometry.Vector3{X: 1, Z: 0}, geometry.Vector3{X: 1, Z: 9}, snap)
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("expected ErrNoRoute through fire wall, got %v", err)
	}
}

func TestFindRoute_PrefersDetourOverHazard(t *testing.T) {
	p := testPlanner(Bounds{Width: 10, Height: 10})
	grid := hazard.NewGrid()

	// Heavy but passable fire directly on the straight path.
	grid.Merge(map[hazard.CellKey]*hazard.Cell{
		{X: 5, Y: 5}: {Fire: &hazard.Fire{Intensity: 4}},
	})
	snap := grid.Snapshot()
	p.Rebuild(snap)

	route, err := p.FindRoute(geometry.Vector3{X: 0, Z: 5}, geometry.Vector3{X: 9, Z: 5}, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, wp := range route.Waypoints {
		key := p.cfg.cellOf(wp.Position)
		if key.X == 5 && key.Y == 5 {
			t.Error("route passes through the burning cell despite cheap detours")
		}
	}
}

func TestFindRoute_StartIsolatedByHazard(t *testing.T) {
	p := testPlanner(Bounds{Width: 10, Height: 10})
	grid := hazard.NewGrid()
	grid.Merge(map[hazard.CellKey]*hazard.Cell{
		{X: 3, Y: 3}: {Obstacles: []hazard.Obstacle{{Type: "collapse", Severity: hazard.SeverityImpassable}}},
	})
	snap := grid.Snapshot()
	p.Rebuild(snap)

	// Start cell itself is not in the graph: soft failure, no panic.
	_, err := p.FindRoute(geometry.Vector3{X: 3, Z: 3}, geometry.Vector3{X: 9, Z: 9}, snap)
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("expected ErrNoRoute for isolated start, got %v", err)
	}
}

func TestFindRoute_HazardAnnotation(t *testing.T) {
	p := testPlanner(Bounds{Width: 10, Height: 3})
	grid := hazard.NewGrid()
	grid.Merge(map[hazard.CellKey]*hazard.Cell{
		{X: 3, Y: 1}: {Fire: &hazard.Fire{Intensity: 2.5}},  // medium
		{X: 5, Y: 1}: {Smoke: &hazard.Smoke{Intensity: 4.5}}, // high
	})
	snap := grid.Snapshot()
	p.Rebuild(snap)

	route, err := p.FindRoute(geometry.Vector3{X: 0, Z: 1}, geometry.Vector3{X: 9, Z: 1}, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The straight-line route may detour; rebuild on a narrow corridor so
	// hazards stay on the path. With height 3 and mild penalties the
	// cheapest path may sidestep, so just require that any reported
	// warnings carry correct severities.
	for _, w := range route.HazardWarnings {
		switch w.Type {
		case WarningFire:
			if w.Severity != SeverityMedium {
				t.Errorf("fire 2.5 severity: got %q, want medium", w.Severity)
			}
		case WarningSmoke:
			if w.Severity != SeverityHigh {
				t.Errorf("smoke 4.5 severity: got %q, want high", w.Severity)
			}
		}
	}
}

func TestFireSeverityThresholds(t *testing.T) {
	cases := []struct {
		intensity float64
		want      WarningSeverity
	}{
		{4.2, SeverityCritical},
		{3.5, SeverityHigh},
		{2.5, SeverityMedium},
	}
	for _, tc := range cases {
		if got := fireSeverity(tc.intensity); got != tc.want {
			t.Errorf("fireSeverity(%v): got %q, want %q", tc.intensity, got, tc.want)
		}
	}

	if got := smokeSeverity(4.5); got != SeverityHigh {
		t.Errorf("smokeSeverity(4.5): got %q, want high", got)
	}
	if got := smokeSeverity(3); got != SeverityMedium {
		t.Errorf("smokeSeverity(3): got %q, want medium", got)
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	p := testPlanner(Bounds{Width: 30, Height: 30})

	// An L-shaped grid path: straight run, 90° turn, straight run.
	var waypoints []Waypoint
	for x := 0; x <= 10; x++ {
		waypoints = append(waypoints, Waypoint{
			Position: geometry.Vector3{X: float64(x)},
			Type:     WaypointNormal,
		})
	}
	for z := 1; z <= 10; z++ {
		waypoints = append(waypoints, Waypoint{
			Position: geometry.Vector3{X: 10, Z: float64(z)},
			Type:     WaypointNormal,
		})
	}

	once := p.simplify(waypoints)
	if len(once) != 3 {
		t.Fatalf("simplified length: got %d, want 3 (start, corner, end)", len(once))
	}

	twice := p.simplify(once)
	if len(twice) != len(once) {
		t.Fatalf("second pass changed length: %d → %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Position != twice[i].Position {
			t.Errorf("waypoint %d moved between passes", i)
		}
	}
}

func TestSimplify_KeepsEndpointsOfShortPaths(t *testing.T) {
	p := testPlanner(Bounds{Width: 10, Height: 10})

	two := []Waypoint{
		{Position: geometry.Vector3{X: 0}},
		{Position: geometry.Vector3{X: 1}},
	}
	if got := p.simplify(two); len(got) != 2 {
		t.Errorf("2-waypoint path: got %d waypoints, want 2", len(got))
	}

	one := []Waypoint{{Position: geometry.Vector3{}}}
	if got := p.simplify(one); len(got) != 1 {
		t.Errorf("1-waypoint path: got %d waypoints, want 1", len(got))
	}
}

func TestFindRoute_Deterministic(t *testing.T) {
	p := testPlanner(Bounds{Width: 15, Height: 15})
	snap := hazard.NewGrid().Snapshot()
	p.Rebuild(snap)

	start := geometry.Vector3{X: 1, Z: 1}
	goal := geometry.Vector3{X: 12, Z: 7}

	first, err := p.FindRoute(start, goal, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.FindRoute(start, goal, snap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again.Waypoints) != len(first.Waypoints) {
			t.Fatalf("run %d: waypoint count %d != %d", i, len(again.Waypoints), len(first.Waypoints))
		}
		for j := range first.Waypoints {
			if first.Waypoints[j].Position != again.Waypoints[j].Position {
				t.Fatalf("run %d: waypoint %d differs", i, j)
			}
		}
	}
}
