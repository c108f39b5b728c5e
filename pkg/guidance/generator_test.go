package guidance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/pathfind"
)

func routeOf(positions ...geometry.Vector3) *pathfind.Route {
	r := &pathfind.Route{}
	for _, p := range positions {
		r.Waypoints = append(r.Waypoints, pathfind.Waypoint{Position: p, Type: pathfind.WaypointNormal})
	}
	if n := len(r.Waypoints); n > 0 {
		r.Waypoints[n-1].Type = pathfind.WaypointExit
	}
	return r
}

func TestActions_ShortRoutesArriveImmediately(t *testing.T) {
	g := New()

	for _, route := range []*pathfind.Route{
		routeOf(),
		routeOf(geometry.Vector3{X: 1}),
	} {
		actions := g.Actions(route, 0)
		require.Len(t, actions, 1)
		assert.Equal(t, ActionArrived, actions[0].Type)
	}
}

func TestActions_StraightAhead(t *testing.T) {
	g := New()

	// Heading north, route goes north 10m: no turn, one navigate.
	route := routeOf(geometry.Vector3{}, geometry.Vector3{Z: 10})
	actions := g.Actions(route, 0)

	require.Len(t, actions, 2)
	assert.Equal(t, ActionNavigate, actions[0].Type)
	assert.InDelta(t, 10, actions[0].Distance, 1e-9)
	assert.Equal(t, ActionArrived, actions[1].Type)
}

func TestActions_TurnDirectionAndMagnitude(t *testing.T) {
	g := New()

	// Heading north, route goes east: 90° right turn.
	route := routeOf(geometry.Vector3{}, geometry.Vector3{X: 10})
	actions := g.Actions(route, 0)

	require.Len(t, actions, 3)
	assert.Equal(t, ActionTurn, actions[0].Type)
	assert.Equal(t, TurnRight, actions[0].Direction)
	assert.InDelta(t, 90, actions[0].Angle, 1e-9)

	// Heading north, route goes west: 90° left turn.
	route = routeOf(geometry.Vector3{}, geometry.Vector3{X: -10})
	actions = g.Actions(route, 0)
	require.Len(t, actions, 3)
	assert.Equal(t, TurnLeft, actions[0].Direction)
}

func TestActions_SmallTurnAndShortSegmentSkipped(t *testing.T) {
	g := New()

	// 10° bearing change stays under the turn threshold; 0.5m segment
	// stays under the navigate threshold.
	route := routeOf(
		geometry.Vector3{},
		geometry.Vector3{X: 0.08, Z: 0.45}, // ~10° off north, ~0.46m
	)
	actions := g.Actions(route, 0)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionArrived, actions[0].Type)
}

func TestActions_HeadingCarriesBetweenSegments(t *testing.T) {
	g := New()

	// North leg then east leg: the second turn is measured from the
	// updated heading (north), not from the original heading.
	route := routeOf(
		geometry.Vector3{},
		geometry.Vector3{Z: 10},
		geometry.Vector3{X: 10, Z: 10},
	)
	actions := g.Actions(route, 0)

	var turns []Action
	for _, a := range actions {
		if a.Type == ActionTurn {
			turns = append(turns, a)
		}
	}
	require.Len(t, turns, 1)
	assert.Equal(t, TurnRight, turns[0].Direction)
	assert.InDelta(t, 90, turns[0].Angle, 1e-9)
}

func TestRouteUpdate_PayloadShape(t *testing.T) {
	g := New()

	route := routeOf(
		geometry.Vector3{},
		geometry.Vector3{Z: 10},
		geometry.Vector3{X: 10, Z: 10},
		geometry.Vector3{X: 10, Z: 20},
	)
	route.Distance = 30
	route.EstimatedTime = 25

	p := g.RouteUpdate("occ-1", route, 0)

	assert.Equal(t, PayloadRouteUpdate, p.Type)
	assert.Equal(t, "occ-1", p.OccupantID)
	require.NotNil(t, p.Route)
	assert.Equal(t, 4, p.Route.WaypointCount)
	assert.LessOrEqual(t, len(p.NextActions), 3)
	require.NotNil(t, p.Visualization)
	assert.Len(t, p.Visualization.PathLine, 4)
	require.NotNil(t, p.Audio)
	assert.Equal(t, UrgencyLow, p.Audio.Urgency)
}

func TestAudio_JoinsFirstTwoActions(t *testing.T) {
	g := New()

	route := routeOf(geometry.Vector3{}, geometry.Vector3{X: 10})
	p := g.RouteUpdate("occ-1", route, 0)

	// First two actions: turn right 90, walk 10 meters.
	assert.Contains(t, p.Audio.Instruction, "Turn right 90 degrees")
	assert.Contains(t, p.Audio.Instruction, ", then Walk 10 meters")
}

func TestAudio_HazardClauseBySeverity(t *testing.T) {
	g := New()

	cases := []struct {
		severity pathfind.WarningSeverity
		urgency  Urgency
		clause   string
	}{
		{pathfind.SeverityCritical, UrgencyCritical, "CRITICAL:"},
		{pathfind.SeverityHigh, UrgencyHigh, "Warning:"},
		{pathfind.SeverityMedium, UrgencyMedium, "Caution:"},
		{pathfind.SeverityLow, UrgencyMedium, "Caution:"},
	}

	for _, tc := range cases {
		route := routeOf(geometry.Vector3{}, geometry.Vector3{Z: 10})
		route.HazardWarnings = []pathfind.HazardWarning{
			{Type: pathfind.WarningFire, Severity: tc.severity, Message: "fire"},
		}
		p := g.RouteUpdate("occ-1", route, 0)
		assert.Equal(t, tc.urgency, p.Audio.Urgency, "severity %s", tc.severity)
		assert.Contains(t, p.Audio.Instruction, tc.clause, "severity %s", tc.severity)
	}
}

func TestAudio_WorstSeverityWins(t *testing.T) {
	g := New()

	route := routeOf(geometry.Vector3{}, geometry.Vector3{Z: 10})
	route.HazardWarnings = []pathfind.HazardWarning{
		{Type: pathfind.WarningSmoke, Severity: pathfind.SeverityMedium},
		{Type: pathfind.WarningFire, Severity: pathfind.SeverityCritical},
		{Type: pathfind.WarningObstacle, Severity: pathfind.SeverityLow},
	}
	p := g.RouteUpdate("occ-1", route, 0)
	assert.Equal(t, UrgencyCritical, p.Audio.Urgency)
}

func TestVisualization_MarkersAndOverlays(t *testing.T) {
	g := New()

	// 12 waypoints: markers at indexes 5 and 10, exit marker at 11.
	var positions []geometry.Vector3
	for i := 0; i < 12; i++ {
		positions = append(positions, geometry.Vector3{X: float64(i)})
	}
	route := routeOf(positions...)
	route.HazardWarnings = []pathfind.HazardWarning{
		{Type: pathfind.WarningFire, Severity: pathfind.SeverityCritical, Location: geometry.Vector3{X: 6}},
		{Type: pathfind.WarningObstacle, Severity: pathfind.SeverityHigh, Location: geometry.Vector3{X: 8}},
	}

	vis := g.visualization(route)

	var waypointMarkers, exitMarkers int
	for _, m := range vis.Markers {
		switch m.Kind {
		case "waypoint":
			waypointMarkers++
		case "exit":
			exitMarkers++
			assert.Equal(t, "EXIT", m.Label)
		}
	}
	assert.Equal(t, 2, waypointMarkers)
	assert.Equal(t, 1, exitMarkers)

	// Obstacles get no overlay; the fire overlay is a ±3m square at
	// maximum intensity.
	require.Len(t, vis.HazardOverlays, 1)
	ov := vis.HazardOverlays[0]
	assert.Equal(t, "fire", ov.Type)
	assert.Equal(t, 3.0, ov.HalfSize)
	assert.Equal(t, 5, ov.Intensity)
}

func TestHazardAlert(t *testing.T) {
	g := New()

	p := g.HazardAlert("occ-9", pathfind.HazardWarning{
		Type:     pathfind.WarningFire,
		Severity: pathfind.SeverityCritical,
		Message:  "Fire ahead (intensity 4.8)",
	})

	assert.Equal(t, PayloadHazardAlert, p.Type)
	assert.Equal(t, "occ-9", p.OccupantID)
	assert.Equal(t, UrgencyCritical, p.Audio.Urgency)
	assert.True(t, strings.HasPrefix(p.Audio.Instruction, "CRITICAL: "))
}

func TestEvacuationComplete(t *testing.T) {
	g := New()

	p := g.EvacuationComplete("occ-2", "east")
	assert.Equal(t, PayloadEvacuationComplete, p.Type)
	assert.Contains(t, p.Audio.Instruction, "east")
	assert.Equal(t, UrgencyLow, p.Audio.Urgency)
}
