package guidance

import (
	"fmt"
	"math"
	"time"

	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/pathfind"
)

// Generator tunables.
const (
	// turnThreshold is the heading change below which no turn action is
	// emitted.
	turnThreshold = 15.0

	// minSegment is the segment length below which no navigate action is
	// emitted.
	minSegment = 1.0

	// markerInterval places a waypoint marker every Nth waypoint.
	markerInterval = 5

	// overlayHalfSize is the half-width of hazard overlay squares.
	overlayHalfSize = 3.0

	// actionsPerPayload caps how many upcoming actions ride along in one
	// message.
	actionsPerPayload = 3
)

// Generator converts routes into guidance payloads.
type Generator struct{}

// New creates a guidance generator.
func New() *Generator {
	return &Generator{}
}

// Actions produces the full turn-by-turn sequence for a route, given the
// occupant's current heading. Routes with fewer than two waypoints yield
// a single arrived action.
func (g *Generator) Actions(route *pathfind.Route, heading float64) []Action {
	if len(route.Waypoints) < 2 {
		return []Action{arrivedAction()}
	}

	var actions []Action
	current := heading
	for i := 1; i < len(route.Waypoints); i++ {
		from := route.Waypoints[i-1].Position
		to := route.Waypoints[i].Position

		bearing := geometry.Bearing(from, to)
		turn := geometry.TurnAngle(current, bearing)
		if math.Abs(turn) > turnThreshold {
			dir := TurnLeft
			if turn > 0 {
				dir = TurnRight
			}
			actions = append(actions, Action{
				Type:        ActionTurn,
				Direction:   dir,
				Angle:       math.Abs(turn),
				Description: fmt.Sprintf("Turn %s %.0f degrees", dir, math.Abs(turn)),
			})
		}

		if dist := geometry.Distance(from, to); dist > minSegment {
			actions = append(actions, Action{
				Type:        ActionNavigate,
				Distance:    dist,
				Description: fmt.Sprintf("Walk %.0f meters", dist),
			})
		}
		current = bearing
	}
	return append(actions, arrivedAction())
}

func arrivedAction() Action {
	return Action{
		Type:        ActionArrived,
		Description: "You have arrived at the exit",
	}
}

// RouteUpdate builds the per-cycle guidance payload for one occupant.
func (g *Generator) RouteUpdate(occupantID string, route *pathfind.Route, heading float64) *Payload {
	actions := g.Actions(route, heading)

	next := actions
	if len(next) > actionsPerPayload {
		next = next[:actionsPerPayload]
	}

	return &Payload{
		Type:       PayloadRouteUpdate,
		OccupantID: occupantID,
		Timestamp:  time.Now(),
		Route: &RouteSummary{
			Distance:      route.Distance,
			EstimatedTime: route.EstimatedTime,
			WaypointCount: len(route.Waypoints),
			ComputedAt:    route.ComputedAt,
		},
		NextActions:   next,
		Visualization: g.visualization(route),
		Audio:         g.audio(actions, route.HazardWarnings),
		Warnings:      route.HazardWarnings,
	}
}

// HazardAlert builds an out-of-band warning payload, bypassing the
// normal per-cycle guidance.
func (g *Generator) HazardAlert(occupantID string, warning pathfind.HazardWarning) *Payload {
	urgency := urgencyFor(warning.Severity)
	instruction := warning.Message
	switch urgency {
	case UrgencyCritical:
		instruction = "CRITICAL: " + instruction
	case UrgencyHigh:
		instruction = "Warning: " + instruction
	default:
		instruction = "Caution: " + instruction
	}

	return &Payload{
		Type:       PayloadHazardAlert,
		OccupantID: occupantID,
		Timestamp:  time.Now(),
		Audio:      &Audio{Instruction: instruction, Urgency: urgency},
		Warnings:   []pathfind.HazardWarning{warning},
	}
}

// EvacuationComplete builds the one-shot arrival notification.
func (g *Generator) EvacuationComplete(occupantID, exitID string) *Payload {
	return &Payload{
		Type:       PayloadEvacuationComplete,
		OccupantID: occupantID,
		Timestamp:  time.Now(),
		Audio: &Audio{
			Instruction: fmt.Sprintf("You have reached exit %s. You are safe.", exitID),
			Urgency:     UrgencyLow,
		},
	}
}
