// Package guidance turns computed routes into occupant-facing output:
// turn-by-turn actions, an audio instruction, and visualization data
// for the AR overlay.
package guidance

import (
	"time"

	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/pathfind"
)

// ActionType classifies a turn-by-turn action.
type ActionType string

const (
	ActionTurn     ActionType = "turn"
	ActionNavigate ActionType = "navigate"
	ActionArrived  ActionType = "arrived"
)

// TurnDirection is the side of a turn action.
type TurnDirection string

const (
	TurnLeft  TurnDirection = "left"
	TurnRight TurnDirection = "right"
)

// Action is one turn-by-turn instruction.
type Action struct {
	Type        ActionType    `json:"type"`
	Description string        `json:"description"`
	Direction   TurnDirection `json:"direction,omitempty"` // turn only
	Angle       float64       `json:"angle,omitempty"`     // degrees, turn only
	Distance    float64       `json:"distance,omitempty"`  // meters, navigate only
}

// Urgency ranks how insistently audio guidance should be delivered.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Audio is the spoken instruction for one guidance message.
type Audio struct {
	Instruction string  `json:"instruction"`
	Urgency     Urgency `json:"urgency"`
}

// Marker is a labeled point in the visualization.
type Marker struct {
	Position geometry.Vector3 `json:"position"`
	Label    string           `json:"label,omitempty"`
	Kind     string           `json:"kind"` // "waypoint" or "exit"
}

// HazardOverlay is an axis-aligned square region highlighting a hazard.
type HazardOverlay struct {
	Center    geometry.Vector3 `json:"center"`
	HalfSize  float64          `json:"halfSize"` // meters from center to edge
	Type      string           `json:"type"`
	Intensity int              `json:"intensity"` // 2-5, derived from severity
}

// VisualizationData is the AR rendering payload.
type VisualizationData struct {
	PathLine       []geometry.Vector3 `json:"pathLine"`
	Markers        []Marker           `json:"markers"`
	HazardOverlays []HazardOverlay    `json:"hazardOverlays"`
}

// RouteSummary is the condensed route info carried by a payload.
type RouteSummary struct {
	Distance      float64   `json:"distance"`
	EstimatedTime float64   `json:"estimatedTime"`
	WaypointCount int       `json:"waypointCount"`
	ComputedAt    time.Time `json:"computedAt"`
}

// PayloadType distinguishes guidance message kinds.
type PayloadType string

const (
	PayloadRouteUpdate        PayloadType = "route-update"
	PayloadHazardAlert        PayloadType = "hazard-alert"
	PayloadEvacuationComplete PayloadType = "evacuation-complete"
)

// Payload is a complete occupant-facing guidance message. Constructed
// fresh per delivery; ownership transfers to the transport on emission.
type Payload struct {
	Type          PayloadType              `json:"type"`
	OccupantID    string                   `json:"occupantId"`
	Timestamp     time.Time                `json:"timestamp"`
	Route         *RouteSummary            `json:"route,omitempty"`
	NextActions   []Action                 `json:"nextActions,omitempty"`
	Visualization *VisualizationData       `json:"visualization,omitempty"`
	Audio         *Audio                   `json:"audio,omitempty"`
	Warnings      []pathfind.HazardWarning `json:"warnings,omitempty"`
}
