// Package pathfind builds a weighted navigation graph over the hazard
// grid and finds minimum-cost evacuation routes with A*.
package pathfind

import (
	"time"

	"github.com/egresslab/go-egress/pkg/geometry"
)

// WaypointType classifies a route waypoint.
type WaypointType string

const (
	WaypointNormal    WaypointType = "normal"
	WaypointStairwell WaypointType = "stairwell"
	WaypointExit      WaypointType = "exit"
)

// Waypoint is one point along a route.
type Waypoint struct {
	ID       string           `json:"id"`
	Position geometry.Vector3 `json:"position"`
	Type     WaypointType     `json:"type"`
}

// WarningType classifies a hazard warning along a route.
type WarningType string

const (
	WarningFire     WarningType = "fire"
	WarningSmoke    WarningType = "smoke"
	WarningWater    WarningType = "water"
	WarningObstacle WarningType = "obstacle"
)

// WarningSeverity ranks hazard warnings.
type WarningSeverity string

const (
	SeverityLow      WarningSeverity = "low"
	SeverityMedium   WarningSeverity = "medium"
	SeverityHigh     WarningSeverity = "high"
	SeverityCritical WarningSeverity = "critical"
)

// rank orders severities for comparison. Unknown severities rank lowest.
func (s WarningSeverity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 0
	}
	return -1
}

// AtLeast reports whether s is at least as severe as other.
func (s WarningSeverity) AtLeast(other WarningSeverity) bool {
	return s.rank() >= other.rank()
}

// HazardWarning flags a hazard on or near the route.
type HazardWarning struct {
	Type     WarningType      `json:"type"`
	Severity WarningSeverity  `json:"severity"`
	Location geometry.Vector3 `json:"location"`
	Message  string           `json:"message"`
}

// Route is an ordered waypoint sequence from an occupant to an exit.
// Routes are produced fresh each cycle and never mutated afterwards; a
// stale route is discarded, not patched.
type Route struct {
	Waypoints      []Waypoint      `json:"waypoints"`
	Distance       float64         `json:"distance"`       // meters
	EstimatedTime  float64         `json:"estimatedTime"`  // seconds
	HazardWarnings []HazardWarning `json:"hazardWarnings"`
	ComputedAt     time.Time       `json:"computedAt"`
}

// MaxSeverity returns the highest warning severity on the route, or
// ("", false) when the route carries no warnings.
func (r *Route) MaxSeverity() (WarningSeverity, bool) {
	if len(r.HazardWarnings) == 0 {
		return "", false
	}
	max := r.HazardWarnings[0].Severity
	for _, w := range r.HazardWarnings[1:] {
		if w.Severity.AtLeast(max) {
			max = w.Severity
		}
	}
	return max, true
}
