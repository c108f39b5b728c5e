// Package hazard maintains the discretized hazard grid: per-cell fire,
// smoke, crowding, and obstacle state merged in from external sensing.
package hazard

import "fmt"

// ObstacleSeverity classifies how much an obstacle impedes movement.
type ObstacleSeverity string

const (
	SeverityPassable   ObstacleSeverity = "passable"
	SeverityDifficult  ObstacleSeverity = "difficult"
	SeverityImpassable ObstacleSeverity = "impassable"
)

// Fire is a fire reading for one cell. Intensity is 0-5.
type Fire struct {
	Intensity float64 `json:"intensity"`
}

// Smoke is a smoke reading for one cell. Intensity is 0-5.
type Smoke struct {
	Intensity float64 `json:"intensity"`
}

// Crowding is a crowd density reading for one cell (people per cell).
type Crowding struct {
	Density float64 `json:"density"`
}

// Obstacle is a physical obstruction detected in a cell.
type Obstacle struct {
	Type     string           `json:"type"`
	Severity ObstacleSeverity `json:"severity"`
}

// Cell holds the hazard state for one grid cell. A nil field means no
// reading of that kind. Cells absent from the grid are walkable with
// zero hazard.
type Cell struct {
	Fire      *Fire      `json:"fire,omitempty"`
	Smoke     *Smoke     `json:"smoke,omitempty"`
	Crowding  *Crowding  `json:"crowding,omitempty"`
	Obstacles []Obstacle `json:"obstacles,omitempty"`
}

// FireIntensity returns the cell's fire intensity, zero when absent.
// Safe to call on a nil cell.
func (c *Cell) FireIntensity() float64 {
	if c == nil || c.Fire == nil {
		return 0
	}
	return c.Fire.Intensity
}

// SmokeIntensity returns the cell's smoke intensity, zero when absent.
func (c *Cell) SmokeIntensity() float64 {
	if c == nil || c.Smoke == nil {
		return 0
	}
	return c.Smoke.Intensity
}

// CrowdDensity returns the cell's crowd density, zero when absent.
func (c *Cell) CrowdDensity() float64 {
	if c == nil || c.Crowding == nil {
		return 0
	}
	return c.Crowding.Density
}

// CellKey identifies a grid cell by integer coordinates. Floors are
// handled by the caller's coordinate offset, not encoded here.
type CellKey struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the canonical "x,y" form used in wire payloads.
func (k CellKey) String() string {
	return fmt.Sprintf("%d,%d", k.X, k.Y)
}

// ParseCellKey parses the canonical "x,y" form.
func ParseCellKey(s string) (CellKey, error) {
	var k CellKey
	if _, err := fmt.Sscanf(s, "%d,%d", &k.X, &k.Y); err != nil {
		return CellKey{}, fmt.Errorf("hazard: invalid cell key %q: %w", s, err)
	}
	return k, nil
}
