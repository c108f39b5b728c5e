package pathfind

import (
	"fmt"

	"github.com/egresslab/go-egress/pkg/hazard"
)

// Annotation thresholds: hazards below these stay out of route warnings
// even though they already weighted the path away.
const (
	warnFireAbove  = 2.0
	warnSmokeAbove = 2.0
)

// annotate walks the final waypoint list and emits warnings for hazards
// along the route, deduped by cell.
func (p *Planner) annotate(waypoints []Waypoint, snap hazard.Snapshot) []HazardWarning {
	warnings := []HazardWarning{}
	seen := make(map[hazard.CellKey]bool)

	for _, wp := range waypoints {
		key := p.cfg.cellOf(wp.Position)
		if seen[key] {
			continue
		}
		seen[key] = true

		cell := snap.Cell(key)
		if cell == nil {
			continue
		}

		if fi := cell.FireIntensity(); fi > warnFireAbove {
			warnings = append(warnings, HazardWarning{
				Type:     WarningFire,
				Severity: fireSeverity(fi),
				Location: wp.Position,
				Message:  fmt.Sprintf("Fire ahead (intensity %.1f)", fi),
			})
		}
		if si := cell.SmokeIntensity(); si > warnSmokeAbove {
			warnings = append(warnings, HazardWarning{
				Type:     WarningSmoke,
				Severity: smokeSeverity(si),
				Location: wp.Position,
				Message:  fmt.Sprintf("Heavy smoke ahead (intensity %.1f)", si),
			})
		}
		for _, obs := range cell.Obstacles {
			if obs.Severity == hazard.SeverityDifficult || obs.Severity == hazard.SeverityImpassable {
				sev := SeverityMedium
				if obs.Severity == hazard.SeverityImpassable {
					sev = SeverityHigh
				}
				warnings = append(warnings, HazardWarning{
					Type:     WarningObstacle,
					Severity: sev,
					Location: wp.Position,
					Message:  fmt.Sprintf("Obstacle on route: %s", obs.Type),
				})
			}
		}
	}
	return warnings
}

func fireSeverity(intensity float64) WarningSeverity {
	switch {
	case intensity > 4:
		return SeverityCritical
	case intensity > 3:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func smokeSeverity(intensity float64) WarningSeverity {
	if intensity > 4 {
		return SeverityHigh
	}
	return SeverityMedium
}
