package guidance

import (
	"github.com/egresslab/go-egress/pkg/pathfind"
)

// visualization builds the AR payload: the full path line, periodic
// waypoint markers, a labeled exit marker, and hazard overlay squares.
func (g *Generator) visualization(route *pathfind.Route) *VisualizationData {
	vis := &VisualizationData{
		HazardOverlays: []HazardOverlay{},
	}

	for _, wp := range route.Waypoints {
		vis.PathLine = append(vis.PathLine, wp.Position)
	}

	last := len(route.Waypoints) - 1
	for i, wp := range route.Waypoints {
		if i == last {
			continue // the final waypoint gets its own exit marker
		}
		if i%markerInterval == 0 && i > 0 {
			vis.Markers = append(vis.Markers, Marker{
				Position: wp.Position,
				Kind:     "waypoint",
			})
		}
	}
	if last >= 0 {
		vis.Markers = append(vis.Markers, Marker{
			Position: route.Waypoints[last].Position,
			Label:    "EXIT",
			Kind:     "exit",
		})
	}

	for _, w := range route.HazardWarnings {
		switch w.Type {
		case pathfind.WarningFire, pathfind.WarningSmoke, pathfind.WarningWater:
			vis.HazardOverlays = append(vis.HazardOverlays, HazardOverlay{
				Center:    w.Location,
				HalfSize:  overlayHalfSize,
				Type:      string(w.Type),
				Intensity: overlayIntensity(w.Severity),
			})
		}
	}
	return vis
}

// overlayIntensity maps warning severity onto the renderer's 2-5 scale.
func overlayIntensity(severity pathfind.WarningSeverity) int {
	switch severity {
	case pathfind.SeverityCritical:
		return 5
	case pathfind.SeverityHigh:
		return 4
	case pathfind.SeverityMedium:
		return 3
	}
	return 2
}
