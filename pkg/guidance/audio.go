package guidance

import (
	"strings"

	"github.com/egresslab/go-egress/pkg/pathfind"
)

// audio builds the spoken instruction: the first two actions joined into
// one sentence, plus a clause for the worst hazard on the route.
func (g *Generator) audio(actions []Action, warnings []pathfind.HazardWarning) *Audio {
	var parts []string
	for i, a := range actions {
		if i >= 2 {
			break
		}
		parts = append(parts, a.Description)
	}
	instruction := strings.Join(parts, ", then ")

	urgency := UrgencyLow
	if worst, ok := maxSeverity(warnings); ok {
		switch {
		case worst == pathfind.SeverityCritical:
			urgency = UrgencyCritical
			instruction += ". CRITICAL: hazard on your route, move quickly"
		case worst == pathfind.SeverityHigh:
			urgency = UrgencyHigh
			instruction += ". Warning: hazard ahead on your route"
		default:
			urgency = UrgencyMedium
			instruction += ". Caution: minor hazard reported on your route"
		}
	}

	return &Audio{Instruction: instruction, Urgency: urgency}
}

func maxSeverity(warnings []pathfind.HazardWarning) (pathfind.WarningSeverity, bool) {
	if len(warnings) == 0 {
		return "", false
	}
	worst := warnings[0].Severity
	for _, w := range warnings[1:] {
		if w.Severity.AtLeast(worst) {
			worst = w.Severity
		}
	}
	return worst, true
}

func urgencyFor(severity pathfind.WarningSeverity) Urgency {
	switch severity {
	case pathfind.SeverityCritical:
		return UrgencyCritical
	case pathfind.SeverityHigh:
		return UrgencyHigh
	case pathfind.SeverityMedium:
		return UrgencyMedium
	}
	return UrgencyLow
}
