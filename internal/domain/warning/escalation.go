// Package warning decides when an absence crosses an escalation boundary.
package warning

import "time"

// Boundary is the absence count multiple at which the warning tier increases.
const Boundary = 5

// Kind distinguishes a plain absence from an escalation.
type Kind string

const (
	KindAbsent    Kind = "absent"
	KindEscalated Kind = "escalated"
)

// Outcome is the decision for one absence.
type Outcome struct {
	Kind          Kind
	TotalAbsences int
	// Tier and Duration are set only when Kind is KindEscalated.
	Tier     int
	Duration time.Duration
}

// Escalated reports whether the caller must apply the punishment.
func (o Outcome) Escalated() bool {
	return o.Kind == KindEscalated
}

// Escalate maps an already-incremented absence total and the current warning
// count to an outcome.
func Escalate(totalAbsences, warnCount int) Outcome {
	if totalAbsences <= 0 || totalAbsences%Boundary != 0 {
		return Outcome{Kind: KindAbsent, TotalAbsences: totalAbsences}
	}
	tier := warnCount + 1
	return Outcome{
		Kind:          KindEscalated,
		TotalAbsences: totalAbsences,
		Tier:          tier,
		Duration:      Duration(tier),
	}
}

// Duration returns how long the punishment for tier lasts.
func Duration(tier int) time.Duration {
	switch {
	case tier <= 0:
		return 0
	case tier == 1:
		return 2 * 24 * time.Hour
	default:
		return 5 * 24 * time.Hour
	}
}
