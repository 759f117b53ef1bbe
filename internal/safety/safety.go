// Package safety derives categorical safety signals from planning
// service data. All functions are pure and total over their inputs.
package safety

import (
	"strings"

	"github.com/safecommute/safecommute/internal/planner"
)

// Label buckets a safety score for UI styling.
type Label string

const (
	// LabelSafe applies to scores of 75 and above.
	LabelSafe Label = "safe"
	// LabelModerate applies to scores from 40 up to but excluding 75.
	LabelModerate Label = "moderate"
	// LabelUnsafe applies to scores below 40.
	LabelUnsafe Label = "unsafe"
)

// Emergency contact numbers by zone kind.
const (
	numberPolice   = "100"
	numberFire     = "101"
	numberHospital = "108"
	numberGeneric  = "112"
)

// LabelForScore buckets a 0-100 safety score. Boundary values belong to
// the higher-safety bucket: 75 is safe, 40 is moderate.
func LabelForScore(score int) Label {
	switch {
	case score >= 75:
		return LabelSafe
	case score >= 40:
		return LabelModerate
	default:
		return LabelUnsafe
	}
}

// EmergencyNumber returns the contact number for a safe zone. A phone
// number from the zone itself wins; otherwise the zone type is matched
// case-insensitively in a fixed order, since a type string could
// contain more than one keyword.
func EmergencyNumber(zone planner.SafeZone) string {
	if zone.Phone != "" {
		return zone.Phone
	}
	if zone.Type == "" {
		return numberGeneric
	}

	kind := strings.ToLower(zone.Type)
	switch {
	case strings.Contains(kind, "police"):
		return numberPolice
	case strings.Contains(kind, "hospital"):
		return numberHospital
	case strings.Contains(kind, "fire"):
		return numberFire
	default:
		return numberGeneric
	}
}
