// Package displace resolves visual overlap between polyline map features by
// iteratively pushing lower-priority features away from higher-priority ones
// while keeping their approximate shape.
package displace

import (
	"github.com/geoclear/geoclear/internal/lib/geo"
)

// Priority ranks features by cartographic importance. Lower values are more
// important; features at or above the threshold act as immovable obstacles.
type Priority int

const (
	PriorityMotorway Priority = 1
	PriorityPrimary  Priority = 2
	PriorityStreet   Priority = 3
	PriorityBuilding Priority = 4
	PriorityLabel    Priority = 5
)

// DefaultPriorityThreshold is the rank at or below which features are fixed.
const DefaultPriorityThreshold = PriorityPrimary

// Fixed reports whether a feature of this priority is immovable at the given
// threshold.
func (p Priority) Fixed(threshold Priority) bool {
	return p <= threshold
}

// String returns a display name for the priority tier.
func (p Priority) String() string {
	switch p {
	case PriorityMotorway:
		return "motorway"
	case PriorityPrimary:
		return "primary"
	case PriorityStreet:
		return "street"
	case PriorityBuilding:
		return "building"
	case PriorityLabel:
		return "label"
	default:
		return "street"
	}
}

// PriorityFromValue maps a numeric rank onto a known tier, defaulting to
// street for unrecognized values.
func PriorityFromValue(value int) Priority {
	if value >= int(PriorityMotorway) && value <= int(PriorityLabel) {
		return Priority(value)
	}
	return PriorityStreet
}

// Feature is a polyline map feature subject to displacement. Coords is
// mutated in place by the engine; OriginalCoords is the ingestion-time
// snapshot used for displacement reporting and is never modified.
type Feature struct {
	ID             string
	Priority       Priority
	Width          float64
	Coords         []geo.Point
	OriginalCoords []geo.Point
	Displaced      bool
}

// NewFeature builds a feature and snapshots its original coordinates.
func NewFeature(id string, priority Priority, width float64, coords []geo.Point) *Feature {
	original := make([]geo.Point, len(coords))
	copy(original, coords)
	return &Feature{
		ID:             id,
		Priority:       priority,
		Width:          width,
		Coords:         coords,
		OriginalCoords: original,
	}
}

// DisplacementDistance returns the largest per-vertex shift between the
// current and original coordinates, in the system's distance unit. Vertices
// beyond the shorter of the two sequences are ignored, so the value remains
// meaningful after smoothing has resampled the polyline.
func (f *Feature) DisplacementDistance(sys geo.System) float64 {
	n := len(f.Coords)
	if len(f.OriginalCoords) < n {
		n = len(f.OriginalCoords)
	}
	max := 0.0
	for i := 0; i < n; i++ {
		if d := sys.Distance(f.OriginalCoords[i], f.Coords[i]); d > max {
			max = d
		}
	}
	return max
}
