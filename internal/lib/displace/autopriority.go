package displace

import (
	"math"

	"github.com/geoclear/geoclear/internal/lib/geo"
)

// Shape thresholds for priority estimation. Lengths are in the system's
// distance unit (meters for geographic batches), turn angles in radians.
const (
	motorwayMinLengthMeters = 5000.0
	primaryMinLengthMeters  = 1500.0
	motorwayMinLengthUnits  = 500.0
	primaryMinLengthUnits   = 150.0

	motorwayMaxMeanTurn = 0.15
	primaryMaxMeanTurn  = 0.45
)

// EstimatePriority assigns a priority tier from geometry shape alone. It is
// a preprocessing step for batches that arrive without priorities (typically
// bare WKT) and is fully decoupled from the repulsion engine: long straight
// paths rank as motorways, long gently-curved paths as primary roads, closed
// loops as building outlines, and everything else as streets.
func EstimatePriority(sys geo.System, coords []geo.Point) Priority {
	if len(coords) < 2 {
		return PriorityStreet
	}

	if isClosedLoop(coords) {
		return PriorityBuilding
	}

	length := geo.PathLength(sys, coords)
	turn := meanTurnAngle(coords)

	motorwayMinLength := motorwayMinLengthMeters
	primaryMinLength := primaryMinLengthMeters
	if sys == geo.Planar {
		motorwayMinLength = motorwayMinLengthUnits
		primaryMinLength = primaryMinLengthUnits
	}

	switch {
	case length >= motorwayMinLength && turn <= motorwayMaxMeanTurn:
		return PriorityMotorway
	case length >= primaryMinLength && turn <= primaryMaxMeanTurn:
		return PriorityPrimary
	default:
		return PriorityStreet
	}
}

// isClosedLoop reports whether the polyline returns to its start point.
func isClosedLoop(coords []geo.Point) bool {
	if len(coords) < 4 {
		return false
	}
	first, last := coords[0], coords[len(coords)-1]
	return first.Lat == last.Lat && first.Lng == last.Lng
}

// meanTurnAngle averages the absolute direction change at each interior
// vertex. Zero-length segments contribute nothing.
func meanTurnAngle(coords []geo.Point) float64 {
	if len(coords) < 3 {
		return 0
	}

	total := 0.0
	count := 0
	for i := 1; i < len(coords)-1; i++ {
		in := heading(coords[i-1], coords[i])
		out := heading(coords[i], coords[i+1])
		if math.IsNaN(in) || math.IsNaN(out) {
			continue
		}
		turn := math.Abs(normalizeAngle(out - in))
		total += turn
		count++
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func heading(a, b geo.Point) float64 {
	dy := b.Lat - a.Lat
	dx := b.Lng - a.Lng
	if dx == 0 && dy == 0 {
		return math.NaN()
	}
	return math.Atan2(dy, dx)
}

// normalizeAngle wraps an angle into (-π, π].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
