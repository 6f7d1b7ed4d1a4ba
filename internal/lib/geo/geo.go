package geo

import (
	"errors"
	"math"

	"github.com/twpayne/go-polyline"
)

const (
	// earthRadiusMeters is the spherical earth radius used by the
	// Haversine formula.
	earthRadiusMeters = 6371000.0

	// metersPerDegree is the approximate length of one degree of latitude,
	// used to convert meter-valued displacements into degrees.
	metersPerDegree = 111111.0
)

// Haversine calculates the great-circle distance between two geographic
// points in meters.
func Haversine(p1, p2 Point) float64 {
	if p1.Lat == p2.Lat && p1.Lng == p2.Lng {
		return 0
	}

	lat1 := p1.Lat * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	dlat := lat2 - lat1
	dlng := (p2.Lng - p1.Lng) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Euclidean calculates the planar distance between two points in coordinate
// units.
func Euclidean(p1, p2 Point) float64 {
	dx := p2.Lng - p1.Lng
	dy := p2.Lat - p1.Lat
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance returns the distance between two points using the system's
// metric: meters for Geographic, coordinate units for Planar.
func (s System) Distance(p1, p2 Point) float64 {
	if s == Planar {
		return Euclidean(p1, p2)
	}
	return Haversine(p1, p2)
}

// FromMeters converts a meter-valued magnitude into the system's coordinate
// unit: degrees for Geographic, identity for Planar.
func (s System) FromMeters(meters float64) float64 {
	if s == Planar {
		return meters
	}
	return meters / metersPerDegree
}

// PathLength returns the total length of a polyline in the system's
// distance unit.
func PathLength(sys System, points []Point) float64 {
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		total += sys.Distance(points[i], points[i+1])
	}
	return total
}

// IsValid reports whether a point is a plausible geographic coordinate.
func IsValid(p Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// NearestPointOnPolyline finds the closest point on a polyline to p and the
// distance to it in the system's unit. A single-point polyline yields that
// point. Ties between segments resolve to the earliest segment. ok is false
// for an empty polyline.
func NearestPointOnPolyline(sys System, p Point, line []Point) (nearest Point, distance float64, ok bool) {
	if len(line) == 0 {
		return Point{}, 0, false
	}
	if len(line) == 1 {
		return line[0], sys.Distance(p, line[0]), true
	}

	nearest = line[0]
	distance = sys.Distance(p, nearest)

	for i := 0; i < len(line)-1; i++ {
		projected := ProjectOnSegment(p, line[i], line[i+1])
		d := sys.Distance(p, projected)
		if d < distance {
			distance = d
			nearest = projected
		}
	}

	return nearest, distance, true
}

// ProjectOnSegment returns the orthogonal projection of p onto the segment
// ab, clamped to the segment endpoints. The projection is computed in the
// coordinate plane; for the short segments typical of map features this is
// an adequate approximation even in geographic mode.
func ProjectOnSegment(p, a, b Point) Point {
	dx := b.Lng - a.Lng
	dy := b.Lat - a.Lat

	// Zero-length segment degenerates to its start point.
	if dx == 0 && dy == 0 {
		return a
	}

	t := ((p.Lng-a.Lng)*dx + (p.Lat-a.Lat)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	return Point{
		Lat: a.Lat + t*dy,
		Lng: a.Lng + t*dx,
	}
}

// DecodePolyline decodes a Google encoded polyline string into a point
// sequence, validating that every decoded coordinate is geographic.
func DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("failed to decode polyline: " + err.Error())
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{Lat: coord[0], Lng: coord[1]}
		if !IsValid(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}
