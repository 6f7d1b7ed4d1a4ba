package displace

import "github.com/geoclear/geoclear/internal/lib/geo"

// Smooth applies corner-cutting subdivision to a displaced polyline: each
// refinement pass replaces every segment with two interpolated points at 25%
// and 75% along it, keeping the first and last points of the whole polyline
// anchored. Polylines with fewer than 2 points are returned unchanged.
func Smooth(points []geo.Point, iterations int) []geo.Point {
	if len(points) < 2 || iterations <= 0 {
		return points
	}

	current := points
	for i := 0; i < iterations; i++ {
		current = cutCorners(current)
	}
	return current
}

func cutCorners(points []geo.Point) []geo.Point {
	smoothed := make([]geo.Point, 0, 2*len(points))
	smoothed = append(smoothed, points[0])

	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		smoothed = append(smoothed,
			interpolate(a, b, 0.25),
			interpolate(a, b, 0.75),
		)
	}

	smoothed = append(smoothed, points[len(points)-1])
	return smoothed
}

func interpolate(a, b geo.Point, t float64) geo.Point {
	return geo.Point{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lng: a.Lng + t*(b.Lng-a.Lng),
	}
}
