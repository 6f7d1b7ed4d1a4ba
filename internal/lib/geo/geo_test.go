package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	// Highway 4 test coordinates: Angels Camp to Murphys (real route)
	angelscamp := Point{Lat: 38.0675, Lng: -120.5436}
	murphys := Point{Lat: 38.1391, Lng: -120.4561}

	distance := Haversine(angelscamp, murphys)
	assert.InDelta(t, 11046, distance, 100, "Distance should be approximately 11.0km")

	assert.Equal(t, 0.0, Haversine(angelscamp, angelscamp), "Distance from point to itself should be 0")
}

func TestEuclidean(t *testing.T) {
	assert.Equal(t, 5.0, Euclidean(Point{Lat: 0, Lng: 0}, Point{Lat: 3, Lng: 4}))
	assert.Equal(t, 0.0, Euclidean(Point{Lat: 1, Lng: 2}, Point{Lat: 1, Lng: 2}))
}

func TestSystemDistance(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 3, Lng: 4}

	assert.Equal(t, Euclidean(a, b), Planar.Distance(a, b))
	assert.Equal(t, Haversine(a, b), Geographic.Distance(a, b))
}

func TestSystemFromMeters(t *testing.T) {
	assert.Equal(t, 100.0, Planar.FromMeters(100))
	assert.InDelta(t, 100.0/111111.0, Geographic.FromMeters(100), 1e-12)
}

func TestParseSystem(t *testing.T) {
	sys, err := ParseSystem("")
	require.NoError(t, err)
	assert.Equal(t, Geographic, sys)

	sys, err = ParseSystem("planar")
	require.NoError(t, err)
	assert.Equal(t, Planar, sys)

	_, err = ParseSystem("cartesian")
	assert.Error(t, err)
}

func TestProjectOnSegment(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 10}

	// Orthogonal projection lands inside the segment.
	p := ProjectOnSegment(Point{Lat: 3, Lng: 5}, a, b)
	assert.Equal(t, Point{Lat: 0, Lng: 5}, p)

	// Projection clamps to the near endpoint when the point lies beyond it.
	p = ProjectOnSegment(Point{Lat: 3, Lng: -2}, a, b)
	assert.Equal(t, a, p)

	p = ProjectOnSegment(Point{Lat: 3, Lng: 14}, a, b)
	assert.Equal(t, b, p)

	// Zero-length segment degenerates to its start point.
	p = ProjectOnSegment(Point{Lat: 3, Lng: 5}, a, a)
	assert.Equal(t, a, p)
}

func TestNearestPointOnPolyline(t *testing.T) {
	line := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 10, Lng: 10},
	}

	nearest, distance, ok := NearestPointOnPolyline(Planar, Point{Lat: 3, Lng: 4}, line)
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 0, Lng: 4}, nearest)
	assert.Equal(t, 3.0, distance)

	// Nearest point on the second segment.
	nearest, distance, ok = NearestPointOnPolyline(Planar, Point{Lat: 5, Lng: 13}, line)
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 5, Lng: 10}, nearest)
	assert.Equal(t, 3.0, distance)
}

func TestNearestPointOnPolyline_SinglePoint(t *testing.T) {
	nearest, distance, ok := NearestPointOnPolyline(Planar, Point{Lat: 3, Lng: 4}, []Point{{Lat: 0, Lng: 0}})
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 0, Lng: 0}, nearest)
	assert.Equal(t, 5.0, distance)
}

func TestNearestPointOnPolyline_Empty(t *testing.T) {
	_, _, ok := NearestPointOnPolyline(Planar, Point{}, nil)
	assert.False(t, ok)
}

// The returned point must always lie on the polyline: between two input
// vertices or equal to one of them.
func TestNearestPointOnPolyline_PointOnLine(t *testing.T) {
	line := []Point{
		{Lat: 38.0675, Lng: -120.5436},
		{Lat: 38.1391, Lng: -120.4561},
	}

	nearest, _, ok := NearestPointOnPolyline(Geographic, Point{Lat: 38.1000, Lng: -120.5000}, line)
	require.True(t, ok)

	assert.GreaterOrEqual(t, nearest.Lat, line[0].Lat)
	assert.LessOrEqual(t, nearest.Lat, line[1].Lat)
	assert.GreaterOrEqual(t, nearest.Lng, line[0].Lng)
	assert.LessOrEqual(t, nearest.Lng, line[1].Lng)
}

func TestPathLength(t *testing.T) {
	line := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 5, Lng: 10},
	}
	assert.Equal(t, 15.0, PathLength(Planar, line))
	assert.Equal(t, 0.0, PathLength(Planar, line[:1]))
	assert.Equal(t, 0.0, PathLength(Planar, nil))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(Point{Lat: 38.0675, Lng: -120.5436}))
	assert.False(t, IsValid(Point{Lat: 200, Lng: -300}))
}

func TestDecodePolyline(t *testing.T) {
	points, err := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)
	assert.Greater(t, len(points), 0, "Should decode to at least one point")

	for _, p := range points {
		assert.True(t, IsValid(p))
	}

	_, err = DecodePolyline("")
	assert.Error(t, err, "Should return error for empty input")
}
