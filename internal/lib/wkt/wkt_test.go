package wkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoclear/geoclear/internal/lib/geo"
)

func TestParseLineString(t *testing.T) {
	points, err := ParseLineString("LINESTRING (30 10, 10 30, 40 40)")
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Wire axis order is x y, so x maps to Lng and y to Lat.
	assert.Equal(t, geo.Point{Lat: 10, Lng: 30}, points[0])
	assert.Equal(t, geo.Point{Lat: 30, Lng: 10}, points[1])
	assert.Equal(t, geo.Point{Lat: 40, Lng: 40}, points[2])
}

func TestParseLineString_CaseAndWhitespace(t *testing.T) {
	points, err := ParseLineString("  linestring ( 1 2 ,  3 4 )  ")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, geo.Point{Lat: 2, Lng: 1}, points[0])
}

func TestParseLineString_TrailingComment(t *testing.T) {
	points, err := ParseLineString("LINESTRING (0 0, 100 0) # motorway")
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestParseLineString_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"wrong geometry":   "POINT (1 2)",
		"no parens":        "LINESTRING 1 2, 3 4",
		"single coord":     "LINESTRING (1 2)",
		"all malformed":    "LINESTRING (a b, c d)",
		"unbalanced paren": "LINESTRING )1 2, 3 4(",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLineString(input)
			assert.Error(t, err)
		})
	}
}

func TestParseDocument(t *testing.T) {
	content := `# street network sample

LINESTRING (0 0, 100 0)
LINESTRING (0 5, 100 5)
garbage line
LINESTRING (1 1)
`

	lines, skipped, err := ParseDocument(content)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, skipped, "garbage and single-coordinate lines are skipped")

	assert.Equal(t, "LINESTRING (0 0, 100 0)", lines[0].Raw)
	assert.Equal(t, geo.Point{Lat: 5, Lng: 0}, lines[1].Points[0])
}

func TestParseDocument_Empty(t *testing.T) {
	_, skipped, err := ParseDocument("# only comments\n\n")
	assert.Error(t, err)
	assert.Zero(t, skipped)

	_, skipped, err = ParseDocument("not wkt at all")
	assert.Error(t, err)
	assert.Equal(t, 1, skipped)
}

func TestFormatLineString(t *testing.T) {
	points := []geo.Point{
		{Lat: 10, Lng: 30},
		{Lat: 30.5, Lng: 10.25},
	}
	assert.Equal(t, "LINESTRING (30 10, 10.25 30.5)", FormatLineString(points))
}

func TestFormatLineString_RoundTrip(t *testing.T) {
	original := "LINESTRING (0 0, 100 0, 200 50)"
	points, err := ParseLineString(original)
	require.NoError(t, err)
	assert.Equal(t, original, FormatLineString(points))
}
