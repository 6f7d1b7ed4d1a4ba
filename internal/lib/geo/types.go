package geo

import "fmt"

// Point is a 2D coordinate. In geographic batches Lat/Lng are degrees; in
// planar batches Lng carries the X axis and Lat carries the Y axis.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// System identifies the coordinate system of a feature batch. It is an
// explicit property of every batch rather than something inferred from the
// ingestion path, so axis order and distance units are never ambiguous.
type System int

const (
	// Geographic coordinates are lat/lng degrees; distances are meters
	// computed with the Haversine formula.
	Geographic System = iota

	// Planar coordinates are unit-less x/y; distances are Euclidean in the
	// same units as the coordinates.
	Planar
)

// String returns the wire name of the coordinate system.
func (s System) String() string {
	switch s {
	case Geographic:
		return "geographic"
	case Planar:
		return "planar"
	default:
		return fmt.Sprintf("System(%d)", int(s))
	}
}

// ParseSystem converts a wire name into a System. An empty string defaults
// to Geographic, matching the JSON ingestion path.
func ParseSystem(name string) (System, error) {
	switch name {
	case "", "geographic":
		return Geographic, nil
	case "planar":
		return Planar, nil
	default:
		return Geographic, fmt.Errorf("unknown coordinate system %q", name)
	}
}
