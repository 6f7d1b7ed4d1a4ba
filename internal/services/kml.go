package services

import (
	"fmt"
	"image/color"
	"io"

	kml "github.com/twpayne/go-kml/v2"

	"github.com/geoclear/geoclear/internal/lib/displace"
)

// ExportKML writes a displacement result as a KML document for map viewers:
// one placemark per feature, displaced features styled red and preserved
// ones gray. Coordinates are written as-is, so this is only geographically
// meaningful for lat/lng batches.
func ExportKML(result *displace.Result, w io.Writer) error {
	children := []kml.Element{
		kml.Name("geoclear displacement result"),
		kml.SharedStyle("displaced",
			kml.LineStyle(
				kml.Color(color.RGBA{R: 0xe6, G: 0x39, B: 0x46, A: 0xff}),
				kml.Width(3),
			),
		),
		kml.SharedStyle("preserved",
			kml.LineStyle(
				kml.Color(color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}),
				kml.Width(2),
			),
		),
	}

	for _, f := range result.Features {
		styleURL := "#preserved"
		if f.Displaced {
			styleURL = "#displaced"
		}

		coords := make([]kml.Coordinate, len(f.Coords))
		for i, p := range f.Coords {
			coords[i] = kml.Coordinate{Lon: p.Lng, Lat: p.Lat}
		}

		children = append(children, kml.Placemark(
			kml.Name(f.ID),
			kml.Description(fmt.Sprintf("priority=%s width=%.1f displaced=%t", f.Priority, f.Width, f.Displaced)),
			kml.StyleURL(styleURL),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coords...),
			),
		))
	}

	doc := kml.KML(kml.Document(children...))
	return doc.WriteIndent(w, "", "  ")
}
