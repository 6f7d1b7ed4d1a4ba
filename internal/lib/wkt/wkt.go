// Package wkt parses and formats the LINESTRING subset of Well-Known Text
// used by planar street-network batches. Axis order on the wire is x y
// (lng lat).
package wkt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/geoclear/geoclear/internal/lib/geo"
)

// LineString is one parsed WKT line: the vertex sequence plus the raw source
// text, which ingestion heuristics may scan for type keywords.
type LineString struct {
	Points []geo.Point
	Raw    string
}

// ParseLineString parses a single "LINESTRING (x y, x y, ...)" string.
// Lines with fewer than 2 valid coordinate pairs are rejected.
func ParseLineString(s string) ([]geo.Point, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, errors.New("empty wkt")
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "LINESTRING") {
		return nil, fmt.Errorf("not a linestring: %q", truncate(trimmed, 40))
	}

	open := strings.Index(trimmed, "(")
	close := strings.LastIndex(trimmed, ")")
	if open < 0 || close <= open {
		return nil, errors.New("linestring: unbalanced parentheses")
	}

	var points []geo.Point
	for _, tuple := range strings.Split(trimmed[open+1:close], ",") {
		parts := strings.Fields(strings.TrimSpace(tuple))
		if len(parts) < 2 {
			continue
		}
		x, err1 := strconv.ParseFloat(parts[0], 64)
		y, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		points = append(points, geo.Point{Lat: y, Lng: x})
	}

	if len(points) < 2 {
		return nil, errors.New("linestring: fewer than 2 coordinates")
	}
	return points, nil
}

// ParseDocument parses multi-line WKT content, skipping blank lines and
// # comments. Unparseable lines are skipped and reported in skipped; the
// error is non-nil only when the document yields no geometry at all.
func ParseDocument(content string) (lines []LineString, skipped int, err error) {
	for _, raw := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		points, parseErr := ParseLineString(trimmed)
		if parseErr != nil {
			skipped++
			continue
		}
		lines = append(lines, LineString{Points: points, Raw: trimmed})
	}

	if len(lines) == 0 {
		return nil, skipped, errors.New("wkt document contains no parseable linestrings")
	}
	return lines, skipped, nil
}

// FormatLineString renders a vertex sequence back to WKT, x y axis order.
func FormatLineString(points []geo.Point) string {
	var b strings.Builder
	b.WriteString("LINESTRING (")
	for i, p := range points {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatCoord(p.Lng))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.Lat))
	}
	b.WriteByte(')')
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
