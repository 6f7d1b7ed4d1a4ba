package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoclear/geoclear/internal/lib/displace"
	"github.com/geoclear/geoclear/internal/lib/geo"
)

func TestExportKML(t *testing.T) {
	moved := displace.NewFeature("trail", displace.PriorityStreet, 0, []geo.Point{
		{Lat: 38.001, Lng: -120.001},
		{Lat: 38.002, Lng: -120.000},
	})
	moved.Displaced = true
	kept := displace.NewFeature("road", displace.PriorityMotorway, 0, []geo.Point{
		{Lat: 38.000, Lng: -120.001},
		{Lat: 38.000, Lng: -120.000},
	})

	result := &displace.Result{Features: []*displace.Feature{kept, moved}}

	var buf bytes.Buffer
	require.NoError(t, ExportKML(result, &buf))

	out := buf.String()
	assert.Contains(t, out, "<kml")
	assert.Contains(t, out, "<Placemark>")
	assert.Contains(t, out, "<name>trail</name>")
	assert.Contains(t, out, "<name>road</name>")
	assert.Contains(t, out, "#displaced")
	assert.Contains(t, out, "#preserved")
	assert.Contains(t, out, "priority=motorway")
	assert.Contains(t, out, "-120.001,38.001")
}

func TestExportKML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportKML(&displace.Result{}, &buf))
	assert.NotContains(t, buf.String(), "<Placemark>")
}
