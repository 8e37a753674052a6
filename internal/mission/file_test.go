package mission

import (
	"encoding/json"
	"testing"

	"github.com/Parsa-Sedighi/rb26-survey/internal/board"
	"github.com/Parsa-Sedighi/rb26-survey/internal/calib"
	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOrigin = geo.Point{Lat: 27.374831, Lon: -82.452441}
	testRules  = board.Rules{HalfExtent: 50, CellSize: 5}
)

func buildRegistry(t *testing.T) *board.Registry {
	t.Helper()

	reg := board.NewRegistry()

	wp := reg.Place(board.KindWaypoint, geo.LocalPoint{East: 3.2, North: -2.0}, "start", testRules)
	reg.SetOffset(wp, geo.LocalPoint{East: 0.1, North: -0.2}, testRules)
	reg.SetFinal(wp, geo.LocalPoint{East: 3.2, North: -2.0}, testRules)

	reg.Place(board.KindMissionElement, geo.LocalPoint{East: -10, North: 25}, "dock", testRules)

	return reg
}

func TestExport_RequiresOrigin(t *testing.T) {
	t.Parallel()

	_, err := Export("area", board.NewRegistry(), geo.Frame{})
	assert.ErrorIs(t, err, geo.ErrUndefinedOrigin)
}

func TestExport_RecordShape(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t)

	f, err := Export("Nathan Benderson Park", reg, geo.NewFrame(testOrigin))
	require.NoError(t, err)

	require.NotNil(t, f.Origin)
	assert.Equal(t, testOrigin, *f.Origin)
	assert.Nil(t, f.Calibration)

	require.Len(t, f.Waypoints, 1)
	require.Len(t, f.MissionElements, 1)

	wp := f.Waypoints[0]
	assert.Equal(t, 1, wp.ID)
	assert.Equal(t, "start", wp.Name)
	assert.Equal(t, board.KindWaypoint, wp.Kind)
	assert.Equal(t, 3.2, wp.X)
	assert.Equal(t, -2.0, wp.Y)
	assert.Equal(t, Offset{X: 0.1, Y: -0.2}, wp.Offset)

	mLat, mLon := geo.MetersPerDegree(testOrigin.Lat)
	assert.InDelta(t, testOrigin.Lat-2.0/mLat, wp.Lat, 1e-7)
	assert.InDelta(t, testOrigin.Lon+3.2/mLon, wp.Lon, 1e-7)
}

func TestExport_Precision(t *testing.T) {
	t.Parallel()

	reg := board.NewRegistry()
	reg.Place(board.KindWaypoint, geo.LocalPoint{East: 10.00049, North: 0.0004}, "p", testRules)

	f, err := Export("a", reg, geo.NewFrame(testOrigin))
	require.NoError(t, err)

	// Meters carry exactly three decimal places.
	assert.Equal(t, 10.0, f.Waypoints[0].X)
	assert.Equal(t, 0.0, f.Waypoints[0].Y)

	// Degrees carry at most seven decimal places.
	scaled := f.Waypoints[0].Lat * 1e7
	assert.InDelta(t, scaled, float64(int64(scaled+0.5)), 1e-6)
}

func TestExport_WireFormat(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t)

	f, err := Export("area", reg, geo.NewFrame(testOrigin))
	require.NoError(t, err)

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	require.Contains(t, m, "origin")
	require.Contains(t, m, "waypoints")
	require.Contains(t, m, "mission_elements")

	wp := m["waypoints"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"id", "name", "kind", "lat", "lon", "x", "y", "offset"} {
		assert.Contains(t, wp, key)
	}
	assert.Equal(t, "waypoint", wp["kind"])

	me := m["mission_elements"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "mission_element", me["kind"])
}

func TestExportCalibrated(t *testing.T) {
	t.Parallel()

	var m calib.Mapper
	require.NoError(t, m.SetPoint(1, calib.Point{PxX: 0, PxY: 0, Geo: geo.Point{Lat: 27.3752, Lon: -82.4530}}))
	require.NoError(t, m.SetPoint(2, calib.Point{PxX: 800, PxY: 800, Geo: geo.Point{Lat: 27.3740, Lon: -82.4510}}))

	pf := calib.PixelFrame{Mapper: &m, CenterX: 400, CenterY: 400, PxPerMeter: 8}

	reg := board.NewRegistry()
	reg.Place(board.KindWaypoint, geo.LocalPoint{East: 5, North: 5}, "", testRules)

	f, err := ExportCalibrated("image session", reg, pf)
	require.NoError(t, err)

	assert.Nil(t, f.Origin)
	require.NotNil(t, f.Calibration)
	assert.Equal(t, 800.0, f.Calibration.P2.PxX)
	require.Len(t, f.Waypoints, 1)
	assert.NotZero(t, f.Waypoints[0].Lat)
}

func TestFile_RegistryRoundTrip(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t)

	f, err := Export("area", reg, geo.NewFrame(testOrigin))
	require.NoError(t, err)

	data, err := f.Encode(false)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	reloaded := decoded.Registry(testRules)
	require.Len(t, reloaded.Waypoints(), 1)
	require.Len(t, reloaded.Elements(), 1)

	wp := reloaded.Waypoints()[0]
	assert.Equal(t, 1, wp.ID)
	assert.Equal(t, "start", wp.Name)
	assert.InDelta(t, 3.2, wp.Final().East, 1e-9)
	assert.InDelta(t, -2.0, wp.Final().North, 1e-9)
	assert.InDelta(t, 0.1, wp.Offset().East, 1e-9)
	assert.InDelta(t, -0.2, wp.Offset().North, 1e-9)
	assert.InDelta(t, 3.1, wp.Base().East, 1e-9)
}

func TestFile_EncodeCompact(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t)

	f, err := Export("area", reg, geo.NewFrame(testOrigin))
	require.NoError(t, err)

	pretty, err := f.Encode(false)
	require.NoError(t, err)
	compact, err := f.Encode(true)
	require.NoError(t, err)

	assert.True(t, json.Valid(compact))
	assert.Less(t, len(compact), len(pretty))
	assert.NotContains(t, string(compact), "\n")

	// The minifier strips all the indentation whitespace.
	plain, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, string(plain), string(compact))
}

func TestGeoJSON(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t)
	frame := geo.NewFrame(testOrigin)

	fc, err := GeoJSON(reg, frame)
	require.NoError(t, err)

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	feat := fc.Features[0]
	assert.Equal(t, "Feature", feat.Type)
	assert.Equal(t, "Point", feat.Geometry.Type)
	require.Len(t, feat.Geometry.Coordinates, 2)
	assert.Equal(t, "waypoint", feat.Properties["kind"])

	// Coordinates are [lon, lat].
	assert.Less(t, feat.Geometry.Coordinates[0], -82.0)
	assert.Greater(t, feat.Geometry.Coordinates[1], 27.0)
}

func TestGeoJSON_UnanchoredFrameFails(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t)

	_, err := GeoJSON(reg, geo.Frame{})
	assert.ErrorIs(t, err, geo.ErrUndefinedOrigin)
}
