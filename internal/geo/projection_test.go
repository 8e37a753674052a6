package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Nathan Benderson Park course anchor used across the test suite.
var testOrigin = Point{Lat: 27.374831, Lon: -82.452441}

func TestMetersPerDegree(t *testing.T) {
	t.Parallel()

	mLat, mLon := MetersPerDegree(0)
	assert.Equal(t, 111320.0, mLat)
	assert.InDelta(t, 111320.0, mLon, 1e-9)

	_, mLon = MetersPerDegree(60)
	assert.InDelta(t, 111320.0/2, mLon, 1e-6)

	// Degenerate at the pole: latitude scale survives, longitude collapses.
	mLat, mLon = MetersPerDegree(90)
	assert.Equal(t, 111320.0, mLat)
	assert.InDelta(t, 0, mLon, 1e-9)
}

func TestRound(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 27.3748315, Round(27.37483149, 7))
	assert.Equal(t, -82.4524415, Round(-82.45244149, 7))
	assert.Equal(t, 10.0, Round(10.00049, 3))
	assert.Equal(t, -10.001, Round(-10.00061, 3))
	assert.Equal(t, 0.0, Round(0.0004, 3))
}

func TestFrame_Unanchored(t *testing.T) {
	t.Parallel()

	var f Frame
	require.False(t, f.Defined())

	_, err := f.GeoToLocal(testOrigin)
	assert.ErrorIs(t, err, ErrUndefinedOrigin)

	_, err = f.LocalToGeo(LocalPoint{East: 1, North: 1})
	assert.ErrorIs(t, err, ErrUndefinedOrigin)
}

func TestFrame_RoundTrip(t *testing.T) {
	t.Parallel()

	f := NewFrame(testOrigin)

	points := []Point{
		testOrigin,
		{Lat: 27.3752, Lon: -82.4520},
		{Lat: 27.3740, Lon: -82.4531},
		{Lat: 27.375634, Lon: -82.452487},
	}

	for _, p := range points {
		local, err := f.GeoToLocal(p)
		require.NoError(t, err)

		back, err := f.LocalToGeo(local)
		require.NoError(t, err)

		assert.InDelta(t, p.Lat, back.Lat, 1e-6)
		assert.InDelta(t, p.Lon, back.Lon, 1e-6)
	}
}

func TestFrame_FiftyMetersNorth(t *testing.T) {
	t.Parallel()

	f := NewFrame(testOrigin)

	target := Point{Lat: testOrigin.Lat + 50.0/111320.0, Lon: testOrigin.Lon}

	local, err := f.GeoToLocal(target)
	require.NoError(t, err)
	assert.InDelta(t, 0, local.East, 1e-9)
	assert.InDelta(t, 50, local.North, 1e-9)

	back, err := f.LocalToGeo(LocalPoint{East: 0, North: 50})
	require.NoError(t, err)
	assert.InDelta(t, testOrigin.Lat+50.0/111320.0, back.Lat, 1e-12)
	assert.InDelta(t, testOrigin.Lon, back.Lon, 1e-12)
}

func TestFrame_PolarLongitudeGuard(t *testing.T) {
	t.Parallel()

	f := NewFrame(Point{Lat: 90, Lon: 10})

	// m/deg lon is zero here; east meters must not divide by it.
	p, err := f.LocalToGeo(LocalPoint{East: 1000, North: 0})
	require.NoError(t, err)
	assert.InDelta(t, 10, p.Lon, 1e-9)
}

func TestForward_ZeroDistanceIdentity(t *testing.T) {
	t.Parallel()

	for _, bearing := range []float64{0, 45, 137.2, 270, 359.9} {
		p := Forward(testOrigin, bearing, 0)
		assert.InDelta(t, testOrigin.Lat, p.Lat, 1e-12)
		assert.InDelta(t, testOrigin.Lon, p.Lon, 1e-12)
	}
}

func TestForward_TrueNorthHundredMeters(t *testing.T) {
	t.Parallel()

	p := Forward(testOrigin, 0, 100)

	// 100 m along a meridian is about 100/111320 degrees of latitude.
	assert.InDelta(t, 100.0/111320.0, p.Lat-testOrigin.Lat, 2e-6)
	assert.InDelta(t, testOrigin.Lon, p.Lon, 1e-9)
}

func TestForward_ReciprocalBearingReturns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		bearing, dist float64
	}{
		{0, 100},
		{45, 250},
		{90, 75.5},
		{213.7, 500},
	}

	for _, tc := range cases {
		out := Forward(testOrigin, tc.bearing, tc.dist)
		back := Forward(out, math.Mod(tc.bearing+180, 360), tc.dist)

		assert.InDelta(t, testOrigin.Lat, back.Lat, 1e-6)
		assert.InDelta(t, testOrigin.Lon, back.Lon, 1e-6)
	}
}

func TestForward_NegativeDistanceIsReciprocal(t *testing.T) {
	t.Parallel()

	fwd := Forward(testOrigin, 180, 100)
	neg := Forward(testOrigin, 0, -100)

	assert.InDelta(t, fwd.Lat, neg.Lat, 1e-9)
	assert.InDelta(t, fwd.Lon, neg.Lon, 1e-9)
}

func TestLocalPoint_Helpers(t *testing.T) {
	t.Parallel()

	a := LocalPoint{East: 3, North: 4}
	b := LocalPoint{East: 1, North: 1}

	assert.Equal(t, LocalPoint{East: 4, North: 5}, a.Add(b))
	assert.Equal(t, LocalPoint{East: 2, North: 3}, a.Sub(b))
	assert.InDelta(t, 5, a.DistanceTo(LocalPoint{}), 1e-12)
}
