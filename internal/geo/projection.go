package geo

import (
	"errors"
	"math"
)

// EarthRadiusM is the mean Earth radius used for the spherical forward
// geodesic (meters).
const EarthRadiusM = 6371000.0

// MetersPerDegLat is the small-area approximation for one degree of latitude.
const MetersPerDegLat = 111320.0

// ErrUndefinedOrigin is returned by origin-relative conversions on a Frame
// that has no origin set.
var ErrUndefinedOrigin = errors.New("local frame origin is not defined")

// Point is a geographic position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// LocalPoint is a planar east/north position in meters, relative to a
// Frame origin.
type LocalPoint struct {
	East  float64 `json:"x" yaml:"x"`
	North float64 `json:"y" yaml:"y"`
}

// Add returns p + q component-wise.
func (p LocalPoint) Add(q LocalPoint) LocalPoint {
	return LocalPoint{East: p.East + q.East, North: p.North + q.North}
}

// Sub returns p - q component-wise.
func (p LocalPoint) Sub(q LocalPoint) LocalPoint {
	return LocalPoint{East: p.East - q.East, North: p.North - q.North}
}

// DistanceTo returns the Euclidean distance between two local points.
func (p LocalPoint) DistanceTo(q LocalPoint) float64 {
	return math.Hypot(p.East-q.East, p.North-q.North)
}

// Round rounds v half away from zero to the given number of decimal places.
// Exports round degrees to 7 places and meters to 3.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// MetersPerDegree returns the meters spanned by one degree of latitude and
// longitude at the given latitude. The longitude factor collapses to zero at
// the poles; this tool targets small non-polar areas so that is accepted.
func MetersPerDegree(originLat float64) (mPerDegLat, mPerDegLon float64) {
	return MetersPerDegLat, MetersPerDegLat * math.Cos(originLat*math.Pi/180.0)
}

// Frame anchors a planar east/north frame at a geographic origin.
// The zero Frame is unanchored and rejects conversions with
// ErrUndefinedOrigin.
type Frame struct {
	origin  Point
	defined bool
}

// NewFrame returns a frame anchored at origin, which maps to local (0,0).
func NewFrame(origin Point) Frame {
	return Frame{origin: origin, defined: true}
}

// Defined reports whether the frame has an origin.
func (f Frame) Defined() bool {
	return f.defined
}

// Origin returns the anchoring geographic point. Only meaningful when
// Defined reports true.
func (f Frame) Origin() Point {
	return f.origin
}

// GeoToLocal converts a geographic point to frame-relative meters.
func (f Frame) GeoToLocal(p Point) (LocalPoint, error) {
	if !f.defined {
		return LocalPoint{}, ErrUndefinedOrigin
	}

	mLat, mLon := MetersPerDegree(f.origin.Lat)

	return LocalPoint{
		East:  (p.Lon - f.origin.Lon) * mLon,
		North: (p.Lat - f.origin.Lat) * mLat,
	}, nil
}

// LocalToGeo converts frame-relative meters back to a geographic point.
// When the longitude scale degenerates to zero the origin longitude is
// returned unchanged instead of dividing by zero.
func (f Frame) LocalToGeo(p LocalPoint) (Point, error) {
	if !f.defined {
		return Point{}, ErrUndefinedOrigin
	}

	mLat, mLon := MetersPerDegree(f.origin.Lat)

	out := Point{
		Lat: f.origin.Lat + p.North/mLat,
		Lon: f.origin.Lon,
	}
	if mLon != 0 {
		out.Lon += p.East / mLon
	}

	return out, nil
}

// Forward computes the destination reached from start by travelling
// distanceM meters along the great circle at bearingDeg, measured clockwise
// from TRUE NORTH. Any reference-direction rotation (for example the
// west-referenced bearings used on some courses) must be applied by the
// caller before calling Forward.
//
// Zero distance is the identity; a negative distance projects along the
// reciprocal bearing since the formula is sign-symmetric in the angular
// distance.
func Forward(start Point, bearingDeg, distanceM float64) Point {
	phi1 := start.Lat * math.Pi / 180.0
	lam1 := start.Lon * math.Pi / 180.0
	theta := bearingDeg * math.Pi / 180.0
	delta := distanceM / EarthRadiusM

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(sinPhi2)
	lam2 := lam1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*sinPhi2,
	)

	return Point{
		Lat: phi2 * 180.0 / math.Pi,
		Lon: lam2 * 180.0 / math.Pi,
	}
}
