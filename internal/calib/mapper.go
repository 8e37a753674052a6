// Package calib derives a pixel<->geographic mapping from two calibration
// control points, for working off an aerial image when no origin is known.
// This mode is independent of the origin-anchored frame in internal/geo; a
// session uses one or the other, never both.
package calib

import (
	"errors"

	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"
)

var (
	// ErrNotCalibrated is returned by conversions before both control
	// points are set and mutually valid.
	ErrNotCalibrated = errors.New("calibration requires two valid control points")

	// ErrDegenerateCalibration is returned when the two control points
	// share a pixel-x, pixel-y, latitude or longitude value, which would
	// make one of the per-axis mappings divide by zero.
	ErrDegenerateCalibration = errors.New("calibration points coincide on an axis")
)

// Point pairs a pixel location on the reference image with its geographic
// position.
type Point struct {
	PxX float64   `json:"px" yaml:"px"`
	PxY float64   `json:"py" yaml:"py"`
	Geo geo.Point `json:"geo" yaml:"geo"`
}

// Mapper holds up to two calibration points and interpolates between them,
// one linear mapping per axis:
//
//	lon = lon1 + (px - px1) * (lon2 - lon1) / (px2 - px1)
//	lat = lat1 + (py - py1) * (lat2 - lat1) / (py2 - py1)
//
// Assumes a north-up image over a small area.
type Mapper struct {
	p1, p2 Point
	has1   bool
	has2   bool
}

// SetPoint stores control point 1 or 2. If the other point is already set
// and the resulting pair is degenerate, the mapper is left unchanged and
// ErrDegenerateCalibration is returned.
func (m *Mapper) SetPoint(which int, p Point) error {
	switch which {
	case 1:
		if m.has2 && degenerate(p, m.p2) {
			return ErrDegenerateCalibration
		}
		m.p1, m.has1 = p, true
	case 2:
		if m.has1 && degenerate(m.p1, p) {
			return ErrDegenerateCalibration
		}
		m.p2, m.has2 = p, true
	default:
		return errors.New("calibration point index must be 1 or 2")
	}

	return nil
}

// Points returns the stored control points and whether each is set.
func (m *Mapper) Points() (p1, p2 Point, has1, has2 bool) {
	return m.p1, m.p2, m.has1, m.has2
}

// Ready reports whether both points are set and differ on every axis.
func (m *Mapper) Ready() bool {
	return m.has1 && m.has2 && !degenerate(m.p1, m.p2)
}

// PixelToGeo maps an image pixel to a geographic point.
func (m *Mapper) PixelToGeo(px, py float64) (geo.Point, error) {
	if !m.Ready() {
		return geo.Point{}, ErrNotCalibrated
	}

	return geo.Point{
		Lat: m.p1.Geo.Lat + (py-m.p1.PxY)*(m.p2.Geo.Lat-m.p1.Geo.Lat)/(m.p2.PxY-m.p1.PxY),
		Lon: m.p1.Geo.Lon + (px-m.p1.PxX)*(m.p2.Geo.Lon-m.p1.Geo.Lon)/(m.p2.PxX-m.p1.PxX),
	}, nil
}

// GeoToPixel maps a geographic point back to image pixels.
func (m *Mapper) GeoToPixel(p geo.Point) (px, py float64, err error) {
	if !m.Ready() {
		return 0, 0, ErrNotCalibrated
	}

	px = m.p1.PxX + (p.Lon-m.p1.Geo.Lon)*(m.p2.PxX-m.p1.PxX)/(m.p2.Geo.Lon-m.p1.Geo.Lon)
	py = m.p1.PxY + (p.Lat-m.p1.Geo.Lat)*(m.p2.PxY-m.p1.PxY)/(m.p2.Geo.Lat-m.p1.Geo.Lat)

	return px, py, nil
}

func degenerate(a, b Point) bool {
	return a.PxX == b.PxX || a.PxY == b.PxY ||
		a.Geo.Lat == b.Geo.Lat || a.Geo.Lon == b.Geo.Lon
}
