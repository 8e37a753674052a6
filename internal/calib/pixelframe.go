package calib

import "github.com/Parsa-Sedighi/rb26-survey/internal/geo"

// PixelFrame adapts a calibrated image to the local east/north meters frame:
// local (0,0) sits at the given center pixel, east grows to the right and
// north grows upward (image rows grow downward). It gives calibration-mode
// sessions the same conversion surface as an origin-anchored geo.Frame.
type PixelFrame struct {
	Mapper     *Mapper
	CenterX    float64
	CenterY    float64
	PxPerMeter float64
}

// LocalToGeo converts local meters to a geographic point through the
// calibration.
func (f PixelFrame) LocalToGeo(p geo.LocalPoint) (geo.Point, error) {
	return f.Mapper.PixelToGeo(
		f.CenterX+p.East*f.PxPerMeter,
		f.CenterY-p.North*f.PxPerMeter,
	)
}

// GeoToLocal converts a geographic point to local meters through the
// calibration.
func (f PixelFrame) GeoToLocal(p geo.Point) (geo.LocalPoint, error) {
	px, py, err := f.Mapper.GeoToPixel(p)
	if err != nil {
		return geo.LocalPoint{}, err
	}

	return geo.LocalPoint{
		East:  (px - f.CenterX) / f.PxPerMeter,
		North: (f.CenterY - py) / f.PxPerMeter,
	}, nil
}
