// Package config handles configuration loading and numeric input validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/Parsa-Sedighi/rb26-survey/internal/board"
	"github.com/Parsa-Sedighi/rb26-survey/internal/calib"
	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"

	"gopkg.in/yaml.v3"
)

// ErrInvalidNumber is returned when an operator-supplied field is not a
// finite number. Numeric input is rejected here, at the boundary, before it
// reaches the math core.
var ErrInvalidNumber = errors.New("invalid numeric input")

// Area describes one competition area: grid geometry, the geographic
// anchor (origin mode) or two calibration points (calibration mode), and
// the bearing convention of surveyed observations.
type Area struct {
	Name string `yaml:"name" json:"name"`

	// Grid geometry. The board is a GridSize x GridSize box centered on
	// the origin; placements clamp to +/- GridSize/2.
	GridSize float64 `yaml:"grid_size_m" json:"grid_size_m"`
	CellSize float64 `yaml:"cell_size_m" json:"cell_size_m"`
	Snap     bool    `yaml:"snap,omitempty" json:"snap"`

	// Origin mode anchor. Optional; origin-relative conversions fail
	// until it is set.
	Origin *geo.Point `yaml:"origin,omitempty" json:"origin,omitempty"`

	// Calibration mode control points. Optional alternative to Origin.
	Calibration *Calibration `yaml:"calibration,omitempty" json:"calibration,omitempty"`

	// BearingReference is added to operator bearings before the forward
	// geodesic, e.g. 270 for courses briefed with 0 degrees = west.
	BearingReference float64 `yaml:"bearing_reference_deg,omitempty" json:"bearing_reference_deg"`

	// Snapshot rendering.
	PxPerMeter float64 `yaml:"px_per_m,omitempty" json:"px_per_m"`
	Backdrop   string  `yaml:"backdrop,omitempty" json:"-"`
}

// Calibration is the two-point pixel<->geo calibration block.
type Calibration struct {
	P1 calib.Point `yaml:"p1" json:"p1"`
	P2 calib.Point `yaml:"p2" json:"p2"`
}

// Load reads and parses the YAML area file from the specified path and
// applies defaults and validation.
func Load(path string) (*Area, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a Area
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, err
	}

	a.applyDefaults()
	if err := a.Validate(); err != nil {
		return nil, err
	}

	return &a, nil
}

func (a *Area) applyDefaults() {
	if a.GridSize <= 0 {
		a.GridSize = 100
	}
	if a.CellSize <= 0 {
		a.CellSize = 5
	}
	if a.PxPerMeter <= 0 {
		a.PxPerMeter = 8
	}
}

// Validate rejects non-finite geometry and out-of-range origin values.
func (a *Area) Validate() error {
	for name, v := range map[string]float64{
		"grid_size_m":           a.GridSize,
		"cell_size_m":           a.CellSize,
		"bearing_reference_deg": a.BearingReference,
		"px_per_m":              a.PxPerMeter,
	} {
		if !finite(v) {
			return fmt.Errorf("%w: %s", ErrInvalidNumber, name)
		}
	}

	if a.Origin != nil {
		if !finite(a.Origin.Lat) || !finite(a.Origin.Lon) {
			return fmt.Errorf("%w: origin", ErrInvalidNumber)
		}
		if a.Origin.Lat < -90 || a.Origin.Lat > 90 || a.Origin.Lon < -180 || a.Origin.Lon > 180 {
			return fmt.Errorf("%w: origin out of range", ErrInvalidNumber)
		}
	}

	return nil
}

// Rules returns the placement constraints of the area.
func (a *Area) Rules() board.Rules {
	return board.Rules{
		HalfExtent: a.GridSize / 2,
		CellSize:   a.CellSize,
		Snap:       a.Snap,
	}
}

// Frame returns the origin-anchored frame; unanchored when the area has no
// origin.
func (a *Area) Frame() geo.Frame {
	if a.Origin == nil {
		return geo.Frame{}
	}
	return geo.NewFrame(*a.Origin)
}

// Mapper builds the calibration mapper from the configured control points.
// Returns nil when the area carries no calibration block.
func (a *Area) Mapper() (*calib.Mapper, error) {
	if a.Calibration == nil {
		return nil, nil
	}

	var m calib.Mapper
	if err := m.SetPoint(1, a.Calibration.P1); err != nil {
		return nil, err
	}
	if err := m.SetPoint(2, a.Calibration.P2); err != nil {
		return nil, err
	}

	return &m, nil
}

// TrueBearing converts an operator bearing in the area's reference
// convention to a true-north bearing in [0, 360).
func (a *Area) TrueBearing(bearingDeg float64) float64 {
	b := math.Mod(a.BearingReference+bearingDeg, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// ParseFinite parses an operator-entered decimal field, rejecting anything
// non-numeric or non-finite.
func ParseFinite(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, field, s)
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
