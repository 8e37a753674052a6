// Package mission serializes the board to the mission file consumed by the
// downstream navigation stack, and loads such files back into a registry.
// The record shape and its precision (7 decimal places for degrees, 3 for
// meters) are contractual.
package mission

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Parsa-Sedighi/rb26-survey/internal/board"
	"github.com/Parsa-Sedighi/rb26-survey/internal/calib"
	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"
)

// Georef resolves local meters to geographic coordinates. geo.Frame
// implements it for origin mode, calib.PixelFrame for calibration mode.
type Georef interface {
	LocalToGeo(p geo.LocalPoint) (geo.Point, error)
}

// Offset is the exported operator-correction component.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Record is one exported entity.
type Record struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Kind   board.Kind `json:"kind"`
	Lat    float64    `json:"lat"`
	Lon    float64    `json:"lon"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Offset Offset     `json:"offset"`
}

// Calibration is the exported two-point calibration block.
type Calibration struct {
	P1 calib.Point `json:"p1"`
	P2 calib.Point `json:"p2"`
}

// File is a complete mission export. Exactly one of Origin or Calibration
// is set, so the local coordinates are reproducible on reload.
type File struct {
	Area            string       `json:"area,omitempty"`
	Origin          *geo.Point   `json:"origin,omitempty"`
	Calibration     *Calibration `json:"calibration,omitempty"`
	Waypoints       []Record     `json:"waypoints"`
	MissionElements []Record     `json:"mission_elements"`
}

// Export builds a mission file for an origin-mode session.
func Export(area string, reg *board.Registry, frame geo.Frame) (*File, error) {
	if !frame.Defined() {
		return nil, geo.ErrUndefinedOrigin
	}

	f, err := build(area, reg, frame)
	if err != nil {
		return nil, err
	}

	origin := frame.Origin()
	f.Origin = &origin

	return f, nil
}

// ExportCalibrated builds a mission file for a calibration-mode session.
func ExportCalibrated(area string, reg *board.Registry, pf calib.PixelFrame) (*File, error) {
	f, err := build(area, reg, pf)
	if err != nil {
		return nil, err
	}

	p1, p2, has1, has2 := pf.Mapper.Points()
	if !has1 || !has2 {
		return nil, calib.ErrNotCalibrated
	}
	f.Calibration = &Calibration{P1: p1, P2: p2}

	return f, nil
}

func build(area string, reg *board.Registry, georef Georef) (*File, error) {
	f := &File{
		Area:            area,
		Waypoints:       make([]Record, 0, len(reg.Waypoints())),
		MissionElements: make([]Record, 0, len(reg.Elements())),
	}

	for _, e := range reg.Waypoints() {
		rec, err := record(e, georef)
		if err != nil {
			return nil, err
		}
		f.Waypoints = append(f.Waypoints, rec)
	}
	for _, e := range reg.Elements() {
		rec, err := record(e, georef)
		if err != nil {
			return nil, err
		}
		f.MissionElements = append(f.MissionElements, rec)
	}

	return f, nil
}

func record(e *board.Entity, georef Georef) (Record, error) {
	final := e.Final()

	p, err := georef.LocalToGeo(final)
	if err != nil {
		return Record{}, fmt.Errorf("entity %s: %w", e.Name, err)
	}

	off := e.Offset()

	return Record{
		ID:   e.ID,
		Name: e.Name,
		Kind: e.Kind,
		Lat:  geo.Round(p.Lat, 7),
		Lon:  geo.Round(p.Lon, 7),
		X:    geo.Round(final.East, 3),
		Y:    geo.Round(final.North, 3),
		Offset: Offset{
			X: geo.Round(off.East, 3),
			Y: geo.Round(off.North, 3),
		},
	}, nil
}

// Registry rebuilds a registry from the file: the final position comes from
// x/y, the offset from the record, and the base is re-derived so the final
// position is preserved exactly. IDs are renumbered densely in file order.
func (f *File) Registry(rules board.Rules) *board.Registry {
	reg := board.NewRegistry()

	restore := func(k board.Kind, recs []Record) {
		for _, rec := range recs {
			final := geo.LocalPoint{East: rec.X, North: rec.Y}
			e := reg.Place(k, final, rec.Name, rules)
			if rec.Offset != (Offset{}) {
				reg.SetOffset(e, geo.LocalPoint{East: rec.Offset.X, North: rec.Offset.Y}, rules)
				reg.SetFinal(e, final, rules)
			}
		}
	}

	restore(board.KindWaypoint, f.Waypoints)
	restore(board.KindMissionElement, f.MissionElements)

	return reg
}

// LoadFile reads and parses a mission file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a mission file.
func Decode(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
