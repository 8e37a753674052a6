// Package server exposes the board to downstream consumers over a small
// read-only HTTP API: the mission file, its GeoJSON form, one-shot
// conversions and a rendered snapshot.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Parsa-Sedighi/rb26-survey/internal/calib"
	"github.com/Parsa-Sedighi/rb26-survey/internal/config"
	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"
	"github.com/Parsa-Sedighi/rb26-survey/internal/mission"
	"github.com/Parsa-Sedighi/rb26-survey/internal/render"
)

// HandleArea serves the area configuration.
func (s *ServerContext) HandleArea(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Area)
}

// HandleMission serves the mission file. The registry version doubles as
// the ETag, so consumers can poll cheaply for changes.
func (s *ServerContext) HandleMission(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	etag := fmt.Sprintf(`"v%d"`, s.Registry.Version())
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	f, err := s.export()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	_ = json.NewEncoder(w).Encode(f)
}

// HandleGeoJSON serves the board as a GeoJSON FeatureCollection.
func (s *ServerContext) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	georef, ok := s.georef()
	if !ok {
		writeError(w, geo.ErrUndefinedOrigin)
		return
	}

	fc, err := mission.GeoJSON(s.Registry, georef)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(fc)
}

// HandleConvert converts a geographic point to local meters.
// Query: lat, lon.
func (s *ServerContext) HandleConvert(w http.ResponseWriter, r *http.Request) {
	lat, err := config.ParseFinite("lat", r.URL.Query().Get("lat"))
	if err != nil {
		writeError(w, err)
		return
	}
	lon, err := config.ParseFinite("lon", r.URL.Query().Get("lon"))
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	georef, ok := s.georef()
	if !ok {
		writeError(w, geo.ErrUndefinedOrigin)
		return
	}

	local, err := georef.GeoToLocal(geo.Point{Lat: lat, Lon: lon})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Geo   geo.Point      `json:"geo"`
		Local geo.LocalPoint `json:"local"`
	}{Geo: geo.Point{Lat: lat, Lon: lon}, Local: local})
}

// HandleProject computes the forward-geodesic destination of an observer.
// Query: lat, lon, bearing (in the area's reference convention), dist.
// The local position is included when a session mode is configured.
func (s *ServerContext) HandleProject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var vals [4]float64
	for i, name := range []string{"lat", "lon", "bearing", "dist"} {
		v, err := config.ParseFinite(name, q.Get(name))
		if err != nil {
			writeError(w, err)
			return
		}
		vals[i] = v
	}

	dest := geo.Forward(
		geo.Point{Lat: vals[0], Lon: vals[1]},
		s.Area.TrueBearing(vals[2]),
		vals[3],
	)

	out := struct {
		Geo   geo.Point       `json:"geo"`
		Local *geo.LocalPoint `json:"local,omitempty"`
	}{Geo: geo.Point{Lat: geo.Round(dest.Lat, 7), Lon: geo.Round(dest.Lon, 7)}}

	s.mu.Lock()
	defer s.mu.Unlock()

	if georef, ok := s.georef(); ok {
		if local, err := georef.GeoToLocal(dest); err == nil {
			out.Local = &local
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// HandleSnapshot serves the rendered board image.
func (s *ServerContext) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	img := render.Snapshot(s.Area, s.Registry)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "no-cache")
	_ = render.EncodeWebP(w, img)
}

func (s *ServerContext) export() (*mission.File, error) {
	if s.frame.Defined() {
		return mission.Export(s.Area.Name, s.Registry, s.frame)
	}

	georef, ok := s.georef()
	if !ok {
		return nil, geo.ErrUndefinedOrigin
	}

	return mission.ExportCalibrated(s.Area.Name, s.Registry, georef.(calib.PixelFrame))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, config.ErrInvalidNumber):
		status = http.StatusBadRequest
	case errors.Is(err, geo.ErrUndefinedOrigin),
		errors.Is(err, calib.ErrNotCalibrated),
		errors.Is(err, calib.ErrDegenerateCalibration):
		status = http.StatusConflict
	}

	http.Error(w, err.Error(), status)
}
