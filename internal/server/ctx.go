package server

import (
	"sync"

	"github.com/Parsa-Sedighi/rb26-survey/internal/board"
	"github.com/Parsa-Sedighi/rb26-survey/internal/calib"
	"github.com/Parsa-Sedighi/rb26-survey/internal/config"
	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"

	"github.com/rs/zerolog/log"
)

// Frames unifies the two session modes behind one conversion surface.
// geo.Frame (origin mode) and calib.PixelFrame (calibration mode) both
// satisfy it.
type Frames interface {
	LocalToGeo(p geo.LocalPoint) (geo.Point, error)
	GeoToLocal(p geo.Point) (geo.LocalPoint, error)
}

// ServerContext holds dependencies for request handlers. The board core is
// synchronous and unguarded, so the context serializes access at the HTTP
// boundary.
type ServerContext struct {
	Area     *config.Area
	Registry *board.Registry

	frame  geo.Frame
	mapper *calib.Mapper

	mu sync.Mutex
}

// NewServerContext initializes the context and resolves the session mode.
// Origin mode wins when both an origin and calibration points are
// configured; the two are never combined.
func NewServerContext(a *config.Area, reg *board.Registry) (*ServerContext, error) {
	mapper, err := a.Mapper()
	if err != nil {
		return nil, err
	}

	ctx := &ServerContext{
		Area:     a,
		Registry: reg,
		frame:    a.Frame(),
		mapper:   mapper,
	}

	mode := "none"
	switch {
	case ctx.frame.Defined():
		mode = "origin"
	case mapper != nil && mapper.Ready():
		mode = "calibration"
	}

	log.Info().
		Str("area", a.Name).
		Str("mode", mode).
		Int("entities", reg.Len()).
		Float64("grid_size_m", a.GridSize).
		Msg("Server context initialized")

	return ctx, nil
}

// georef returns the active conversion frame, or false when neither mode is
// configured.
func (s *ServerContext) georef() (Frames, bool) {
	if s.frame.Defined() {
		return s.frame, true
	}
	if s.mapper != nil && s.mapper.Ready() {
		half := s.Area.GridSize * s.Area.PxPerMeter / 2
		return calib.PixelFrame{
			Mapper:     s.mapper,
			CenterX:    half,
			CenterY:    half,
			PxPerMeter: s.Area.PxPerMeter,
		}, true
	}
	return nil, false
}
