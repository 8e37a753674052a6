package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/Parsa-Sedighi/rb26-survey/internal/board"
	"github.com/Parsa-Sedighi/rb26-survey/internal/calib"
	"github.com/Parsa-Sedighi/rb26-survey/internal/config"
	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"
	"github.com/Parsa-Sedighi/rb26-survey/internal/logger"
	"github.com/Parsa-Sedighi/rb26-survey/internal/mission"
	"github.com/Parsa-Sedighi/rb26-survey/internal/render"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	AreaFile string `short:"c" long:"area"     env:"AREA_FILE" description:"Path to area configuration file" default:"area.yaml"`
	PlanFile string `short:"i" long:"plan"     env:"PLAN_FILE" description:"Path to placement plan file"     default:"plan.yaml"`
	Output   string `short:"o" long:"out"      description:"Mission JSON output path"                        default:"mission.json"`
	GeoJSON  string `short:"g" long:"geojson"  description:"Also write a GeoJSON FeatureCollection here"`
	Snapshot string `short:"s" long:"snapshot" description:"Also write a WebP board snapshot here"`
	Compact  bool   `short:"C" long:"compact"  description:"Minify the mission JSON output"`
}

// georef is the conversion surface shared by origin and calibration mode.
type georef interface {
	LocalToGeo(p geo.LocalPoint) (geo.Point, error)
	GeoToLocal(p geo.Point) (geo.LocalPoint, error)
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	area, err := config.Load(opts.AreaFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load area configuration")
	}

	plan, err := config.LoadPlan(opts.PlanFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load plan")
	}

	frame := area.Frame()
	ref, pixelFrame := resolveGeoref(area, frame)

	reg := board.NewRegistry()
	rules := area.Rules()

	for i, p := range plan.Placements {
		final, err := resolveFinal(area, ref, p)
		if err != nil {
			log.Error().Err(err).Int("placement", i+1).Str("name", p.Name).Msg("Placement skipped")
			continue
		}

		kind := board.KindWaypoint
		if p.Kind == "mission_element" {
			kind = board.KindMissionElement
		}

		e := reg.Place(kind, final, p.Name, rules)
		if p.Offset != nil {
			reg.SetOffset(e, *p.Offset, rules)
		}

		log.Debug().
			Str("name", e.Name).
			Str("kind", e.Kind.String()).
			Float64("x", e.Final().East).
			Float64("y", e.Final().North).
			Msg("Placed")
	}

	var mf *mission.File
	switch {
	case frame.Defined():
		mf, err = mission.Export(area.Name, reg, frame)
	case pixelFrame != nil:
		mf, err = mission.ExportCalibrated(area.Name, reg, *pixelFrame)
	default:
		log.Fatal().Msg("Area has neither an origin nor a ready calibration")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build mission")
	}

	if err := mf.Save(opts.Output, opts.Compact); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write mission")
	}

	if opts.GeoJSON != "" {
		fc, err := mission.GeoJSON(reg, ref)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build GeoJSON")
		}
		if err := saveGeoJSON(opts.GeoJSON, fc); err != nil {
			log.Fatal().Err(err).Str("path", opts.GeoJSON).Msg("Failed to write GeoJSON")
		}
	}

	if opts.Snapshot != "" {
		img := render.Snapshot(area, reg)
		if err := render.Save(opts.Snapshot, img); err != nil {
			log.Fatal().Err(err).Str("path", opts.Snapshot).Msg("Failed to write snapshot")
		}
	}

	log.Info().
		Int("waypoints", len(reg.Waypoints())).
		Int("mission_elements", len(reg.Elements())).
		Str("out", opts.Output).
		Msg("Plan processed")
}

// resolveGeoref picks the session mode: origin wins, calibration is the
// fallback. Exits when calibration points are configured but degenerate.
func resolveGeoref(area *config.Area, frame geo.Frame) (georef, *calib.PixelFrame) {
	if frame.Defined() {
		return frame, nil
	}

	mapper, err := area.Mapper()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid calibration")
	}
	if mapper == nil || !mapper.Ready() {
		return nil, nil
	}

	half := area.GridSize * area.PxPerMeter / 2
	pf := &calib.PixelFrame{
		Mapper:     mapper,
		CenterX:    half,
		CenterY:    half,
		PxPerMeter: area.PxPerMeter,
	}
	return *pf, pf
}

func resolveFinal(area *config.Area, ref georef, p config.Placement) (geo.LocalPoint, error) {
	switch {
	case p.At != nil:
		return *p.At, nil

	case p.Geo != nil:
		if ref == nil {
			return geo.LocalPoint{}, geo.ErrUndefinedOrigin
		}
		return ref.GeoToLocal(*p.Geo)

	default:
		obs := p.Project
		dest := geo.Forward(
			geo.Point{Lat: obs.Lat, Lon: obs.Lon},
			area.TrueBearing(obs.Bearing),
			obs.Dist,
		)
		if ref == nil {
			return geo.LocalPoint{}, geo.ErrUndefinedOrigin
		}
		return ref.GeoToLocal(dest)
	}
}

func saveGeoJSON(path string, fc geo.GeoJSONFeatureCollection) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return writeJSON(f, fc)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
