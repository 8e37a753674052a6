package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Parsa-Sedighi/rb26-survey/internal/calib"
	"github.com/Parsa-Sedighi/rb26-survey/internal/config"
	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	AreaFile string `short:"c" long:"area" description:"Area configuration supplying origin/calibration and bearing reference" required:"true"`
	Op       string `short:"p" long:"op" description:"Conversion to perform" choice:"geo2local" choice:"local2geo" choice:"project" choice:"pixel2geo" choice:"geo2pixel" required:"true"`
	Format   string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Output   string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`

	Lat     string `long:"lat" description:"Latitude (deg)"`
	Lon     string `long:"lon" description:"Longitude (deg)"`
	X       string `long:"x" description:"East (m)"`
	Y       string `long:"y" description:"North (m)"`
	Px      string `long:"px" description:"Pixel X"`
	Py      string `long:"py" description:"Pixel Y"`
	Bearing string `long:"bearing" description:"Bearing (deg, in the area's reference convention)"`
	Dist    string `long:"dist" description:"Distance (m)"`
}

type result struct {
	Geo   *geo.Point      `json:"geo,omitempty" yaml:"geo,omitempty"`
	Local *geo.LocalPoint `json:"local,omitempty" yaml:"local,omitempty"`
	Px    *float64        `json:"px,omitempty" yaml:"px,omitempty"`
	Py    *float64        `json:"py,omitempty" yaml:"py,omitempty"`
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

	area, err := config.Load(opts.AreaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading area: %v\n", err)
		os.Exit(1)
	}

	res, err := run(area, &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(res)
	} else {
		outputData, err = json.MarshalIndent(res, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(string(outputData))
}

func run(area *config.Area, opts *Options) (*result, error) {
	frame := area.Frame()

	switch opts.Op {
	case "geo2local":
		p, err := parseGeo(opts)
		if err != nil {
			return nil, err
		}
		local, err := frame.GeoToLocal(p)
		if err != nil {
			return nil, err
		}
		return &result{Geo: &p, Local: &local}, nil

	case "local2geo":
		x, err := config.ParseFinite("x", opts.X)
		if err != nil {
			return nil, err
		}
		y, err := config.ParseFinite("y", opts.Y)
		if err != nil {
			return nil, err
		}
		local := geo.LocalPoint{East: x, North: y}
		p, err := frame.LocalToGeo(local)
		if err != nil {
			return nil, err
		}
		return &result{Geo: &p, Local: &local}, nil

	case "project":
		p, err := parseGeo(opts)
		if err != nil {
			return nil, err
		}
		brg, err := config.ParseFinite("bearing", opts.Bearing)
		if err != nil {
			return nil, err
		}
		dist, err := config.ParseFinite("dist", opts.Dist)
		if err != nil {
			return nil, err
		}

		dest := geo.Forward(p, area.TrueBearing(brg), dist)
		res := &result{Geo: &dest}
		if local, err := frame.GeoToLocal(dest); err == nil {
			res.Local = &local
		}
		return res, nil

	case "pixel2geo":
		m, err := mapper(area)
		if err != nil {
			return nil, err
		}
		px, err := config.ParseFinite("px", opts.Px)
		if err != nil {
			return nil, err
		}
		py, err := config.ParseFinite("py", opts.Py)
		if err != nil {
			return nil, err
		}
		p, err := m.PixelToGeo(px, py)
		if err != nil {
			return nil, err
		}
		return &result{Geo: &p, Px: &px, Py: &py}, nil

	default: // geo2pixel
		m, err := mapper(area)
		if err != nil {
			return nil, err
		}
		p, err := parseGeo(opts)
		if err != nil {
			return nil, err
		}
		px, py, err := m.GeoToPixel(p)
		if err != nil {
			return nil, err
		}
		return &result{Geo: &p, Px: &px, Py: &py}, nil
	}
}

func parseGeo(opts *Options) (geo.Point, error) {
	lat, err := config.ParseFinite("lat", opts.Lat)
	if err != nil {
		return geo.Point{}, err
	}
	lon, err := config.ParseFinite("lon", opts.Lon)
	if err != nil {
		return geo.Point{}, err
	}
	return geo.Point{Lat: lat, Lon: lon}, nil
}

func mapper(area *config.Area) (*calib.Mapper, error) {
	m, err := area.Mapper()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, calib.ErrNotCalibrated
	}
	return m, nil
}
