package mission

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Parsa-Sedighi/rb26-survey/internal/board"
	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
)

// Encode marshals the file, indented for humans or minified for transfer.
func (f *File) Encode(compact bool) ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	if !compact {
		return data, nil
	}

	m := minify.New()
	m.AddFunc("application/json", mjson.Minify)

	return m.Bytes("application/json", data)
}

// Save writes the encoded file to disk, creating parent directories.
func (f *File) Save(path string, compact bool) error {
	data, err := f.Encode(compact)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	_, err = out.Write(data)
	return err
}

// GeoJSON converts the board to a FeatureCollection of Point features, one
// per entity, with id/name/kind/displacement properties.
func GeoJSON(reg *board.Registry, georef Georef) (geo.GeoJSONFeatureCollection, error) {
	fc := geo.GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]geo.GeoJSONFeature, 0, reg.Len()),
	}

	add := func(entities []*board.Entity) error {
		for _, e := range entities {
			p, err := georef.LocalToGeo(e.Final())
			if err != nil {
				return err
			}

			fc.Features = append(fc.Features, geo.NewPointFeature(p, map[string]interface{}{
				"id":             e.ID,
				"name":           e.Name,
				"kind":           e.Kind.String(),
				"displacement_m": geo.Round(e.Displacement(), 3),
			}))
		}
		return nil
	}

	if err := add(reg.Waypoints()); err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}
	if err := add(reg.Elements()); err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}

	return fc, nil
}
