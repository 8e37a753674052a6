package config

import (
	"fmt"
	"os"

	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"

	"gopkg.in/yaml.v3"
)

// Plan is an ordered list of placements processed into a registry by
// cmd/plan.
type Plan struct {
	Placements []Placement `yaml:"placements"`
}

// Placement describes one entity to place. Exactly one of At, Geo or
// Project must be set.
type Placement struct {
	Name string `yaml:"name,omitempty"`
	Kind string `yaml:"kind,omitempty"` // "waypoint" (default) or "mission_element"

	// At places directly in local meters.
	At *geo.LocalPoint `yaml:"at,omitempty"`

	// Geo places a geographic point through the area frame.
	Geo *geo.Point `yaml:"geo,omitempty"`

	// Project places the forward-geodesic destination of an observation.
	Project *Observation `yaml:"project,omitempty"`

	// Offset is applied after placement, as the operator correction.
	Offset *geo.LocalPoint `yaml:"offset,omitempty"`
}

// Observation is an observer position with a bearing (in the area's
// reference convention) and a distance in meters.
type Observation struct {
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Bearing float64 `yaml:"bearing"`
	Dist    float64 `yaml:"dist"`
}

// LoadPlan reads and validates a placement plan.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	for i := range p.Placements {
		if err := p.Placements[i].validate(); err != nil {
			return nil, fmt.Errorf("placement %d: %w", i+1, err)
		}
	}

	return &p, nil
}

func (p *Placement) validate() error {
	set := 0
	if p.At != nil {
		set++
		if !finite(p.At.East) || !finite(p.At.North) {
			return fmt.Errorf("%w: at", ErrInvalidNumber)
		}
	}
	if p.Geo != nil {
		set++
		if !finite(p.Geo.Lat) || !finite(p.Geo.Lon) {
			return fmt.Errorf("%w: geo", ErrInvalidNumber)
		}
	}
	if p.Project != nil {
		set++
		for name, v := range map[string]float64{
			"lat": p.Project.Lat, "lon": p.Project.Lon,
			"bearing": p.Project.Bearing, "dist": p.Project.Dist,
		} {
			if !finite(v) {
				return fmt.Errorf("%w: project.%s", ErrInvalidNumber, name)
			}
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of at, geo or project must be set")
	}

	if p.Offset != nil && (!finite(p.Offset.East) || !finite(p.Offset.North)) {
		return fmt.Errorf("%w: offset", ErrInvalidNumber)
	}

	switch p.Kind {
	case "", "waypoint", "mission_element":
	default:
		return fmt.Errorf("unknown kind %q", p.Kind)
	}

	return nil
}
