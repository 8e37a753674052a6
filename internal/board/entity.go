// Package board models the placeable entities of the competition area: a
// waypoint or mission element carries a base position plus an operator
// offset, and their sum is the final position shown and exported. All
// positions live in the local east/north frame.
package board

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Parsa-Sedighi/rb26-survey/internal/geo"
)

// Kind tags an entity as a path waypoint or a surveyed mission element.
type Kind int

const (
	KindWaypoint Kind = iota
	KindMissionElement
)

// String returns the wire name used in mission files.
func (k Kind) String() string {
	if k == KindMissionElement {
		return "mission_element"
	}
	return "waypoint"
}

// MarshalJSON encodes the kind as its wire name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes "waypoint" or "mission_element".
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "waypoint":
		*k = KindWaypoint
	case "mission_element":
		*k = KindMissionElement
	default:
		return fmt.Errorf("unknown entity kind %q", s)
	}

	return nil
}

// DefaultName returns the sequential display name for the n-th entity of a
// kind, counted from 1.
func DefaultName(k Kind, n int) string {
	if k == KindMissionElement {
		return fmt.Sprintf("ms%d", n)
	}
	return fmt.Sprintf("wp%d", n)
}

// Rules are the placement constraints of the area: a symmetric half-extent
// box around the origin and an optional snap grid.
type Rules struct {
	HalfExtent float64
	CellSize   float64
	Snap       bool
}

// Apply clamps p into the bounds box, then snaps each axis to the nearest
// cell multiple when snapping is enabled. Snapping an already snapped value
// is a no-op.
func (r Rules) Apply(p geo.LocalPoint) geo.LocalPoint {
	out := geo.LocalPoint{
		East:  clamp(p.East, -r.HalfExtent, r.HalfExtent),
		North: clamp(p.North, -r.HalfExtent, r.HalfExtent),
	}

	if r.Snap && r.CellSize > 0 {
		out.East = math.Round(out.East/r.CellSize) * r.CellSize
		out.North = math.Round(out.North/r.CellSize) * r.CellSize
	}

	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Entity is a placed object on the board. The invariant Final == base+offset
// holds after every mutation: position edits preserve the offset by
// re-deriving the base, offset edits move the final and keep the base only
// until the new final is clamped back into bounds.
type Entity struct {
	Kind Kind
	ID   int // dense 1-based, reassigned by the registry
	Name string

	base   geo.LocalPoint
	offset geo.LocalPoint
	start  geo.LocalPoint
}

// Place creates an entity at the given final position with a zero offset.
// The position is clamped and snapped before it becomes base and start.
func Place(k Kind, final geo.LocalPoint, name string, r Rules) *Entity {
	p := r.Apply(final)

	return &Entity{
		Kind:  k,
		Name:  name,
		base:  p,
		start: p,
	}
}

// Final returns base + offset, the displayed and exported position.
func (e *Entity) Final() geo.LocalPoint {
	return e.base.Add(e.offset)
}

// Base returns the primary placement component.
func (e *Entity) Base() geo.LocalPoint {
	return e.base
}

// Offset returns the operator correction component.
func (e *Entity) Offset() geo.LocalPoint {
	return e.offset
}

// Start returns the position captured at placement, used for displacement
// reporting only.
func (e *Entity) Start() geo.LocalPoint {
	return e.start
}

// SetFinal moves the entity to a new final position. The position is
// clamped and snapped, then the base is re-derived so the offset survives
// exactly.
func (e *Entity) SetFinal(final geo.LocalPoint, r Rules) {
	e.base = r.Apply(final).Sub(e.offset)
}

// SetOffset replaces the offset and re-applies the bounds to the resulting
// final position, so an offset edit can itself push the entity onto the
// boundary. The offset value is kept as given; only the base absorbs the
// correction.
func (e *Entity) SetOffset(offset geo.LocalPoint, r Rules) {
	e.offset = offset
	e.base = r.Apply(e.base.Add(e.offset)).Sub(e.offset)
}

// Displacement returns the meters between the current final position and
// the position at placement.
func (e *Entity) Displacement() float64 {
	return e.Final().DistanceTo(e.start)
}
