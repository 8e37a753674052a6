package board

import "github.com/Parsa-Sedighi/rb26-survey/internal/geo"

// Registry keeps the placed entities in order, one sequence per kind.
// IDs are dense and 1-based per kind; every membership change renumbers the
// surviving entities in sequence order, so an ID is only stable between
// mutations. The version counter is the change-notification surface:
// consumers re-read whenever it moves.
type Registry struct {
	waypoints []*Entity
	elements  []*Entity
	version   uint64
}

// NewRegistry returns an empty registry at version 0.
func NewRegistry() *Registry {
	return &Registry{}
}

// Place creates an entity through board.Place, adds it and returns it.
// An empty name gets the sequential default for its kind.
func (r *Registry) Place(k Kind, final geo.LocalPoint, name string, rules Rules) *Entity {
	if name == "" {
		name = DefaultName(k, r.countOf(k)+1)
	}

	e := Place(k, final, name, rules)
	r.Add(e)

	return e
}

// Add appends the entity to its kind's sequence.
func (r *Registry) Add(e *Entity) {
	if e.Kind == KindMissionElement {
		r.elements = append(r.elements, e)
	} else {
		r.waypoints = append(r.waypoints, e)
	}
	r.renumber()
}

// Remove deletes the entity by identity. It reports whether the entity was
// present; surviving entities are renumbered.
func (r *Registry) Remove(e *Entity) bool {
	seq := &r.waypoints
	if e.Kind == KindMissionElement {
		seq = &r.elements
	}

	for i, cur := range *seq {
		if cur == e {
			*seq = append((*seq)[:i], (*seq)[i+1:]...)
			r.renumber()
			return true
		}
	}

	return false
}

// Clear removes every entity.
func (r *Registry) Clear() {
	r.waypoints = nil
	r.elements = nil
	r.version++
}

// SetFinal moves an entity and records the change.
func (r *Registry) SetFinal(e *Entity, final geo.LocalPoint, rules Rules) {
	e.SetFinal(final, rules)
	r.version++
}

// SetOffset updates an entity's offset and records the change.
func (r *Registry) SetOffset(e *Entity, offset geo.LocalPoint, rules Rules) {
	e.SetOffset(offset, rules)
	r.version++
}

// Rename updates an entity's display name and records the change.
func (r *Registry) Rename(e *Entity, name string) {
	e.Name = name
	r.version++
}

// Waypoints returns the waypoint sequence in placement order.
// The slice is shared; callers must not mutate it.
func (r *Registry) Waypoints() []*Entity {
	return r.waypoints
}

// Elements returns the mission-element sequence in placement order.
func (r *Registry) Elements() []*Entity {
	return r.elements
}

// Len returns the total entity count across both kinds.
func (r *Registry) Len() int {
	return len(r.waypoints) + len(r.elements)
}

// Version returns the monotonic change counter.
func (r *Registry) Version() uint64 {
	return r.version
}

func (r *Registry) countOf(k Kind) int {
	if k == KindMissionElement {
		return len(r.elements)
	}
	return len(r.waypoints)
}

func (r *Registry) renumber() {
	for i, e := range r.waypoints {
		e.ID = i + 1
	}
	for i, e := range r.elements {
		e.ID = i + 1
	}
	r.version++
}
