package ecs

import "github.com/milk9111/brawler/ecs/component"

// System updates a world once per tick.
type System interface {
	Update(w *World)
}

// Kind is the type-erased view of a component.ComponentKind[T]; any kind
// value satisfies it. World methods take Kind so heterogeneous kinds can be
// mixed in one query.
type Kind interface {
	ID() component.ComponentID
}

// World owns entities, component stores, system order, and the frame event
// queue. It is single-threaded: systems run in registration order on the
// game tick.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	systems  []System
	events   EventQueue
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]*SparseSet),
	}
}

// CreateEntity allocates a new entity handle.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity kills an entity and drops all of its components. Reports
// false for stale handles.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.entities.destroy(e) {
		return false
	}
	id := int(e.id())
	for _, s := range w.stores {
		s.Remove(id)
	}
	return true
}

// IsAlive reports whether the handle refers to a live entity.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.entities.count
}

// AddComponent attaches value to e under kind, replacing any existing
// component of that kind.
func (w *World) AddComponent(e Entity, kind Kind, value any) error {
	if kind == nil || kind.ID() == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	w.store(kind.ID()).Set(int(e.id()), value)
	return nil
}

// GetComponent returns the type-erased component for e, if present.
func (w *World) GetComponent(e Entity, kind Kind) (any, bool) {
	if kind == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	s := w.stores[kind.ID()]
	if s == nil {
		return nil, false
	}
	v := s.Get(int(e.id()))
	if v == nil {
		return nil, false
	}
	return v, true
}

// HasComponent reports whether e carries a component of kind.
func (w *World) HasComponent(e Entity, kind Kind) bool {
	if kind == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.stores[kind.ID()].Has(int(e.id()))
}

// RemoveComponent detaches the component of kind from e.
func (w *World) RemoveComponent(e Entity, kind Kind) bool {
	if kind == nil || !w.entities.isAlive(e) {
		return false
	}
	s := w.stores[kind.ID()]
	if s == nil || !s.Has(int(e.id())) {
		return false
	}
	s.Remove(int(e.id()))
	return true
}

// Query returns the live entities carrying every listed kind. Iteration
// starts from the smallest store.
func (w *World) Query(kinds ...Kind) []Entity {
	if len(kinds) == 0 {
		return nil
	}

	smallest := w.stores[kinds[0].ID()]
	for _, k := range kinds[1:] {
		s := w.stores[k.ID()]
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	if smallest.Len() == 0 {
		return nil
	}

	out := make([]Entity, 0, smallest.Len())
	for _, id := range smallest.EntityIDs() {
		e, ok := w.entities.handleFor(id)
		if !ok {
			continue
		}
		match := true
		for _, k := range kinds {
			if !w.stores[k.ID()].Has(id) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// First returns any one live entity carrying kind.
func (w *World) First(kind Kind) (Entity, bool) {
	if kind == nil {
		return 0, false
	}
	s := w.stores[kind.ID()]
	for _, id := range s.EntityIDs() {
		if e, ok := w.entities.handleFor(id); ok {
			return e, true
		}
	}
	return 0, false
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// Systems returns a copy of the update order.
func (w *World) Systems() []System {
	out := make([]System, 0, len(w.systems))
	return append(out, w.systems...)
}

// Update runs all systems once, then drops any events nobody drained.
func (w *World) Update() {
	for _, s := range w.systems {
		if s != nil {
			s.Update(w)
		}
	}
	w.events.flush()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	return &w.events
}

func (w *World) store(id component.ComponentID) *SparseSet {
	s := w.stores[id]
	if s == nil {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

func (w *World) storeFor(id component.ComponentID) *SparseSet {
	return w.stores[id]
}

// entityFor rebuilds a live handle from a raw storage id.
func (w *World) entityFor(id int) (Entity, bool) {
	return w.entities.handleFor(id)
}
