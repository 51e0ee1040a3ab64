package ecs

import "github.com/milk9111/brawler/ecs/component"

// Add attaches a component value to e. The value is stored by copy; read it
// back with Get or mutate in place through ForEach.
func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value T) error {
	return w.AddComponent(e, handle.Kind(), value)
}

// Remove detaches the handle's component from e.
func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.Kind())
}

// Has reports whether e carries the handle's component.
func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.Kind())
}

// Get returns a copy of e's component. Write changes back with Add.
func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (T, bool) {
	var zero T
	value, ok := w.GetComponent(e, handle.Kind())
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}

// ForEach visits every live entity with a component of kind. The visitor
// gets a scratch pointer; mutations are written back after it returns,
// unless the visitor removed the component or destroyed the entity.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	store := w.storeFor(kind.ID())
	if store == nil || fn == nil {
		return
	}
	// Snapshot ids so the visitor can add or destroy freely.
	ids := append([]int(nil), store.EntityIDs()...)
	for _, id := range ids {
		e, ok := w.entityFor(id)
		if !ok {
			continue
		}
		raw := store.Get(id)
		if raw == nil {
			continue
		}
		v, ok := raw.(T)
		if !ok {
			continue
		}
		fn(e, &v)
		if w.IsAlive(e) && store.Has(id) {
			store.Set(id, v)
		}
	}
}

// ForEach2 visits entities carrying both kinds.
func ForEach2[A, B any](
	w *World,
	ka component.ComponentKind[A],
	kb component.ComponentKind[B],
	fn func(Entity, *A, *B),
) {
	sa := w.storeFor(ka.ID())
	sb := w.storeFor(kb.ID())
	if sa == nil || sb == nil || fn == nil {
		return
	}
	ids := append([]int(nil), sa.EntityIDs()...)
	for _, id := range ids {
		e, ok := w.entityFor(id)
		if !ok {
			continue
		}
		rawA := sa.Get(id)
		rawB := sb.Get(id)
		if rawA == nil || rawB == nil {
			continue
		}
		a, okA := rawA.(A)
		b, okB := rawB.(B)
		if !okA || !okB {
			continue
		}
		fn(e, &a, &b)
		if !w.IsAlive(e) {
			continue
		}
		if sa.Has(id) {
			sa.Set(id, a)
		}
		if sb.Has(id) {
			sb.Set(id, b)
		}
	}
}

// ForEach3 visits entities carrying all three kinds.
func ForEach3[A, B, C any](
	w *World,
	ka component.ComponentKind[A],
	kb component.ComponentKind[B],
	kc component.ComponentKind[C],
	fn func(Entity, *A, *B, *C),
) {
	sa := w.storeFor(ka.ID())
	sb := w.storeFor(kb.ID())
	sc := w.storeFor(kc.ID())
	if sa == nil || sb == nil || sc == nil || fn == nil {
		return
	}
	ids := append([]int(nil), sa.EntityIDs()...)
	for _, id := range ids {
		e, ok := w.entityFor(id)
		if !ok {
			continue
		}
		rawA := sa.Get(id)
		rawB := sb.Get(id)
		rawC := sc.Get(id)
		if rawA == nil || rawB == nil || rawC == nil {
			continue
		}
		a, okA := rawA.(A)
		b, okB := rawB.(B)
		c, okC := rawC.(C)
		if !okA || !okB || !okC {
			continue
		}
		fn(e, &a, &b, &c)
		if !w.IsAlive(e) {
			continue
		}
		if sa.Has(id) {
			sa.Set(id, a)
		}
		if sb.Has(id) {
			sb.Set(id, b)
		}
		if sc.Has(id) {
			sc.Set(id, c)
		}
	}
}
