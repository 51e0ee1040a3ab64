package ecs

// SparseSet stores one component value per entity id with dense iteration.
// Values are type-erased; the generic helpers in generics.go put the types
// back on.
type SparseSet struct {
	ids    []int
	values []any
	sparse []int
}

// Len returns the number of stored components.
func (s *SparseSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Has reports whether id has a component in this set.
func (s *SparseSet) Has(id int) bool {
	if s == nil || id <= 0 || id-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.ids) && s.ids[idx] == id
}

// Get returns the component for id, or nil.
func (s *SparseSet) Get(id int) any {
	if !s.Has(id) {
		return nil
	}
	return s.values[s.sparse[id-1]]
}

// Set inserts or replaces the component for id.
func (s *SparseSet) Set(id int, v any) {
	if s == nil || id <= 0 {
		return
	}
	for id-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(id) {
		s.values[s.sparse[id-1]] = v
		return
	}
	s.ids = append(s.ids, id)
	s.values = append(s.values, v)
	s.sparse[id-1] = len(s.ids) - 1
}

// Remove deletes the component for id if present, swapping the last dense
// slot into the hole.
func (s *SparseSet) Remove(id int) {
	if s == nil || !s.Has(id) {
		return
	}
	idx := s.sparse[id-1]
	last := len(s.ids) - 1
	lastID := s.ids[last]

	s.ids[idx] = s.ids[last]
	s.values[idx] = s.values[last]
	s.sparse[lastID-1] = idx

	s.ids = s.ids[:last]
	s.values[last] = nil
	s.values = s.values[:last]
	s.sparse[id-1] = -1
}

// EntityIDs returns the dense id list. Callers must not mutate it.
func (s *SparseSet) EntityIDs() []int {
	if s == nil {
		return nil
	}
	return s.ids
}
