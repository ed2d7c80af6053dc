package ecs

// store is the type-erased view the world needs to clean up after a
// destroyed entity.
type store interface {
	remove(e Entity) bool
	len() int
}

// sparseStore keeps components densely packed and indexed by entity id.
type sparseStore[T any] struct {
	dense  []Entity
	values []*T
	sparse []int
}

func newSparseStore[T any]() *sparseStore[T] {
	return &sparseStore[T]{}
}

func (s *sparseStore[T]) index(e Entity) (int, bool) {
	id := int(e.id())
	if id == 0 || id > len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id-1]
	if idx < 0 || idx >= len(s.dense) || s.dense[idx] != e {
		return 0, false
	}
	return idx, true
}

func (s *sparseStore[T]) set(e Entity, v *T) {
	if idx, ok := s.index(e); ok {
		s.values[idx] = v
		return
	}
	id := int(e.id())
	for len(s.sparse) < id {
		s.sparse = append(s.sparse, -1)
	}
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
	s.sparse[id-1] = len(s.dense) - 1
}

func (s *sparseStore[T]) get(e Entity) (*T, bool) {
	idx, ok := s.index(e)
	if !ok {
		return nil, false
	}
	return s.values[idx], true
}

func (s *sparseStore[T]) remove(e Entity) bool {
	idx, ok := s.index(e)
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[int(moved.id())-1] = idx

	s.dense = s.dense[:last]
	s.values[last] = nil
	s.values = s.values[:last]
	s.sparse[int(e.id())-1] = -1
	return true
}

func (s *sparseStore[T]) len() int {
	return len(s.dense)
}

// snapshot copies the dense entity list so callers may add or remove
// components while iterating.
func (s *sparseStore[T]) snapshot() []Entity {
	out := make([]Entity, len(s.dense))
	copy(out, s.dense)
	return out
}
