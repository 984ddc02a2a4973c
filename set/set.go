// Package set provides a minimal generic set, used during saga
// construction to enforce step-name uniqueness.
package set

type Set[T comparable] struct {
	members map[T]struct{}
}

// New returns an empty set.
func New[T comparable]() *Set[T] {
	return &Set[T]{members: make(map[T]struct{})}
}

func (s *Set[T]) Insert(v T) {
	if s.members == nil {
		s.members = make(map[T]struct{})
	}
	s.members[v] = struct{}{}
}

func (s *Set[T]) Contains(v T) bool {
	_, ok := s.members[v]
	return ok
}

func (s *Set[T]) Len() int {
	return len(s.members)
}
