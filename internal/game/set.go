// internal/game/set.go
//
// Small index set used for the flipped and matched tiles.
package game

import "sort"

// Set is a set of tile indices. The zero value is an empty set.
type Set struct {
	m map[int]struct{}
}

// NewSet returns a set holding idx.
func NewSet(idx ...int) Set {
	s := Set{m: make(map[int]struct{}, len(idx))}
	for _, i := range idx {
		s.m[i] = struct{}{}
	}
	return s
}

// Has reports whether i is in the set.
func (s Set) Has(i int) bool {
	_, ok := s.m[i]
	return ok
}

// Len returns the number of indices in the set.
func (s Set) Len() int { return len(s.m) }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s.m))
	for i := range s.m {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (s *Set) add(i ...int) {
	if s.m == nil {
		s.m = make(map[int]struct{})
	}
	for _, x := range i {
		s.m[x] = struct{}{}
	}
}

func (s *Set) clear() { s.m = nil }
