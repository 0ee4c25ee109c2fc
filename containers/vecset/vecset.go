// Package vecset is a sequential sorted-slice ordered set, kept as a
// simpler (O(n) insert/remove, O(log n) lookup) alternative to the red-black
// tree in containers/intset for wrapping in the CX construct. Good cache
// locality makes it competitive at small-to-medium set sizes despite the
// linear shifting cost.
package vecset

import "cmp"

// Set is an ordered set of keys of any ordered type T.
type Set[T cmp.Ordered] struct {
	items []T
}

// New returns an empty set.
func New[T cmp.Ordered]() Set[T] {
	return Set[T]{}
}

// Len reports the number of keys in the set.
func (s *Set[T]) Len() int { return len(s.items) }

// lookup returns the index of key if present, or the index at which it
// would need to be inserted to keep items sorted.
func (s *Set[T]) lookup(key T) int {
	lo, hi := 0, len(s.items)
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch {
		case s.items[mid] < key:
			lo = mid + 1
		case s.items[mid] > key:
			hi = mid
		default:
			return mid
		}
	}
	return lo
}

// Contains reports whether key is present.
func (s *Set[T]) Contains(key T) bool {
	i := s.lookup(key)
	return i < len(s.items) && s.items[i] == key
}

// Add inserts key, returning true if it was not already present.
func (s *Set[T]) Add(key T) bool {
	i := s.lookup(key)
	if i < len(s.items) && s.items[i] == key {
		return false
	}
	s.items = append(s.items, key)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = key
	return true
}

// Remove deletes key, returning true if it was present.
func (s *Set[T]) Remove(key T) bool {
	i := s.lookup(key)
	if i >= len(s.items) || s.items[i] != key {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Min returns the smallest key and true, or the zero value and false if the
// set is empty.
func (s *Set[T]) Min() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[0], true
}

// Max returns the largest key and true, or the zero value and false if the
// set is empty.
func (s *Set[T]) Max() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Ascend calls fn for every key in ascending order, stopping early if fn
// returns false.
func (s *Set[T]) Ascend(fn func(T) bool) {
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}

// Clone returns an independent copy of s, the copy constructor the CX
// construct relies on to apply mutations to a spare replica.
func (s Set[T]) Clone() Set[T] {
	items := make([]T, len(s.items))
	copy(items, s.items)
	return Set[T]{items: items}
}
