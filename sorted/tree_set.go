package sorted

import (
	"cmp"
	"iter"

	"github.com/amp-labs/amp-marshal/ordering"
)

// TreeSet is a Set backed by a TreeMap whose values are unused.
type TreeSet[T any] struct {
	m *TreeMap[T, struct{}]
}

// Compile-time checks that TreeSet implements the population capabilities.
var (
	_ Set[string]    = (*TreeSet[string])(nil)
	_ Loader[string] = (*TreeSet[string])(nil)
	_ Backed[string] = (*TreeSet[string])(nil)
)

// NewTreeSet creates an empty set in the natural order of T. Its Rule is nil.
func NewTreeSet[T cmp.Ordered]() *TreeSet[T] {
	return &TreeSet[T]{m: NewTreeMap[T, struct{}]()}
}

// NewTreeSetWithRule creates an empty set ordered by rule. A nil rule panics.
func NewTreeSetWithRule[T any](rule ordering.Rule[T]) *TreeSet[T] {
	return &TreeSet[T]{m: NewTreeMapWithRule[T, struct{}](rule)}
}

// NewTreeSetWithNaturalRule creates an empty set for an element type that is
// not cmp.Ordered. The set reports a nil Rule.
func NewTreeSetWithNaturalRule[T any](natural ordering.Rule[T]) *TreeSet[T] {
	return &TreeSet[T]{m: NewTreeMapWithNaturalRule[T, struct{}](natural)}
}

// Rule returns the explicit ordering rule, or nil for natural order.
func (s *TreeSet[T]) Rule() ordering.Rule[T] { //nolint:ireturn
	return s.m.Rule()
}

// Add inserts element, reporting whether it was not already present.
func (s *TreeSet[T]) Add(element T) bool {
	_, replaced := s.m.Put(element, struct{}{})

	return !replaced
}

// AddAll adds multiple elements to the set.
func (s *TreeSet[T]) AddAll(elements ...T) {
	for _, element := range elements {
		s.Add(element)
	}
}

// Contains reports whether element is present.
func (s *TreeSet[T]) Contains(element T) bool {
	return s.m.Contains(element)
}

// Remove deletes element, reporting whether it was present.
func (s *TreeSet[T]) Remove(element T) bool {
	return s.m.Remove(element)
}

// Size returns the number of elements.
func (s *TreeSet[T]) Size() int {
	return s.m.Size()
}

// Clear removes all elements.
func (s *TreeSet[T]) Clear() {
	s.m.Clear()
}

// Seq iterates elements in rule order.
func (s *TreeSet[T]) Seq() iter.Seq[T] {
	return s.m.Keys()
}

// Entries returns the elements in rule order.
func (s *TreeSet[T]) Entries() []T {
	out := make([]T, 0, s.m.Size())

	for element := range s.m.Keys() {
		out = append(out, element)
	}

	return out
}

// First returns the smallest element.
func (s *TreeSet[T]) First() (T, bool) {
	entry, ok := s.m.First()

	return entry.Key, ok
}

// Last returns the largest element.
func (s *TreeSet[T]) Last() (T, bool) {
	entry, ok := s.m.Last()

	return entry.Key, ok
}

// LoadSorted adopts elements that are already in rule order.
func (s *TreeSet[T]) LoadSorted(elements []T) {
	entries := make([]Entry[T, struct{}], len(elements))
	for i, element := range elements {
		entries[i].Key = element
	}

	s.m.LoadSorted(entries)
}

// Backing exposes the ordered map the set stores its elements in.
func (s *TreeSet[T]) Backing() Appender[T, struct{}] { //nolint:ireturn
	return s.m
}
