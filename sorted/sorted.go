// Package sorted provides comparator-driven sorted sets and maps.
//
// Containers are ordered by an [ordering.Rule]. A container created without
// an explicit rule uses the natural order of its key type and reports a nil
// Rule, which is how converters tell "no rule" apart from "some rule".
//
// Besides ordinary insertion, the containers offer two entry points for
// reconstructing a container from input that is already in rule order, both
// of which skip rule evaluation entirely:
//
//   - [Loader]: bulk-load a complete presorted slice in linear time.
//   - [Appender] (reached through [Backed] for sets): append one entry at a
//     time past the current maximum.
//
// Callers of those entry points are responsible for the input order. Feeding
// them unsorted or duplicate input produces a container whose iteration
// order is the input order but whose lookups are unreliable.
package sorted

import (
	"iter"

	"github.com/amp-labs/amp-marshal/ordering"
)

// Entry is a key-value pair of a sorted map.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// Map is a map whose iteration order is determined by an ordering rule on its keys.
//
// Thread-safety: Implementations are not guaranteed to be thread-safe unless
// explicitly documented. Concurrent access must be synchronized by the caller.
//
//nolint:interfacebloat
type Map[K any, V any] interface {
	// Rule returns the explicit ordering rule, or nil for natural order.
	Rule() ordering.Rule[K]

	// Put inserts or replaces the value for key, returning the previous value.
	Put(key K, value V) (previous V, replaced bool)

	// Get returns the value for key.
	Get(key K) (value V, found bool)

	// Contains reports whether key is present.
	Contains(key K) bool

	// Remove deletes key, reporting whether it was present.
	Remove(key K) bool

	// Size returns the number of entries.
	Size() int

	// Clear removes all entries.
	Clear()

	// Seq iterates entries in rule order.
	Seq() iter.Seq2[K, V]

	// Keys iterates keys in rule order.
	Keys() iter.Seq[K]
}

// Set is a set whose iteration order is determined by an ordering rule.
//
//nolint:interfacebloat
type Set[T any] interface {
	// Rule returns the explicit ordering rule, or nil for natural order.
	Rule() ordering.Rule[T]

	// Add inserts element, reporting whether it was not already present.
	Add(element T) bool

	// Contains reports whether element is present.
	Contains(element T) bool

	// Remove deletes element, reporting whether it was present.
	Remove(element T) bool

	// Size returns the number of elements.
	Size() int

	// Clear removes all elements.
	Clear()

	// Seq iterates elements in rule order.
	Seq() iter.Seq[T]

	// Entries returns the elements in rule order.
	Entries() []T
}

// Loader is implemented by containers that can adopt a complete sequence of
// items that is already in rule order without comparing them.
type Loader[E any] interface {
	LoadSorted(items []E)
}

// Appender is implemented by containers that accept entries one at a time,
// each strictly after every entry already present, without comparing them.
type Appender[K any, V any] interface {
	AppendSorted(key K, value V)
}

// Backed is implemented by sets that delegate storage to an ordered map
// surrogate and expose it for direct population.
type Backed[T any] interface {
	Backing() Appender[T, struct{}]
}
