// Package ordering provides the ordering rules that drive sorted containers.
//
// # Overview
//
// A [Rule] is external comparison logic: it decides the iteration order of a
// sorted set (by element) or a sorted map (by key). Sorted containers keep a
// reference to the rule they were created with, and the sorted container
// converters serialize that rule alongside the container's contents so the
// same order can be restored on the way back in.
//
// Because rules travel through the marshaller, the built-in rules are plain
// structs whose exported fields are their entire state:
//
//	ordering.Natural[int]{}            // cmp.Compare
//	ordering.Reverse[string]{}         // cmp.Compare, flipped
//	ordering.NaturalString{}           // "file2" before "file10"
//	ordering.CaseInsensitive{}         // Unicode case folding
//	&ordering.Collation{Locale: "sv"}  // locale-aware collation
//
// Stateless comparison functions can be adapted with [Func], but such rules
// cannot be serialized.
//
// # Sortable Types
//
// Types that know how to order themselves implement [Sortable] (LessThan and
// Equals). [OfSortable] turns any such type into a Rule, so existing sortable
// key types work with comparator-driven containers without a wrapper:
//
//	type Version struct{ Major, Minor int }
//
//	func (v Version) Equals(o Version) bool   { return v == o }
//	func (v Version) LessThan(o Version) bool { ... }
//
//	set := sorted.NewTreeSetWithRule[Version](ordering.OfSortable[Version]{})
//
// # Thread Safety
//
// All rules in this package are safe for concurrent use.
package ordering
