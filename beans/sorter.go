package beans

import (
	"slices"

	"github.com/amp-labs/amp-marshal/ordering"
)

// Sorter orders the eligible properties of one type, in place.
type Sorter func(props []*Descriptor)

// DeclarationOrder keeps the introspector's order.
func DeclarationOrder() Sorter {
	return func([]*Descriptor) {}
}

// NameOrder sorts properties by name with the given rule. Names are unique
// per type, so the result does not depend on the input order.
func NameOrder(rule ordering.Rule[string]) Sorter {
	return func(props []*Descriptor) {
		slices.SortStableFunc(props, func(a, b *Descriptor) int {
			return rule.Compare(a.Name, b.Name)
		})
	}
}

// NameOrderLexical sorts properties by byte-wise name comparison.
func NameOrderLexical() Sorter {
	return NameOrder(ordering.Natural[string]{})
}

// NameOrderNatural sorts properties so that embedded numbers compare
// numerically ("field2" before "field10").
func NameOrderNatural() Sorter {
	return NameOrder(ordering.NaturalString{})
}
