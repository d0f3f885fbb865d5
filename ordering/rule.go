package ordering

import (
	"cmp"
	"strings"
	"sync"

	"facette.io/natsort"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Rule orders values of type T. Compare returns a negative number when a
// sorts before b, zero when they are equivalent and a positive number when a
// sorts after b. Equivalent values are treated as the same element by sorted
// containers.
type Rule[T any] interface {
	Compare(a, b T) int
}

// Comparable is a generic interface for types that can compare themselves for equality.
type Comparable[T any] interface {
	Equals(other T) bool
}

// Sortable is implemented by types that carry their own natural order.
type Sortable[T any] interface {
	Comparable[T]

	LessThan(other T) bool
}

// Func adapts an ordinary comparison function to a Rule.
// Func rules have no serializable state.
type Func[T any] func(a, b T) int

// Compare calls f(a, b).
func (f Func[T]) Compare(a, b T) int {
	return f(a, b)
}

// Natural orders values with cmp.Compare.
type Natural[T cmp.Ordered] struct{}

// Compare implements Rule.
func (Natural[T]) Compare(a, b T) int {
	return cmp.Compare(a, b)
}

// Reverse orders values with cmp.Compare, largest first.
type Reverse[T cmp.Ordered] struct{}

// Compare implements Rule.
func (Reverse[T]) Compare(a, b T) int {
	return cmp.Compare(b, a)
}

// OfSortable orders values using their own LessThan and Equals methods.
type OfSortable[T Sortable[T]] struct{}

// Compare implements Rule.
func (OfSortable[T]) Compare(a, b T) int {
	switch {
	case a.Equals(b):
		return 0
	case a.LessThan(b):
		return -1
	default:
		return 1
	}
}

// NaturalString orders strings the way humans expect numbered names to sort:
// "file2" comes before "file10".
type NaturalString struct{}

// Compare implements Rule. natsort reports some distinct strings (such as
// "a01" and "a1") as less than each other in both directions; those fall
// back to byte order so the rule stays antisymmetric.
func (NaturalString) Compare(a, b string) int {
	if a == b {
		return 0
	}

	lt := natsort.Compare(a, b)
	gt := natsort.Compare(b, a)

	switch {
	case lt == gt:
		return strings.Compare(a, b)
	case lt:
		return -1
	default:
		return 1
	}
}

// CaseInsensitive orders strings by their Unicode case folding, falling back
// to byte order between strings that fold to the same value.
type CaseInsensitive struct{}

// Compare implements Rule.
func (CaseInsensitive) Compare(a, b string) int {
	// Casers are stateful, so each comparison gets its own.
	fold := cases.Fold()

	if c := strings.Compare(fold.String(a), fold.String(b)); c != 0 {
		return c
	}

	return strings.Compare(a, b)
}

// Collation orders strings using the collation rules of a locale, for
// example Locale "sv" sorts "ä" after "z". The zero value collates using the
// root locale.
type Collation struct {
	Locale     string
	IgnoreCase bool

	mu       sync.Mutex
	collator *collate.Collator
}

// Compare implements Rule. A collator is not safe for concurrent use, so
// comparisons are serialized.
func (c *Collation) Compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collator == nil {
		var opts []collate.Option
		if c.IgnoreCase {
			opts = append(opts, collate.IgnoreCase)
		}

		tag, err := language.Parse(c.Locale)
		if err != nil {
			tag = language.Und
		}

		c.collator = collate.New(tag, opts...)
	}

	return c.collator.CompareString(a, b)
}

// Less turns a rule into a less-than predicate.
func Less[T any](rule Rule[T]) func(a, b T) bool {
	return func(a, b T) bool {
		return rule.Compare(a, b) < 0
	}
}

// Equivalent reports whether rule considers a and b the same element.
func Equivalent[T any](rule Rule[T], a, b T) bool {
	return rule.Compare(a, b) == 0
}
