package ordering

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

type version struct {
	major int
	minor int
}

func (v version) Equals(other version) bool {
	return v == other
}

func (v version) LessThan(other version) bool {
	if v.major != other.major {
		return v.major < other.major
	}

	return v.minor < other.minor
}

func sortWith[T any](rule Rule[T], items ...T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, rule.Compare)

	return out
}

func TestNaturalAndReverse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c"}, sortWith[string](Natural[string]{}, "b", "a", "c"))
	assert.Equal(t, []string{"c", "b", "a"}, sortWith[string](Reverse[string]{}, "b", "a", "c"))
	assert.Equal(t, []int{3, 2, 1}, sortWith[int](Reverse[int]{}, 1, 3, 2))
	assert.Zero(t, Natural[int]{}.Compare(4, 4))
}

func TestOfSortable(t *testing.T) {
	t.Parallel()

	rule := OfSortable[version]{}

	got := sortWith[version](rule, version{2, 0}, version{1, 5}, version{1, 2})
	assert.Equal(t, []version{{1, 2}, {1, 5}, {2, 0}}, got)
	assert.True(t, Equivalent[version](rule, version{1, 1}, version{1, 1}))
}

func TestNaturalString(t *testing.T) {
	t.Parallel()

	got := sortWith[string](NaturalString{}, "file10", "file2", "file1")
	assert.Equal(t, []string{"file1", "file2", "file10"}, got)

	assert.Zero(t, NaturalString{}.Compare("x", "x"))
	assert.Equal(t, -NaturalString{}.Compare("a01", "a1"), NaturalString{}.Compare("a1", "a01"))

	words := []string{"a1", "a01", "a001", "a10", "b", "B", "file2", "file02", ""}
	for _, a := range words {
		for _, b := range words {
			ab, ba := NaturalString{}.Compare(a, b), NaturalString{}.Compare(b, a)
			assert.Equal(t, sign(ab), -sign(ba), "%q vs %q", a, b)
			assert.Equal(t, a == b, ab == 0, "%q vs %q", a, b)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestCaseInsensitive(t *testing.T) {
	t.Parallel()

	got := sortWith[string](CaseInsensitive{}, "banana", "Apple", "cherry")
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, got)

	assert.NotZero(t, CaseInsensitive{}.Compare("A", "a"))
}

func TestCollation(t *testing.T) {
	t.Parallel()

	swedish := &Collation{Locale: "sv"}
	assert.Positive(t, swedish.Compare("ä", "z"))

	german := &Collation{Locale: "de"}
	assert.Negative(t, german.Compare("ä", "z"))

	fallback := &Collation{Locale: "not a locale!"}
	assert.Negative(t, fallback.Compare("a", "b"))
}

func TestFuncAndLess(t *testing.T) {
	t.Parallel()

	byLen := Func[string](func(a, b string) int { return len(a) - len(b) })
	less := Less[string](byLen)

	assert.True(t, less("a", "bb"))
	assert.False(t, less("bb", "a"))
}
