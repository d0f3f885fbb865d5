package sortedconv

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/marshal"
	"github.com/amp-labs/amp-marshal/ordering"
	"github.com/amp-labs/amp-marshal/sorted"
	"github.com/amp-labs/amp-marshal/stream"
)

// SetFactory builds an empty set. A nil rule means natural order.
type SetFactory[T any] func(rule ordering.Rule[T]) sorted.Set[T]

// SetConverter converts sorted sets of T.
type SetConverter[T any] struct {
	settings

	natural ordering.Rule[T]
	factory SetFactory[T]
	types   []reflect.Type
	codec   RuleCodec[T]
}

var _ marshal.Converter = (*SetConverter[string])(nil)

// NewSetConverter returns a converter for *sorted.TreeSet[T] and
// sorted.Set[T]. Sets read without a rule are ordered by natural, which
// must not be nil.
func NewSetConverter[T any](natural ordering.Rule[T], opts ...Option) *SetConverter[T] {
	if natural == nil {
		panic("sortedconv: nil natural ordering rule")
	}

	c := &SetConverter[T]{
		settings: newSettings(opts),
		natural:  natural,
		types: []reflect.Type{
			reflect.TypeFor[*sorted.TreeSet[T]](),
			reflect.TypeFor[sorted.Set[T]](),
		},
	}

	c.factory = c.treeSet

	return c
}

// NewOrderedSetConverter is NewSetConverter using T's natural order.
func NewOrderedSetConverter[T cmp.Ordered](opts ...Option) *SetConverter[T] {
	return NewSetConverter[T](ordering.Natural[T]{}, opts...)
}

// WithFactory replaces the container factory. The converter then also
// handles the given types, which the factory's sets must be assignable to.
func (c *SetConverter[T]) WithFactory(factory SetFactory[T], types ...reflect.Type) *SetConverter[T] {
	c.factory = factory
	c.types = append(c.types, types...)

	return c
}

func (c *SetConverter[T]) treeSet(rule ordering.Rule[T]) sorted.Set[T] { //nolint:ireturn
	if rule == nil {
		return sorted.NewTreeSetWithNaturalRule(c.natural)
	}

	return sorted.NewTreeSetWithRule(rule)
}

func (c *SetConverter[T]) CanConvert(t reflect.Type) bool {
	return slices.Contains(c.types, t)
}

// Marshal writes the format tag, the rule and then every element in
// iteration order.
func (c *SetConverter[T]) Marshal(value reflect.Value, w stream.Writer, mc marshal.MarshalContext) (err error) {
	_, span := c.startSpan(mc.Context(), "marshal", "set")
	defer func() { endSpan(span, err) }()

	set, ok := value.Interface().(sorted.Set[T])
	if !ok {
		return errors.NewConversionError("not a sorted set", ErrUnsupportedContainer).
			Add("type", value.Type().String())
	}

	if err := w.AddAttribute(FormatAttribute, FormatVersion); err != nil {
		return err
	}

	if err := c.codec.Marshal(set.Rule(), w, mc); err != nil {
		return err
	}

	for element := range set.Seq() {
		if err := mc.MarshalValue(w, element); err != nil {
			return err
		}
	}

	return nil
}

// Unmarshal rebuilds a set from the node the reader is on.
func (c *SetConverter[T]) Unmarshal(r stream.Reader, t reflect.Type, uc marshal.UnmarshalContext) (_ reflect.Value, err error) {
	ctx, span := c.startSpan(uc.Context(), "unmarshal", "set")
	defer func() { endSpan(span, err) }()

	m := &machine{state: AwaitingRuleNode, hooks: c.hooks, span: span}

	tagged, err := checkFormat(r)
	if err != nil {
		return reflect.Value{}, failed(ctx, "set", m.state, err)
	}

	decoded, err := c.codec.Unmarshal(r, uc, tagged)
	if err != nil {
		return reflect.Value{}, failed(ctx, "set", m.state, err)
	}

	if decoded.InFirstElement() {
		m.to(InFirstElement)
	} else {
		m.to(RuleKnown)
	}

	set := c.factory(decoded.Rule)

	out := reflect.ValueOf(set)
	if !out.IsValid() || !out.Type().AssignableTo(t) {
		return reflect.Value{}, errors.NewConversionError("factory built the wrong container", ErrUnsupportedContainer).
			Add("required-type", t.String())
	}

	backed, canAppend := set.(sorted.Backed[T])
	loader, canLoad := set.(sorted.Loader[T])

	path := choosePath(c.caps, canAppend, canLoad)
	m.to(path.state())

	var (
		add    func(T)
		finish = func() {}
	)

	switch path {
	case PathFast:
		backing := backed.Backing()
		add = func(e T) { backing.AppendSorted(e, struct{}{}) }
	case PathBuffered:
		buffer := sorted.NewPresorted[T](0)
		add = buffer.Append
		finish = func() { loader.LoadSorted(buffer.Drain()) }
	default:
		add = func(e T) { set.Add(e) }
	}

	elemType := reflect.TypeFor[T]()
	count := 0

	err = forEachElement(r, decoded.InFirstElement(), func() error {
		if err := rejectNull[T](r, "element"); err != nil {
			return err
		}

		v, err := uc.UnmarshalValue(r, elemType)
		if err != nil {
			return err
		}

		element, err := convertTo[T](v)
		if err != nil {
			return marshal.WithPath(err, r)
		}

		add(element)
		count++

		return nil
	})
	if err != nil {
		return reflect.Value{}, failed(ctx, "set", m.state, err)
	}

	finish()
	m.to(Done)

	spanPopulation(span, decoded.Outcome, path, count)
	observe("set", path, count)
	debugLog(ctx, "set", decoded.Outcome, path, count)

	return out, nil
}
