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

// EntryNode wraps one key-value pair of a sorted map.
const EntryNode = "entry"

// MapFactory builds an empty map. A nil rule means natural order.
type MapFactory[K any, V any] func(rule ordering.Rule[K]) sorted.Map[K, V]

// MapConverter converts sorted maps from K to V.
type MapConverter[K any, V any] struct {
	settings

	natural ordering.Rule[K]
	factory MapFactory[K, V]
	types   []reflect.Type
	codec   RuleCodec[K]
}

var _ marshal.Converter = (*MapConverter[string, int])(nil)

// NewMapConverter returns a converter for *sorted.TreeMap[K, V] and
// sorted.Map[K, V]. Maps read without a rule are ordered by natural, which
// must not be nil.
func NewMapConverter[K any, V any](natural ordering.Rule[K], opts ...Option) *MapConverter[K, V] {
	if natural == nil {
		panic("sortedconv: nil natural ordering rule")
	}

	c := &MapConverter[K, V]{
		settings: newSettings(opts),
		natural:  natural,
		types: []reflect.Type{
			reflect.TypeFor[*sorted.TreeMap[K, V]](),
			reflect.TypeFor[sorted.Map[K, V]](),
		},
	}

	c.factory = c.treeMap

	return c
}

// NewOrderedMapConverter is NewMapConverter using K's natural order.
func NewOrderedMapConverter[K cmp.Ordered, V any](opts ...Option) *MapConverter[K, V] {
	return NewMapConverter[K, V](ordering.Natural[K]{}, opts...)
}

// WithFactory replaces the container factory. The converter then also
// handles the given types, which the factory's maps must be assignable to.
func (c *MapConverter[K, V]) WithFactory(factory MapFactory[K, V], types ...reflect.Type) *MapConverter[K, V] {
	c.factory = factory
	c.types = append(c.types, types...)

	return c
}

func (c *MapConverter[K, V]) treeMap(rule ordering.Rule[K]) sorted.Map[K, V] { //nolint:ireturn
	if rule == nil {
		return sorted.NewTreeMapWithNaturalRule[K, V](c.natural)
	}

	return sorted.NewTreeMapWithRule[K, V](rule)
}

func (c *MapConverter[K, V]) CanConvert(t reflect.Type) bool {
	return slices.Contains(c.types, t)
}

// Marshal writes the format tag, the rule and then one entry node per
// key-value pair in iteration order.
func (c *MapConverter[K, V]) Marshal(value reflect.Value, w stream.Writer, mc marshal.MarshalContext) (err error) {
	_, span := c.startSpan(mc.Context(), "marshal", "map")
	defer func() { endSpan(span, err) }()

	m, ok := value.Interface().(sorted.Map[K, V])
	if !ok {
		return errors.NewConversionError("not a sorted map", ErrUnsupportedContainer).
			Add("type", value.Type().String())
	}

	if err := w.AddAttribute(FormatAttribute, FormatVersion); err != nil {
		return err
	}

	if err := c.codec.Marshal(m.Rule(), w, mc); err != nil {
		return err
	}

	for key, val := range m.Seq() {
		if err := w.StartNode(EntryNode); err != nil {
			return err
		}

		if err := mc.MarshalValue(w, key); err != nil {
			return err
		}

		if err := mc.MarshalValue(w, val); err != nil {
			return err
		}

		if err := w.EndNode(); err != nil {
			return err
		}
	}

	return nil
}

// Unmarshal rebuilds a map from the node the reader is on.
func (c *MapConverter[K, V]) Unmarshal(r stream.Reader, t reflect.Type, uc marshal.UnmarshalContext) (_ reflect.Value, err error) {
	ctx, span := c.startSpan(uc.Context(), "unmarshal", "map")
	defer func() { endSpan(span, err) }()

	m := &machine{state: AwaitingRuleNode, hooks: c.hooks, span: span}

	tagged, err := checkFormat(r)
	if err != nil {
		return reflect.Value{}, failed(ctx, "map", m.state, err)
	}

	decoded, err := c.codec.Unmarshal(r, uc, tagged)
	if err != nil {
		return reflect.Value{}, failed(ctx, "map", m.state, err)
	}

	if decoded.InFirstElement() {
		m.to(InFirstElement)
	} else {
		m.to(RuleKnown)
	}

	target := c.factory(decoded.Rule)

	out := reflect.ValueOf(target)
	if !out.IsValid() || !out.Type().AssignableTo(t) {
		return reflect.Value{}, errors.NewConversionError("factory built the wrong container", ErrUnsupportedContainer).
			Add("required-type", t.String())
	}

	appender, canAppend := target.(sorted.Appender[K, V])
	loader, canLoad := target.(sorted.Loader[sorted.Entry[K, V]])

	path := choosePath(c.caps, canAppend, canLoad)
	m.to(path.state())

	var (
		add    func(K, V)
		finish = func() {}
	)

	switch path {
	case PathFast:
		add = appender.AppendSorted
	case PathBuffered:
		buffer := sorted.NewPresorted[sorted.Entry[K, V]](0)
		add = func(k K, v V) { buffer.Append(sorted.Entry[K, V]{Key: k, Value: v}) }
		finish = func() { loader.LoadSorted(buffer.Drain()) }
	default:
		add = func(k K, v V) { target.Put(k, v) }
	}

	count := 0

	err = forEachElement(r, decoded.InFirstElement(), func() error {
		key, val, err := c.readEntry(r, uc)
		if err != nil {
			return err
		}

		add(key, val)
		count++

		return nil
	})
	if err != nil {
		return reflect.Value{}, failed(ctx, "map", m.state, err)
	}

	finish()
	m.to(Done)

	spanPopulation(span, decoded.Outcome, path, count)
	observe("map", path, count)
	debugLog(ctx, "map", decoded.Outcome, path, count)

	return out, nil
}

// readEntry reads the entry node the reader is on and leaves it there.
func (c *MapConverter[K, V]) readEntry(r stream.Reader, uc marshal.UnmarshalContext) (K, V, error) {
	var (
		key K
		val V
	)

	if r.NodeName() != EntryNode {
		return key, val, errors.NewConversionError("expected map entry", ErrMalformedStream).
			Add("found", r.NodeName()).
			Add("path", r.Path())
	}

	var err error

	if key, err = readChild[K](r, uc, "key"); err != nil {
		return key, val, err
	}

	if val, err = readChild[V](r, uc, "value"); err != nil {
		return key, val, err
	}

	if r.HasMoreChildren() {
		return key, val, errors.NewConversionError("map entry has extra children", ErrMalformedStream).
			Add("path", r.Path())
	}

	return key, val, nil
}

func readChild[E any](r stream.Reader, uc marshal.UnmarshalContext, role string) (E, error) {
	var zero E

	if !r.HasMoreChildren() {
		return zero, errors.NewConversionError("map entry is missing its "+role, ErrMalformedStream).
			Add("path", r.Path())
	}

	if err := r.MoveDown(); err != nil {
		return zero, malformed(err, r)
	}

	if err := rejectNull[E](r, role); err != nil {
		return zero, err
	}

	v, err := uc.UnmarshalValue(r, reflect.TypeFor[E]())
	if err != nil {
		return zero, err
	}

	out, err := convertTo[E](v)
	if err != nil {
		return zero, marshal.WithPath(err, r)
	}

	if err := r.MoveUp(); err != nil {
		return zero, malformed(err, r)
	}

	return out, nil
}
