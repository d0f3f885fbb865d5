package marshal

import (
	"reflect"
	"testing"
	"time"

	"github.com/amp-labs/amp-marshal/beans"
	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	Street string
	Number int
}

type person struct {
	Name     string
	Age      uint8
	Score    float64
	Active   bool
	Tags     []string
	Home     *address
	Work     address
	Born     time.Time
	Nickname *string
	Extra    any
}

type badge struct {
	Level int
}

func newMarshaller(t *testing.T) *Marshaller {
	t.Helper()

	m := New()
	require.NoError(t, RegisterType[person](m.Registry(), "person"))
	require.NoError(t, RegisterType[badge](m.Registry(), "badge"))

	return m
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	m := newMarshaller(t)

	in := &person{
		Name:   "Ada",
		Age:    36,
		Score:  9.5,
		Active: true,
		Tags:   []string{"math", "engines"},
		Home:   &address{Street: "St James's Square", Number: 12},
		Work:   address{Street: "Analytical Engine Rd", Number: 1},
		Born:   time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC),
		Extra:  badge{Level: 3},
	}

	node, err := m.Marshal(t.Context(), in)
	require.NoError(t, err)
	assert.Equal(t, "person", node.Name)
	assert.Nil(t, node.Child("nickname"), "nil properties are omitted")

	extra := node.Child("extra")
	require.NotNil(t, extra)

	class, ok := extra.Attribute(ClassAttribute)
	assert.True(t, ok)
	assert.Equal(t, "badge", class)

	out, err := m.Unmarshal(t.Context(), node, reflect.TypeFor[*person]())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestUnmarshalByAlias(t *testing.T) {
	t.Parallel()

	m := newMarshaller(t)

	node, err := m.Marshal(t.Context(), person{Name: "Grace"})
	require.NoError(t, err)

	out, err := m.Unmarshal(t.Context(), node, reflect.TypeFor[any]())
	require.NoError(t, err)
	assert.Equal(t, person{Name: "Grace"}, out)

	_, err = m.Unmarshal(t.Context(), stream.NewNode("mystery", ""), reflect.TypeFor[any]())
	require.ErrorIs(t, err, ErrUnknownAlias)

	out, err = m.Unmarshal(t.Context(), stream.NewNode(NullAlias, ""), reflect.TypeFor[*person]())
	require.NoError(t, err)
	assert.Equal(t, (*person)(nil), out)
}

func TestUnknownPropertyHasPath(t *testing.T) {
	t.Parallel()

	m := newMarshaller(t)

	node := stream.NewNode("person", "",
		stream.NewNode("name", "Bob"),
		stream.NewNode("home", "", stream.NewNode("floor", "3")))

	_, err := m.Unmarshal(t.Context(), node, reflect.TypeFor[person]())
	require.ErrorIs(t, err, errors.ErrPropertyNotFound)

	ce, ok := errors.AsError(err)
	require.True(t, ok)

	path, _ := ce.Get("path")
	assert.Equal(t, "/person/home/floor", path)
}

func TestBadValue(t *testing.T) {
	t.Parallel()

	m := newMarshaller(t)

	node := stream.NewNode("person", "", stream.NewNode("age", "old"))

	_, err := m.Unmarshal(t.Context(), node, reflect.TypeFor[person]())
	require.ErrorIs(t, err, errors.ErrConversion)

	ce, ok := errors.AsError(err)
	require.True(t, ok)

	path, _ := ce.Get("path")
	assert.Equal(t, "/person/age", path)
}

func TestNoConverter(t *testing.T) {
	t.Parallel()

	m := New()

	_, err := m.Lookup(reflect.TypeFor[chan int]())
	require.ErrorIs(t, err, ErrNoConverter)

	_, err = m.Marshal(t.Context(), make(chan int))
	require.ErrorIs(t, err, ErrNoConverter)
}

type upperString string

type upperConverter struct{}

func (upperConverter) CanConvert(t reflect.Type) bool {
	return t == reflect.TypeFor[upperString]()
}

func (upperConverter) Marshal(value reflect.Value, w stream.Writer, _ MarshalContext) error {
	return w.SetValue("UP:" + value.String())
}

func (upperConverter) Unmarshal(r stream.Reader, t reflect.Type, _ UnmarshalContext) (reflect.Value, error) {
	return reflect.ValueOf(upperString(r.Value()[3:])), nil
}

func TestRegisterTakesPrecedence(t *testing.T) {
	t.Parallel()

	m := New()

	node, err := m.Marshal(t.Context(), upperString("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", node.Value)

	m.Register(upperConverter{})

	node, err = m.Marshal(t.Context(), upperString("x"))
	require.NoError(t, err)
	assert.Equal(t, "UP:x", node.Value)

	out, err := m.Unmarshal(t.Context(), node, reflect.TypeFor[upperString]())
	require.NoError(t, err)
	assert.Equal(t, upperString("x"), out)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	assert.Equal(t, "string", r.Alias(reflect.TypeFor[string]()))
	assert.Equal(t, "marshal.badge", r.Alias(reflect.TypeFor[badge]()))
	assert.Equal(t, NullAlias, r.Alias(nil))

	require.NoError(t, RegisterType[badge](r, "badge"))
	require.NoError(t, RegisterType[badge](r, "badge"))
	require.ErrorIs(t, RegisterType[address](r, "badge"), ErrAliasConflict)
	require.ErrorIs(t, RegisterType[address](r, NullAlias), ErrAliasConflict)

	typ, ok := r.TypeOf("badge")
	assert.True(t, ok)
	assert.Equal(t, reflect.TypeFor[badge](), typ)
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	m := newMarshaller(t)
	in := &person{Name: "Lin", Tags: []string{"a"}}

	for _, format := range []stream.Format{stream.FormatYAML, stream.FormatCBOR} {
		data, err := m.Encode(t.Context(), in, format, stream.CompressionLZ4)
		require.NoError(t, err)

		out, err := m.Decode(t.Context(), data, reflect.TypeFor[*person]())
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

type initCounter struct {
	Count int
}

func (c *initCounter) Init() error {
	c.Count = 100

	return nil
}

func TestUnmarshalUsesProvider(t *testing.T) {
	t.Parallel()

	provider := beans.NewProvider(beans.NewDictionary(beans.WithSorter(beans.NameOrderLexical())))
	m := New(WithProvider(provider))

	assert.Same(t, provider, m.Provider())

	out, err := m.Unmarshal(t.Context(), stream.NewNode("x", ""), reflect.TypeFor[*initCounter]())
	require.NoError(t, err)
	assert.Equal(t, 100, out.(*initCounter).Count) //nolint:forcetypeassert
}
