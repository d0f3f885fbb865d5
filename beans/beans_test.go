//nolint:err113 // Test file uses errors.New() for creating test errors
package beans

import (
	goerrors "errors"
	"reflect"
	"sync"
	"testing"

	"github.com/amp-labs/amp-marshal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type abc struct {
	A string
	B string
	C string
}

type cab struct {
	C string
	A string
	B string
}

type account struct {
	Name   string
	ID     string `bean:",readonly"`
	Hidden string `bean:"-"`
	Alias  string `bean:"nickname"`

	secret  string
	balance int
	failGet bool
}

func (a *account) Computed() string { return "computed-" + a.Name }

func (a *account) SetSecret(s string) { a.secret = s }

func (a *account) Balance() (int, error) {
	if a.failGet {
		return 0, goerrors.New("ledger offline")
	}

	return a.balance, nil
}

func (a *account) SetBalance(v int) error {
	if v < 0 {
		return goerrors.New("negative balance")
	}

	a.balance = v

	return nil
}

type base struct {
	ID   string
	Name string
}

type derived struct {
	base

	Name  string
	Extra int
}

type panicky struct {
	Before string
}

func (p *panicky) Boom() string { panic("getter exploded") }

func (p *panicky) SetBoom(string) {}

type initialized struct {
	Ready bool
}

func (i *initialized) Init() error {
	i.Ready = true

	return nil
}

type failingInit struct{}

func (failingInit) Init() error { return goerrors.New("no database") }

type panickingInit struct{}

func (*panickingInit) Init() error { panic("init exploded") }

type recordingVisitor struct {
	skip  map[string]bool
	names []string
	seen  map[string]any
}

func (r *recordingVisitor) ShouldVisit(name string, _ reflect.Type) bool {
	return !r.skip[name]
}

func (r *recordingVisitor) Visit(name string, _ reflect.Type, _ reflect.Type, value any) error {
	r.names = append(r.names, name)

	if r.seen == nil {
		r.seen = make(map[string]any)
	}

	r.seen[name] = value

	return nil
}

func names(props []*Descriptor) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Name
	}

	return out
}

func TestVisitationOrder(t *testing.T) {
	t.Parallel()

	t.Run("declaration order", func(t *testing.T) {
		t.Parallel()

		provider := NewProvider(NewDictionary(WithSorter(DeclarationOrder())))
		visitor := &recordingVisitor{}

		require.NoError(t, provider.VisitProperties(&abc{A: "1", B: "2", C: "3"}, visitor))
		assert.Equal(t, []string{"a", "b", "c"}, visitor.names)
		assert.Equal(t, "2", visitor.seen["b"])
	})

	t.Run("name order", func(t *testing.T) {
		t.Parallel()

		provider := NewProvider(NewDictionary(WithSorter(NameOrderLexical())))
		visitor := &recordingVisitor{}

		require.NoError(t, provider.VisitProperties(&cab{}, visitor))
		assert.Equal(t, []string{"a", "b", "c"}, visitor.names)

		declared := NewProvider(nil)
		visitor = &recordingVisitor{}

		require.NoError(t, declared.VisitProperties(&cab{}, visitor))
		assert.Equal(t, []string{"c", "a", "b"}, visitor.names)
	})

	t.Run("should visit", func(t *testing.T) {
		t.Parallel()

		visitor := &recordingVisitor{skip: map[string]bool{"b": true}}

		require.NoError(t, NewProvider(nil).VisitProperties(&abc{}, visitor))
		assert.Equal(t, []string{"a", "c"}, visitor.names)
	})
}

func TestNaturalNameOrder(t *testing.T) {
	t.Parallel()

	type fields struct {
		Field10 int
		Field2  int
		Field1  int
	}

	natural, err := NewDictionary(WithSorter(NameOrderNatural())).PropertiesFor(reflect.TypeFor[fields]())
	require.NoError(t, err)
	assert.Equal(t, []string{"field1", "field2", "field10"}, names(natural))

	lexical, err := NewDictionary(WithSorter(NameOrderLexical())).PropertiesFor(reflect.TypeFor[fields]())
	require.NoError(t, err)
	assert.Equal(t, []string{"field1", "field10", "field2"}, names(lexical))
}

func TestNameOrderNaturalIgnoresDeclarationOrder(t *testing.T) {
	t.Parallel()

	type shortFirst struct {
		A1   int
		A01  int
		A001 int
	}

	type longFirst struct {
		A001 int
		A01  int
		A1   int
	}

	dict := NewDictionary(WithSorter(NameOrderNatural()))

	short, err := dict.PropertiesFor(reflect.TypeFor[shortFirst]())
	require.NoError(t, err)

	long, err := dict.PropertiesFor(reflect.TypeFor[longFirst]())
	require.NoError(t, err)

	assert.Equal(t, names(short), names(long))
	assert.Len(t, names(short), 3)
}

func TestCapabilityExclusion(t *testing.T) {
	t.Parallel()

	provider := NewProvider(nil)
	typ := reflect.TypeFor[account]()

	props, err := provider.Dictionary().PropertiesFor(typ)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "nickname", "balance"}, names(props))

	visitor := &recordingVisitor{}
	obj := &account{Name: "ann", balance: 7}

	require.NoError(t, provider.VisitProperties(obj, visitor))
	assert.Equal(t, []string{"name", "nickname", "balance"}, visitor.names)
	assert.Equal(t, 7, visitor.seen["balance"])

	for _, name := range []string{"computed", "secret", "id", "hidden"} {
		assert.False(t, provider.PropertyDefinedInType(name, typ), name)

		err := provider.WriteProperty(obj, name, "x")
		require.ErrorIs(t, err, errors.ErrPropertyNotFound, name)

		_, err = provider.ReadProperty(obj, name)
		require.ErrorIs(t, err, errors.ErrPropertyNotFound, name)

		_, err = provider.PropertyWriteable(name, typ)
		require.ErrorIs(t, err, errors.ErrPropertyNotFound, name)
	}

	assert.Empty(t, obj.secret)
}

func TestReadWriteProperty(t *testing.T) {
	t.Parallel()

	provider := NewProvider(nil)
	obj := &account{}

	require.NoError(t, provider.WriteProperty(obj, "name", "bob"))
	require.NoError(t, provider.WriteProperty(obj, "balance", 42))
	assert.Equal(t, "bob", obj.Name)
	assert.Equal(t, 42, obj.balance)

	value, err := provider.ReadProperty(obj, "balance")
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	require.NoError(t, provider.WriteProperty(obj, "name", nil))
	assert.Empty(t, obj.Name)

	typ, err := provider.PropertyType(obj, "balance")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[int](), typ)

	writable, err := provider.PropertyWriteable("nickname", reflect.TypeFor[*account]())
	require.NoError(t, err)
	assert.True(t, writable)
}

func TestWriteFailures(t *testing.T) {
	t.Parallel()

	provider := NewProvider(nil)
	obj := &account{}

	err := provider.WriteProperty(obj, "balance", -1)
	require.ErrorIs(t, err, errors.ErrConversion)

	ce, ok := errors.AsError(err)
	require.True(t, ok)

	crumb, _ := ce.Get("property")
	assert.Equal(t, "beans.account.balance", crumb)

	err = provider.WriteProperty(obj, "name", 12)
	require.ErrorIs(t, err, errors.ErrConversion)
	require.ErrorIs(t, err, errors.ErrWrongType)

	err = provider.WriteProperty(account{}, "name", "x")
	require.ErrorIs(t, err, errors.ErrPropertyAccess)

	err = provider.WriteProperty((*account)(nil), "name", "x")
	require.ErrorIs(t, err, errors.ErrPropertyAccess)
}

func TestVisitAbortsOnFirstFailure(t *testing.T) {
	t.Parallel()

	provider := NewProvider(NewDictionary(WithSorter(NameOrderLexical())))
	visitor := &recordingVisitor{}

	err := provider.VisitProperties(&account{failGet: true}, visitor)
	require.ErrorIs(t, err, errors.ErrConversion)
	assert.Empty(t, visitor.names)

	ce, ok := errors.AsError(err)
	require.True(t, ok)

	crumb, _ := ce.Get("property")
	assert.Equal(t, "beans.account.balance", crumb)

	err = provider.VisitProperties(&panicky{}, VisitAll(func(string, reflect.Type, reflect.Type, any) error {
		return nil
	}))
	require.ErrorIs(t, err, errors.ErrConversion)
	assert.Contains(t, err.Error(), "getter exploded")

	visitErr := goerrors.New("sink full")
	err = provider.VisitProperties(&abc{}, VisitAll(func(string, reflect.Type, reflect.Type, any) error {
		return visitErr
	}))
	require.ErrorIs(t, err, visitErr)
}

func TestEmbeddedPromotion(t *testing.T) {
	t.Parallel()

	provider := NewProvider(nil)

	props, err := provider.Dictionary().PropertiesFor(reflect.TypeFor[derived]())
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name", "extra"}, names(props))
	assert.Equal(t, reflect.TypeFor[base](), props[0].Owner)
	assert.Equal(t, reflect.TypeFor[derived](), props[1].Owner)

	obj := &derived{}
	require.NoError(t, provider.WriteProperty(obj, "id", "x1"))
	require.NoError(t, provider.WriteProperty(obj, "name", "outer"))
	assert.Equal(t, "x1", obj.ID)
	assert.Equal(t, "outer", obj.Name)
	assert.Empty(t, obj.base.Name)
}

func TestFieldNameCollisions(t *testing.T) {
	t.Parallel()

	type collide struct {
		ID   string
		Id   string //nolint:revive,stylecheck
		X    int
		Y    int `bean:"x"`
		Kept string
	}

	type twoTags struct {
		A int `bean:"v"`
		B int `bean:"v"`
	}

	provider := NewProvider(nil)

	props, err := provider.Dictionary().PropertiesFor(reflect.TypeFor[collide]())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "kept"}, names(props))
	assert.False(t, provider.PropertyDefinedInType("id", reflect.TypeFor[collide]()))

	obj := &collide{}
	require.NoError(t, provider.WriteProperty(obj, "x", 7))
	assert.Equal(t, 7, obj.Y)
	assert.Zero(t, obj.X)

	props, err = provider.Dictionary().PropertiesFor(reflect.TypeFor[twoTags]())
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestDictionaryCache(t *testing.T) {
	t.Parallel()

	dict := NewDictionary()
	typ := reflect.TypeFor[abc]()

	var (
		wg      sync.WaitGroup
		results = make([][]*Descriptor, 16)
	)

	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			props, err := dict.PropertiesFor(typ)
			assert.NoError(t, err)

			results[i] = props
		}()
	}

	wg.Wait()

	for _, props := range results[1:] {
		require.Len(t, props, 3)

		for i := range props {
			assert.Same(t, results[0][i], props[i])
		}
	}

	// Mutating the returned slice doesn't affect the cache.
	results[0][0] = nil

	again, err := dict.PropertiesFor(reflect.TypeFor[*abc]())
	require.NoError(t, err)
	assert.NotNil(t, again[0])

	assert.Nil(t, dict.DescriptorOrNil(typ, "missing"))

	_, err = dict.Descriptor(typ, "missing")
	require.ErrorIs(t, err, errors.ErrPropertyNotFound)

	none, err := dict.PropertiesFor(reflect.TypeFor[int]())
	require.NoError(t, err)
	assert.Empty(t, none)
}

type failingIntrospector struct{}

func (failingIntrospector) Introspect(reflect.Type) ([]*Descriptor, error) {
	return nil, goerrors.New("no type info")
}

func TestCustomIntrospector(t *testing.T) {
	t.Parallel()

	dict := NewDictionary(WithIntrospector(failingIntrospector{}))

	_, err := dict.PropertiesFor(reflect.TypeFor[abc]())
	require.ErrorIs(t, err, errors.ErrPropertyAccess)
	assert.Nil(t, dict.DescriptorOrNil(reflect.TypeFor[abc](), "a"))
}

func TestInstantiate(t *testing.T) {
	t.Parallel()

	provider := NewProvider(nil)

	obj, err := provider.Instantiate(reflect.TypeFor[abc]())
	require.NoError(t, err)
	assert.IsType(t, &abc{}, obj)

	obj, err = provider.Instantiate(reflect.TypeFor[*initialized]())
	require.NoError(t, err)
	assert.True(t, obj.(*initialized).Ready) //nolint:forcetypeassert

	assert.True(t, provider.CanInstantiate(reflect.TypeFor[int]()))
}

func TestConstructionFailure(t *testing.T) {
	t.Parallel()

	provider := NewProvider(nil)

	cases := map[string]reflect.Type{
		"nil":          nil,
		"void":         reflect.TypeFor[Void](),
		"abstract":     reflect.TypeFor[Constructor](),
		"func":         reflect.TypeFor[func()](),
		"chan":         reflect.TypeFor[chan int](),
		"failing init": reflect.TypeFor[failingInit](),
		"panic init":   reflect.TypeFor[panickingInit](),
	}

	for name, typ := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := provider.Instantiate(typ)
			require.ErrorIs(t, err, errors.ErrConstruction)

			ce, ok := errors.AsError(err)
			require.True(t, ok)

			_, tagged := ce.Get("construction-type")
			assert.True(t, tagged)

			assert.False(t, provider.CanInstantiate(typ))
		})
	}

	_, err := provider.Instantiate(reflect.TypeFor[Constructor]())
	require.ErrorIs(t, err, ErrAbstractType)
}

func TestRegisterConstructor(t *testing.T) {
	t.Parallel()

	provider := NewProvider(nil)

	RegisterConstructor(provider, func() (*abc, error) {
		return &abc{A: "preset"}, nil
	})

	obj, err := provider.Instantiate(reflect.TypeFor[abc]())
	require.NoError(t, err)
	assert.Equal(t, "preset", obj.(*abc).A) //nolint:forcetypeassert

	RegisterConstructor(provider, func() (*cab, error) {
		return nil, goerrors.New("pool exhausted")
	})

	assert.False(t, provider.CanInstantiate(reflect.TypeFor[cab]()))

	RegisterConstructor(provider, func() (*base, error) {
		return nil, nil //nolint:nilnil
	})

	_, err = provider.Instantiate(reflect.TypeFor[base]())
	require.ErrorIs(t, err, ErrNoValueType)
}

func TestPropertyName(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"Name":    "name",
		"ID":      "id",
		"URLPath": "urlPath",
		"ID2":     "id2",
		"X":       "x",
		"already": "already",
	} {
		assert.Equal(t, want, PropertyName(in), in)
	}
}
