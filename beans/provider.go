package beans

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/amp-labs/amp-marshal/errors"
)

// Void is the "no value" type. It can never be instantiated.
type Void struct{}

// Constructor is implemented by types that need initialization beyond their
// zero value. Instantiate calls Init on the freshly allocated value.
type Constructor interface {
	Init() error
}

// Visitor receives the properties of an object during VisitProperties.
type Visitor interface {
	ShouldVisit(name string, owner reflect.Type) bool
	Visit(name string, typ reflect.Type, owner reflect.Type, value any) error
}

// VisitAll adapts a function to a Visitor that visits every property.
type VisitAll func(name string, typ reflect.Type, owner reflect.Type, value any) error

func (f VisitAll) ShouldVisit(string, reflect.Type) bool {
	return true
}

func (f VisitAll) Visit(name string, typ reflect.Type, owner reflect.Type, value any) error {
	return f(name, typ, owner, value)
}

// Provider instantiates structs and reads and writes their properties
// through a Dictionary.
type Provider struct {
	dict *Dictionary

	// reflect.Type -> func() (any, error)
	constructors sync.Map
}

// NewProvider creates a provider. A nil dictionary gets a default one.
func NewProvider(dict *Dictionary) *Provider {
	if dict == nil {
		dict = NewDictionary()
	}

	return &Provider{dict: dict}
}

// Dictionary returns the provider's dictionary.
func (p *Provider) Dictionary() *Dictionary {
	return p.dict
}

// RegisterConstructor installs a factory used by Instantiate for T.
func RegisterConstructor[T any](p *Provider, fn func() (*T, error)) {
	p.constructors.Store(reflect.TypeFor[T](), func() (any, error) {
		obj, err := fn()
		if err != nil || obj == nil {
			return nil, err
		}

		return obj, nil
	})
}

var voidType = reflect.TypeFor[Void]() //nolint:gochecknoglobals

// Instantiate returns a pointer to a new value of t. For a pointer type the
// pointee is constructed. It fails with a construction error, tagged with
// "construction-type", when t has no value (nil or Void), is abstract
// (an interface), cannot be allocated meaningfully (func, chan, unsafe
// pointer), or when its constructor fails or panics.
func (p *Provider) Instantiate(t reflect.Type) (obj any, err error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	defer func() {
		if err != nil {
			if e, ok := errors.AsError(err); ok {
				e.Add("construction-type", typeName(t))
			}
		}
	}()

	switch {
	case t == nil:
		return nil, errors.NewConstructionError("cannot construct type", ErrNoValueType)
	case t == voidType:
		return nil, errors.NewConstructionError("marshalling rejected", ErrNoValueType)
	}

	switch t.Kind() { //nolint:exhaustive
	case reflect.Interface:
		return nil, errors.NewConstructionError("cannot construct type", ErrAbstractType)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return nil, errors.NewConstructionError("cannot construct type", ErrNotConstructible)
	}

	if fn, ok := p.constructors.Load(t); ok {
		return construct(fn.(func() (any, error))) //nolint:forcetypeassert
	}

	return construct(func() (any, error) {
		v := reflect.New(t).Interface()

		if c, ok := v.(Constructor); ok {
			if err := c.Init(); err != nil {
				return nil, err
			}
		}

		return v, nil
	})
}

func construct(fn func() (any, error)) (obj any, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%w: %v", ErrAccessorPanicked, r)
			}

			obj = nil
			err = errors.NewConstructionError("cannot construct type", cause)
		}
	}()

	obj, err = fn()
	if err != nil {
		return nil, errors.NewConstructionError("cannot construct type", err)
	}

	if obj == nil {
		return nil, errors.NewConstructionError("cannot construct type", ErrNoValueType)
	}

	return obj, nil
}

// CanInstantiate reports whether Instantiate succeeds for t. The instance is
// discarded and no error is ever returned.
func (p *Provider) CanInstantiate(t reflect.Type) bool {
	_, err := p.Instantiate(t)

	return err == nil
}

// owner validates obj as a non-nil pointer to a struct.
func owner(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)

	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.NewPropertyAccessError("cannot access property", ErrNotStructPointer).
			Add("owner-type", fmt.Sprintf("%T", obj))
	}

	return v, nil
}

func breadcrumb(err error, ownerType reflect.Type, name string) error {
	if e, ok := errors.AsError(err); ok {
		e.Add("property", typeName(ownerType)+"."+name)

		return err
	}

	return errors.NewConversionError("cannot access property", err).
		Add("property", typeName(ownerType)+"."+name)
}

// VisitProperties walks the properties of obj in dictionary order. For each
// one the visitor is asked ShouldVisit; if so the value is read and passed to
// Visit. The first failure aborts the walk.
func (p *Provider) VisitProperties(obj any, visitor Visitor) error {
	v, err := owner(obj)
	if err != nil {
		return err
	}

	t := v.Elem().Type()

	props, err := p.dict.PropertiesFor(t)
	if err != nil {
		return err
	}

	for _, desc := range props {
		if !visitor.ShouldVisit(desc.Name, desc.Owner) {
			continue
		}

		value, err := desc.Access.Get(v)
		if err != nil {
			return breadcrumb(err, t, desc.Name)
		}

		if err := visitor.Visit(desc.Name, desc.Type, desc.Owner, value.Interface()); err != nil {
			return breadcrumb(err, t, desc.Name)
		}
	}

	return nil
}

// ReadProperty returns the current value of the named property.
func (p *Provider) ReadProperty(obj any, name string) (any, error) {
	v, err := owner(obj)
	if err != nil {
		return nil, err
	}

	t := v.Elem().Type()

	desc, err := p.dict.Descriptor(t, name)
	if err != nil {
		return nil, err
	}

	value, err := desc.Access.Get(v)
	if err != nil {
		return nil, breadcrumb(err, t, name)
	}

	return value.Interface(), nil
}

// WriteProperty sets the named property. A nil value stores the zero value.
func (p *Provider) WriteProperty(obj any, name string, value any) error {
	v, err := owner(obj)
	if err != nil {
		return err
	}

	t := v.Elem().Type()

	desc, err := p.dict.Descriptor(t, name)
	if err != nil {
		return err
	}

	if err := desc.Access.Set(v, reflect.ValueOf(value)); err != nil {
		return breadcrumb(err, t, name)
	}

	return nil
}

// PropertyType returns the declared type of the named property of obj.
func (p *Provider) PropertyType(obj any, name string) (reflect.Type, error) {
	desc, err := p.dict.Descriptor(reflect.TypeOf(obj), name)
	if err != nil {
		return nil, err
	}

	return desc.Type, nil
}

// PropertyWriteable reports whether the named property of t can be written.
// Unlike PropertyDefinedInType it fails for unknown names.
func (p *Provider) PropertyWriteable(name string, t reflect.Type) (bool, error) {
	desc, err := p.dict.Descriptor(t, name)
	if err != nil {
		return false, err
	}

	return desc.Writable, nil
}

// PropertyDefinedInType reports whether t has an eligible property called name.
func (p *Provider) PropertyDefinedInType(name string, t reflect.Type) bool {
	return p.dict.DescriptorOrNil(t, name) != nil
}
