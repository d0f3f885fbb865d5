package beans

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/logger"
)

// Dictionary caches, per struct type, the ordered list of properties that are
// both readable and writable. Entries are computed once and never change.
type Dictionary struct {
	introspector Introspector
	sorter       Sorter

	// reflect.Type -> *entry
	cache sync.Map
}

type entry struct {
	props  []*Descriptor
	byName map[string]*Descriptor
}

// DictionaryOption configures a Dictionary.
type DictionaryOption func(*Dictionary)

// WithSorter sets the property ordering. The default is DeclarationOrder.
func WithSorter(sorter Sorter) DictionaryOption {
	return func(d *Dictionary) {
		d.sorter = sorter
	}
}

// WithIntrospector replaces the ReflectIntrospector.
func WithIntrospector(introspector Introspector) DictionaryOption {
	return func(d *Dictionary) {
		d.introspector = introspector
	}
}

// NewDictionary creates an empty dictionary.
func NewDictionary(opts ...DictionaryOption) *Dictionary {
	d := &Dictionary{
		introspector: ReflectIntrospector{},
		sorter:       DeclarationOrder(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// PropertiesFor returns the eligible properties of t in dictionary order.
// Pointer types are dereferenced; non-struct types have no properties.
// The returned slice is a copy and may be modified by the caller.
func (d *Dictionary) PropertiesFor(t reflect.Type) ([]*Descriptor, error) {
	e, err := d.lookup(t)
	if err != nil {
		return nil, err
	}

	return slices.Clone(e.props), nil
}

// DescriptorOrNil returns the named property of t, or nil.
func (d *Dictionary) DescriptorOrNil(t reflect.Type, name string) *Descriptor {
	e, err := d.lookup(t)
	if err != nil {
		return nil
	}

	return e.byName[name]
}

// Descriptor returns the named property of t, failing with a property not
// found error if there is none.
func (d *Dictionary) Descriptor(t reflect.Type, name string) (*Descriptor, error) {
	e, err := d.lookup(t)
	if err != nil {
		return nil, err
	}

	desc, ok := e.byName[name]
	if !ok {
		return nil, errors.NewPropertyNotFoundError("no such property").
			Add("property", typeName(structType(t))+"."+name)
	}

	return desc, nil
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

func (d *Dictionary) lookup(t reflect.Type) (*entry, error) {
	t = structType(t)
	if t == nil {
		return &entry{}, nil
	}

	if cached, ok := d.cache.Load(t); ok {
		return cached.(*entry), nil //nolint:forcetypeassert
	}

	raw, err := d.introspector.Introspect(t)
	if err != nil {
		return nil, errors.NewPropertyAccessError("cannot introspect type", err).
			Add("type", t.String())
	}

	e := &entry{byName: make(map[string]*Descriptor, len(raw))}

	for _, desc := range raw {
		if desc.Readable && desc.Writable {
			e.props = append(e.props, desc)
			e.byName[desc.Name] = desc
		}
	}

	d.sorter(e.props)

	// Concurrent first lookups may both introspect; the first stored entry
	// wins and every caller sees the same one.
	actual, loaded := d.cache.LoadOrStore(t, e)
	if !loaded {
		logger.Get(logger.WithSubsystem(context.Background(), "beans")).Debug("introspected type",
			"type", t.String(), "properties", len(e.props), "discovered", len(raw))
	}

	return actual.(*entry), nil //nolint:forcetypeassert
}
