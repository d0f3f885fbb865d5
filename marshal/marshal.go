// Package marshal turns Go values into stream documents and back. Each type
// is handled by a Converter; converters recurse into nested values through
// the MarshalContext and UnmarshalContext they are given.
package marshal

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"github.com/amp-labs/amp-marshal/beans"
	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/stream"
)

// Converter writes the contents of a value into the currently open node and
// reads them back. It never starts or ends its own node.
type Converter interface {
	CanConvert(t reflect.Type) bool
	Marshal(value reflect.Value, w stream.Writer, mc MarshalContext) error
	// Unmarshal returns a value of type t. The reader is positioned on the
	// value's node and must be left there.
	Unmarshal(r stream.Reader, t reflect.Type, uc UnmarshalContext) (reflect.Value, error)
}

// MarshalContext is handed to converters while writing.
type MarshalContext interface {
	Context() context.Context
	// Alias returns the node name for a type.
	Alias(t reflect.Type) string
	// ConvertAnother writes the contents of value into the open node.
	ConvertAnother(w stream.Writer, value reflect.Value) error
	// MarshalValue writes value as a child node named after its type.
	MarshalValue(w stream.Writer, value any) error
}

// UnmarshalContext is handed to converters while reading.
type UnmarshalContext interface {
	Context() context.Context
	// TypeOf resolves a node name.
	TypeOf(alias string) (reflect.Type, bool)
	// ConvertAnother reads the contents of the current node as t.
	ConvertAnother(r stream.Reader, t reflect.Type) (reflect.Value, error)
	// UnmarshalValue reads the current node, which was written by
	// MarshalValue, as a value assignable to t.
	UnmarshalValue(r stream.Reader, t reflect.Type) (reflect.Value, error)
}

// Marshaller owns the converters, the alias registry and the bean provider.
type Marshaller struct {
	registry *Registry
	provider *beans.Provider

	mu         sync.RWMutex
	converters []Converter

	// reflect.Type -> Converter
	lookupCache sync.Map
}

// Option configures a Marshaller.
type Option func(*Marshaller)

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) Option {
	return func(m *Marshaller) {
		m.registry = r
	}
}

// WithProvider replaces the default bean provider.
func WithProvider(p *beans.Provider) Option {
	return func(m *Marshaller) {
		m.provider = p
	}
}

// New returns a Marshaller with converters for basic types, text
// marshalers, pointers, slices and structs.
func New(opts ...Option) *Marshaller {
	m := &Marshaller{}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = NewRegistry()
	}

	if m.provider == nil {
		m.provider = beans.NewProvider(nil)
	}

	m.Register(SliceConverter{})
	m.Register(PointerConverter{})
	m.Register(BasicConverter{})
	m.Register(&BeanConverter{provider: m.provider})
	m.Register(TextConverter{})

	return m
}

// Registry returns the alias registry.
func (m *Marshaller) Registry() *Registry {
	return m.registry
}

// Provider returns the bean provider.
func (m *Marshaller) Provider() *beans.Provider {
	return m.provider
}

// Register adds a converter. Later registrations take precedence.
func (m *Marshaller) Register(c Converter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.converters = append(m.converters, c)
	m.lookupCache.Clear()
}

// Lookup returns the converter for t.
func (m *Marshaller) Lookup(t reflect.Type) (Converter, error) { //nolint:ireturn
	if c, ok := m.lookupCache.Load(t); ok {
		return c.(Converter), nil //nolint:forcetypeassert
	}

	m.mu.RLock()
	converters := slices.Clone(m.converters)
	m.mu.RUnlock()

	for _, c := range slices.Backward(converters) {
		if c.CanConvert(t) {
			m.lookupCache.Store(t, c)

			return c, nil
		}
	}

	return nil, errors.NewConversionError("cannot convert type", ErrNoConverter).
		Add("type", typeString(t))
}

// Marshal renders value as a document whose root is named after its type.
func (m *Marshaller) Marshal(ctx context.Context, value any) (*stream.Node, error) {
	w := stream.NewWriter()
	mc := &marshalContext{ctx: ctx, m: m}

	if err := mc.MarshalValue(w, value); err != nil {
		return nil, err
	}

	return w.Root(), nil
}

// Unmarshal reads a document produced by Marshal as a value of type target.
// An interface target resolves the concrete type from the root's name.
func (m *Marshaller) Unmarshal(ctx context.Context, node *stream.Node, target reflect.Type) (any, error) {
	if node == nil {
		return nil, ErrEmptyDocument
	}

	uc := &unmarshalContext{ctx: ctx, m: m}

	v, err := uc.UnmarshalValue(stream.NewReader(node), target)
	if err != nil {
		return nil, err
	}

	if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
		return nil, nil //nolint:nilnil
	}

	return v.Interface(), nil
}

// Encode marshals value and seals it with the given format and compression.
func (m *Marshaller) Encode(ctx context.Context, value any, format stream.Format,
	compression stream.Compression,
) ([]byte, error) {
	node, err := m.Marshal(ctx, value)
	if err != nil {
		return nil, err
	}

	return stream.Seal(format, compression, node)
}

// Decode opens a sealed document and unmarshals it as target.
func (m *Marshaller) Decode(ctx context.Context, data []byte, target reflect.Type) (any, error) {
	node, err := stream.Open(data)
	if err != nil {
		return nil, err
	}

	return m.Unmarshal(ctx, node, target)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
