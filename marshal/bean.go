package marshal

import (
	"reflect"

	"github.com/amp-labs/amp-marshal/beans"
	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/stream"
)

// BeanConverter writes structs (and pointers to structs) as one child node
// per property, in the provider's dictionary order. Nil properties are
// omitted. A property whose value's type differs from its declared type
// carries a class attribute.
type BeanConverter struct {
	provider *beans.Provider
}

var _ Converter = (*BeanConverter)(nil)

// NewBeanConverter returns a converter backed by provider.
func NewBeanConverter(provider *beans.Provider) *BeanConverter {
	return &BeanConverter{provider: provider}
}

func (b *BeanConverter) CanConvert(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Kind() == reflect.Struct && !(TextConverter{}).CanConvert(t)
}

func (b *BeanConverter) Marshal(value reflect.Value, w stream.Writer, mc MarshalContext) error {
	ptr := value

	if value.Kind() == reflect.Struct {
		if value.CanAddr() {
			ptr = value.Addr()
		} else {
			ptr = reflect.New(value.Type())
			ptr.Elem().Set(value)
		}
	}

	return b.provider.VisitProperties(ptr.Interface(), beans.VisitAll(
		func(name string, declared reflect.Type, _ reflect.Type, prop any) error {
			v := reflect.ValueOf(prop)
			if isNil(v) {
				return nil
			}

			if err := w.StartNode(name); err != nil {
				return err
			}

			if v.Type() != declared {
				if err := w.AddAttribute(ClassAttribute, mc.Alias(v.Type())); err != nil {
					return err
				}
			}

			if err := mc.ConvertAnother(w, v); err != nil {
				return err
			}

			return w.EndNode()
		}))
}

func (b *BeanConverter) Unmarshal(r stream.Reader, t reflect.Type, uc UnmarshalContext) (reflect.Value, error) {
	obj, err := b.provider.Instantiate(t)
	if err != nil {
		return reflect.Value{}, err
	}

	owner := reflect.TypeOf(obj)

	for r.HasMoreChildren() {
		if err := r.MoveDown(); err != nil {
			return reflect.Value{}, err
		}

		if err := b.readProperty(r, obj, owner, uc); err != nil {
			return reflect.Value{}, WithPath(err, r)
		}

		if err := r.MoveUp(); err != nil {
			return reflect.Value{}, err
		}
	}

	ptr := reflect.ValueOf(obj)
	if t.Kind() == reflect.Pointer {
		return ptr, nil
	}

	return ptr.Elem(), nil
}

func (b *BeanConverter) readProperty(r stream.Reader, obj any, owner reflect.Type, uc UnmarshalContext) error {
	name := r.NodeName()

	desc, err := b.provider.Dictionary().Descriptor(owner, name)
	if err != nil {
		return err
	}

	typ := desc.Type

	if class, ok := r.Attribute(ClassAttribute); ok {
		actual, found := uc.TypeOf(class)
		if !found {
			return errors.NewConversionError("cannot resolve class", ErrUnknownAlias).Add("class", class)
		}

		if typ, err = checkAssignable(actual, typ); err != nil {
			return err
		}
	}

	value, err := uc.ConvertAnother(r, typ)
	if err != nil {
		return err
	}

	return b.provider.WriteProperty(obj, name, value.Interface())
}
