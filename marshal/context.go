package marshal

import (
	"context"
	"reflect"

	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/stream"
)

// ClassAttribute carries the alias of a value's concrete type when it differs
// from the type its node name implies.
const ClassAttribute = "class"

type marshalContext struct {
	ctx context.Context //nolint:containedctx
	m   *Marshaller
}

var _ MarshalContext = (*marshalContext)(nil)

func (mc *marshalContext) Context() context.Context {
	if mc.ctx == nil {
		return context.Background()
	}

	return mc.ctx
}

func (mc *marshalContext) Alias(t reflect.Type) string {
	return mc.m.registry.Alias(t)
}

func (mc *marshalContext) ConvertAnother(w stream.Writer, value reflect.Value) error {
	for value.Kind() == reflect.Interface && !value.IsNil() {
		value = value.Elem()
	}

	conv, err := mc.m.Lookup(value.Type())
	if err != nil {
		return err
	}

	return conv.Marshal(value, w, mc)
}

func (mc *marshalContext) MarshalValue(w stream.Writer, value any) error {
	v := reflect.ValueOf(value)

	if isNil(v) {
		if err := w.StartNode(NullAlias); err != nil {
			return err
		}

		return w.EndNode()
	}

	alias := mc.Alias(v.Type())

	if err := w.StartNode(alias); err != nil {
		return err
	}

	if err := mc.ConvertAnother(w, v); err != nil {
		if e, ok := errors.AsError(err); ok {
			if _, has := e.Get("type"); !has {
				e.Add("type", alias)
			}
		}

		return err
	}

	return w.EndNode()
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() { //nolint:exhaustive
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

type unmarshalContext struct {
	ctx context.Context //nolint:containedctx
	m   *Marshaller
}

var _ UnmarshalContext = (*unmarshalContext)(nil)

func (uc *unmarshalContext) Context() context.Context {
	if uc.ctx == nil {
		return context.Background()
	}

	return uc.ctx
}

func (uc *unmarshalContext) TypeOf(alias string) (reflect.Type, bool) {
	return uc.m.registry.TypeOf(alias)
}

func (uc *unmarshalContext) ConvertAnother(r stream.Reader, t reflect.Type) (reflect.Value, error) {
	conv, err := uc.m.Lookup(t)
	if err != nil {
		return reflect.Value{}, WithPath(err, r)
	}

	v, err := conv.Unmarshal(r, t, uc)
	if err != nil {
		return reflect.Value{}, WithPath(err, r)
	}

	return v, nil
}

func (uc *unmarshalContext) UnmarshalValue(r stream.Reader, t reflect.Type) (reflect.Value, error) {
	if r.NodeName() == NullAlias {
		if t == nil {
			return reflect.Value{}, nil
		}

		return reflect.Zero(t), nil
	}

	actual, err := uc.resolve(r, t)
	if err != nil {
		return reflect.Value{}, WithPath(err, r)
	}

	return uc.ConvertAnother(r, actual)
}

// resolve picks the concrete type of the current node: the class attribute
// wins, then the node name, then the declared type.
func (uc *unmarshalContext) resolve(r stream.Reader, declared reflect.Type) (reflect.Type, error) {
	if class, ok := r.Attribute(ClassAttribute); ok {
		t, found := uc.TypeOf(class)
		if !found {
			return nil, errors.NewConversionError("cannot resolve class", ErrUnknownAlias).
				Add("class", class)
		}

		return checkAssignable(t, declared)
	}

	if t, found := uc.TypeOf(r.NodeName()); found {
		if declared == nil || t.AssignableTo(declared) {
			return t, nil
		}
	}

	if declared == nil || declared.Kind() == reflect.Interface {
		return nil, errors.NewConversionError("cannot resolve type", ErrUnknownAlias).
			Add("alias", r.NodeName())
	}

	return declared, nil
}

func checkAssignable(t, declared reflect.Type) (reflect.Type, error) {
	if declared != nil && !t.AssignableTo(declared) {
		return nil, errors.NewConversionError("cannot resolve class", errors.ErrWrongType).
			Add("actual-type", t.String()).
			Add("required-type", declared.String())
	}

	return t, nil
}

// WithPath tags err with the reader's position unless a deeper position is
// already recorded.
func WithPath(err error, r stream.Reader) error {
	if err == nil {
		return nil
	}

	if e, ok := errors.AsError(err); ok {
		if _, has := e.Get("path"); has {
			return err
		}
	}

	return errors.Annotate(err, "path", r.Path())
}
