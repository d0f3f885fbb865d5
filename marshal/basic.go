package marshal

import (
	"encoding"
	"reflect"
	"strconv"

	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/stream"
)

// BasicConverter handles booleans, numbers and strings (including named
// types over them) as node values.
type BasicConverter struct{}

var _ Converter = BasicConverter{}

func (BasicConverter) CanConvert(t reflect.Type) bool {
	switch t.Kind() { //nolint:exhaustive
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func (BasicConverter) Marshal(value reflect.Value, w stream.Writer, _ MarshalContext) error {
	var text string

	switch value.Kind() { //nolint:exhaustive
	case reflect.Bool:
		text = strconv.FormatBool(value.Bool())
	case reflect.String:
		text = value.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		text = strconv.FormatInt(value.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		text = strconv.FormatUint(value.Uint(), 10)
	case reflect.Float32:
		text = strconv.FormatFloat(value.Float(), 'g', -1, 32)
	case reflect.Float64:
		text = strconv.FormatFloat(value.Float(), 'g', -1, 64)
	default:
		return errors.NewConversionError("cannot marshal value", ErrNoConverter).
			Add("type", value.Type().String())
	}

	return w.SetValue(text)
}

func (BasicConverter) Unmarshal(r stream.Reader, t reflect.Type, _ UnmarshalContext) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	text := r.Value()

	var err error

	switch t.Kind() { //nolint:exhaustive
	case reflect.Bool:
		var b bool

		b, err = strconv.ParseBool(text)
		out.SetBool(b)
	case reflect.String:
		out.SetString(text)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64

		n, err = strconv.ParseInt(text, 10, t.Bits())
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64

		n, err = strconv.ParseUint(text, 10, t.Bits())
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		var f float64

		f, err = strconv.ParseFloat(text, t.Bits())
		out.SetFloat(f)
	default:
		err = ErrNoConverter
	}

	if err != nil {
		return reflect.Value{}, errors.NewConversionError("cannot parse value", err).
			Add("required-type", t.String())
	}

	return out, nil
}

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()   //nolint:gochecknoglobals
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]() //nolint:gochecknoglobals
)

// TextConverter handles non-pointer types whose values implement
// encoding.TextMarshaler and whose pointers implement
// encoding.TextUnmarshaler, such as time.Time.
type TextConverter struct{}

var _ Converter = TextConverter{}

func (TextConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface &&
		t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func (TextConverter) Marshal(value reflect.Value, w stream.Writer, _ MarshalContext) error {
	text, err := value.Interface().(encoding.TextMarshaler).MarshalText() //nolint:forcetypeassert
	if err != nil {
		return errors.NewConversionError("cannot marshal value", err)
	}

	return w.SetValue(string(text))
}

func (TextConverter) Unmarshal(r stream.Reader, t reflect.Type, _ UnmarshalContext) (reflect.Value, error) {
	ptr := reflect.New(t)
	text := ptr.Interface().(encoding.TextUnmarshaler) //nolint:forcetypeassert

	if err := text.UnmarshalText([]byte(r.Value())); err != nil {
		return reflect.Value{}, errors.NewConversionError("cannot parse value", err).
			Add("required-type", t.String())
	}

	return ptr.Elem(), nil
}

// PointerConverter writes a non-nil pointer as its pointee.
type PointerConverter struct{}

var _ Converter = PointerConverter{}

func (PointerConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer
}

func (PointerConverter) Marshal(value reflect.Value, w stream.Writer, mc MarshalContext) error {
	return mc.ConvertAnother(w, value.Elem())
}

func (PointerConverter) Unmarshal(r stream.Reader, t reflect.Type, uc UnmarshalContext) (reflect.Value, error) {
	elem, err := uc.ConvertAnother(r, t.Elem())
	if err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(t.Elem())
	ptr.Elem().Set(elem)

	return ptr, nil
}

// SliceConverter writes each element as a child node.
type SliceConverter struct{}

var _ Converter = SliceConverter{}

func (SliceConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Slice
}

func (SliceConverter) Marshal(value reflect.Value, w stream.Writer, mc MarshalContext) error {
	for i := range value.Len() {
		if err := mc.MarshalValue(w, value.Index(i).Interface()); err != nil {
			return err
		}
	}

	return nil
}

func (SliceConverter) Unmarshal(r stream.Reader, t reflect.Type, uc UnmarshalContext) (reflect.Value, error) {
	out := reflect.MakeSlice(t, 0, 0)

	for r.HasMoreChildren() {
		if err := r.MoveDown(); err != nil {
			return reflect.Value{}, err
		}

		item, err := uc.UnmarshalValue(r, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		out = reflect.Append(out, item)

		if err := r.MoveUp(); err != nil {
			return reflect.Value{}, err
		}
	}

	return out, nil
}
