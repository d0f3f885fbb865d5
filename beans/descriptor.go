// Package beans gives reflective, cached access to the named properties of
// struct values: enumerating them in a fixed order, reading and writing them,
// and instantiating their owners.
//
// A property is either an exported struct field or a pair of accessor
// methods X() / SetX(v) on the pointer type. Only properties that can be both
// read and written take part in marshalling.
package beans

import (
	"fmt"
	"reflect"

	"github.com/amp-labs/amp-marshal/errors"
)

// Accessor reads and writes one property of an owner. The owner is always a
// non-nil pointer to the struct.
type Accessor interface {
	Get(owner reflect.Value) (reflect.Value, error)
	Set(owner reflect.Value, value reflect.Value) error
}

// Descriptor describes one property of a struct type.
type Descriptor struct {
	Name string
	Type reflect.Type
	// Owner is the type that declares the property. For fields promoted from
	// an embedded struct this is the embedded type.
	Owner    reflect.Type
	Readable bool
	Writable bool
	Access   Accessor
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s.%s (%s)", typeName(d.Owner), d.Name, d.Type)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

type fieldAccessor struct {
	index []int
}

func (f fieldAccessor) Get(owner reflect.Value) (reflect.Value, error) {
	field, err := owner.Elem().FieldByIndexErr(f.index)
	if err != nil {
		return reflect.Value{}, errors.NewPropertyAccessError("cannot access property", err)
	}

	return field, nil
}

func (f fieldAccessor) Set(owner reflect.Value, value reflect.Value) error {
	field, err := owner.Elem().FieldByIndexErr(f.index)
	if err != nil {
		return errors.NewPropertyAccessError("cannot access property", err)
	}

	if !field.CanSet() {
		return errors.NewPropertyAccessError("cannot access property", nil)
	}

	assignable, err := assignable(value, field.Type())
	if err != nil {
		return err
	}

	field.Set(assignable)

	return nil
}

type methodAccessor struct {
	getter    int
	getterErr bool
	setter    int
	setterErr bool
}

func (m methodAccessor) Get(owner reflect.Value) (reflect.Value, error) {
	if m.getter < 0 {
		return reflect.Value{}, errors.NewPropertyAccessError("property is not readable", nil)
	}

	out, err := call(owner.Method(m.getter), nil, "cannot get property")
	if err != nil {
		return reflect.Value{}, err
	}

	if m.getterErr {
		if failure, _ := out[1].Interface().(error); failure != nil {
			return reflect.Value{}, errors.NewConversionError("cannot get property", failure)
		}
	}

	return out[0], nil
}

func (m methodAccessor) Set(owner reflect.Value, value reflect.Value) error {
	if m.setter < 0 {
		return errors.NewPropertyAccessError("property is not writable", nil)
	}

	method := owner.Method(m.setter)

	assignable, err := assignable(value, method.Type().In(0))
	if err != nil {
		return err
	}

	out, err := call(method, []reflect.Value{assignable}, "cannot set property")
	if err != nil {
		return err
	}

	if m.setterErr {
		if failure, _ := out[0].Interface().(error); failure != nil {
			return errors.NewConversionError("cannot set property", failure)
		}
	}

	return nil
}

// call invokes an accessor method, turning a panic into a conversion error.
func call(method reflect.Value, args []reflect.Value, message string) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%w: %v", ErrAccessorPanicked, r)
			}

			err = errors.NewConversionError(message, cause)
		}
	}()

	return method.Call(args), nil
}

// assignable adapts value to typ: an invalid value becomes typ's zero value,
// and otherwise value must be assignable to typ.
func assignable(value reflect.Value, typ reflect.Type) (reflect.Value, error) {
	if !value.IsValid() {
		return reflect.Zero(typ), nil
	}

	if value.Type().AssignableTo(typ) {
		return value, nil
	}

	// Interface-wrapped values coming from `any`.
	if value.Kind() == reflect.Interface && !value.IsNil() {
		return assignable(value.Elem(), typ)
	}

	return reflect.Value{}, errors.NewConversionError("cannot set property",
		fmt.Errorf("%w: %s is not assignable to %s", errors.ErrWrongType, value.Type(), typ))
}
