package beans

import "errors"

var (
	// ErrAccessorPanicked wraps a non-error panic value raised by a getter,
	// setter or constructor.
	ErrAccessorPanicked = errors.New("accessor panicked")

	// ErrNoValueType is the cause when asked to construct nil or Void.
	ErrNoValueType = errors.New("type denotes no value")

	// ErrAbstractType is the cause when asked to construct an interface type.
	ErrAbstractType = errors.New("type is abstract")

	// ErrNotConstructible is the cause for func, chan and unsafe pointer types.
	ErrNotConstructible = errors.New("type has no zero-argument constructor")

	// ErrNotStructPointer is the cause when a property owner is not a
	// non-nil pointer to a struct.
	ErrNotStructPointer = errors.New("owner is not a non-nil struct pointer")
)
