package errors

import (
	"errors"
	"strconv"
	"strings"
)

// Breadcrumb is one piece of diagnostic context attached to an Error,
// e.g. "property" -> "Person.name" or "path" -> "/set/string[2]".
type Breadcrumb struct {
	Key   string
	Value string
}

// Error is the error value shared by every failure in the conversion core.
// Its kind is one of ErrConstruction, ErrPropertyAccess, ErrConversion or
// ErrPropertyNotFound, so callers classify it with errors.Is. The optional
// cause is reachable through the same chain.
type Error struct {
	kind    error
	message string
	cause   error
	context []Breadcrumb
}

// NewConstructionError creates an error of kind ErrConstruction.
func NewConstructionError(message string, cause error) *Error {
	return newError(ErrConstruction, message, cause)
}

// NewPropertyAccessError creates an error of kind ErrPropertyAccess.
func NewPropertyAccessError(message string, cause error) *Error {
	return newError(ErrPropertyAccess, message, cause)
}

// NewConversionError creates an error of kind ErrConversion.
func NewConversionError(message string, cause error) *Error {
	return newError(ErrConversion, message, cause)
}

// NewPropertyNotFoundError creates an error of kind ErrPropertyNotFound.
func NewPropertyNotFoundError(message string) *Error {
	return newError(ErrPropertyNotFound, message, nil)
}

func newError(kind error, message string, cause error) *Error {
	return &Error{
		kind:    kind,
		message: message,
		cause:   cause,
	}
}

// Add appends a breadcrumb. If the key is already present with a different
// value the new one is stored under "key[n]", so nested failures keep every
// level of context instead of overwriting it.
func (e *Error) Add(key, value string) *Error {
	name := key

	for i := 1; ; i++ {
		existing, found := e.Get(name)
		if !found {
			break
		}

		if existing == value {
			return e
		}

		name = key + "[" + strconv.Itoa(i+1) + "]"
	}

	e.context = append(e.context, Breadcrumb{Key: name, Value: value})

	return e
}

// Get returns the breadcrumb value stored under key.
func (e *Error) Get(key string) (string, bool) {
	for _, crumb := range e.context {
		if crumb.Key == key {
			return crumb.Value, true
		}
	}

	return "", false
}

// Context returns a copy of the breadcrumbs in the order they were added.
func (e *Error) Context() []Breadcrumb {
	out := make([]Breadcrumb, len(e.context))
	copy(out, e.context)

	return out
}

// Kind returns the classification sentinel.
func (e *Error) Kind() error {
	return e.kind
}

// Message returns the message without cause or breadcrumbs.
func (e *Error) Message() string {
	return e.message
}

// Cause returns the wrapped failure, if any.
func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.message)

	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}

	if len(e.context) > 0 {
		sb.WriteString(" (")

		for i, crumb := range e.context {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(crumb.Key)
			sb.WriteString("=")
			sb.WriteString(crumb.Value)
		}

		sb.WriteString(")")
	}

	return sb.String()
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}

	return []error{e.kind, e.cause}
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}

	return nil, false
}

// Annotate adds a breadcrumb to err if it is (or wraps) an *Error, and wraps
// it as a conversion error otherwise. It returns nil for a nil err.
func Annotate(err error, key, value string) error {
	if err == nil {
		return nil
	}

	if e, ok := AsError(err); ok {
		e.Add(key, value)

		return err
	}

	return NewConversionError("conversion failed", err).Add(key, value)
}
