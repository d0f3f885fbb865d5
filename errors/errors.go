package errors

import "errors"

var (
	// ErrWrongType is returned when a decoded value cannot be assigned to the
	// type the caller asked for.
	ErrWrongType = errors.New("wrong type")

	// ErrConstruction marks errors raised because a type cannot be instantiated
	// (abstract, void-like, or its constructor failed).
	ErrConstruction = errors.New("cannot construct type")

	// ErrPropertyAccess marks errors raised because a getter or setter exists
	// but cannot be invoked (unexported, unaddressable, nil owner).
	ErrPropertyAccess = errors.New("cannot access property")

	// ErrConversion marks errors raised by a failing getter/setter or by a
	// malformed stream.
	ErrConversion = errors.New("conversion failed")

	// ErrPropertyNotFound marks lookups by name that yield no descriptor.
	ErrPropertyNotFound = errors.New("property not found")
)

// Collection is a thread-unsafe utility for accumulating multiple errors.
// It provides methods to add errors, check for errors, and retrieve them as a single combined error.
// Use this when you need to collect errors from multiple operations and return them together.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are automatically ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Clear removes all errors from the collection, resetting it to an empty state.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// GetError returns the collected errors as a single error.
// Returns nil if the collection is empty, the single error if there's only one,
// or a joined error (using errors.Join) if there are multiple errors.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
