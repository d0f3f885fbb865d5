package sortedconv

import "errors"

var (
	// ErrMalformedStream is the cause when a container node has an
	// unexpected shape.
	ErrMalformedStream = errors.New("malformed stream")

	// ErrUnsupportedContainer is the cause when a factory builds a container
	// that isn't assignable to the requested type.
	ErrUnsupportedContainer = errors.New("unsupported container type")

	// ErrUnknownPath is returned by ParsePath.
	ErrUnknownPath = errors.New("unknown population path")
)
