package marshal

import "errors"

var (
	// ErrAliasConflict is returned when an alias is bound to two types.
	ErrAliasConflict = errors.New("alias conflict")

	// ErrNoConverter is the cause when no converter handles a type.
	ErrNoConverter = errors.New("no converter for type")

	// ErrUnknownAlias is the cause when a node names an unregistered type
	// and the declared type is abstract.
	ErrUnknownAlias = errors.New("unknown alias")

	// ErrEmptyDocument is returned when unmarshalling a nil node.
	ErrEmptyDocument = errors.New("empty document")
)
