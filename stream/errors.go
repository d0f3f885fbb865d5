package stream

import "errors"

var (
	// ErrNoMoreChildren is returned by MoveDown when the current node has no
	// unvisited children.
	ErrNoMoreChildren = errors.New("no more children")

	// ErrAtRoot is returned by MoveUp on the root node.
	ErrAtRoot = errors.New("already at the root node")

	// ErrNoOpenNode is returned by Writer calls that need an open node.
	ErrNoOpenNode = errors.New("no open node")

	// ErrMultipleRoots is returned when a second top-level node is started.
	ErrMultipleRoots = errors.New("document already has a root node")

	// ErrChecksumMismatch is returned by Open when the envelope is corrupt.
	ErrChecksumMismatch = errors.New("envelope checksum mismatch")

	// ErrBadEnvelope is returned by Open for truncated or foreign input.
	ErrBadEnvelope = errors.New("malformed envelope")

	// ErrUnknownFormat is returned for an unrecognized format or compression name.
	ErrUnknownFormat = errors.New("unknown format")
)
