// Package sortedconv converts sorted sets and maps to and from stream
// documents.
//
// A container is written as its ordering rule (or a null marker) followed by
// its elements in iteration order. Reading trusts that order: when the
// container supports it, elements are appended straight into its backing
// tree, or staged and bulk loaded, without consulting the rule. Streams
// written before the rule was recorded are still understood.
package sortedconv

import (
	"context"
	"reflect"

	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/logger"
	"github.com/amp-labs/amp-marshal/marshal"
	"github.com/amp-labs/amp-marshal/stream"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a set or map converter.
type Option func(*settings)

type settings struct {
	caps           Capabilities
	hooks          []Transition
	tracerProvider trace.TracerProvider
}

func newSettings(opts []Option) settings {
	s := settings{caps: DefaultCapabilities()}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// WithCapabilities overrides the probes used to choose a population path.
func WithCapabilities(caps Capabilities) Option {
	return func(s *settings) {
		s.caps = caps
	}
}

// WithTransitions registers observers of the unmarshal state machine.
func WithTransitions(hooks ...Transition) Option {
	return func(s *settings) {
		s.hooks = append(s.hooks, hooks...)
	}
}

func choosePath(caps Capabilities, canAppend, canLoad bool) Path {
	switch {
	case canAppend && caps.fast():
		return PathFast
	case canLoad && caps.bulk():
		return PathBuffered
	default:
		return PathOrdinary
	}
}

// checkFormat validates the format attribute of the container node.
func checkFormat(r stream.Reader) (bool, error) {
	format, tagged := r.Attribute(FormatAttribute)
	if tagged && format != FormatVersion {
		return false, errors.NewConversionError("unsupported sorted container format", ErrMalformedStream).
			Add("format", format).
			Add("path", r.Path())
	}

	return tagged, nil
}

// forEachElement visits the container's data elements with the reader
// positioned on each one. If the rule codec left the reader inside the first
// element, that element is visited first.
func forEachElement(r stream.Reader, inFirst bool, visit func() error) error {
	if inFirst {
		if err := visit(); err != nil {
			return err
		}

		if err := r.MoveUp(); err != nil {
			return malformed(err, r)
		}
	}

	for r.HasMoreChildren() {
		if err := r.MoveDown(); err != nil {
			return malformed(err, r)
		}

		if err := visit(); err != nil {
			return err
		}

		if err := r.MoveUp(); err != nil {
			return malformed(err, r)
		}
	}

	return nil
}

// rejectNull fails on a null node when E has no nil value. Decoding it as
// the zero value would collide with a real zero element.
func rejectNull[E any](r stream.Reader, role string) error {
	if r.NodeName() != marshal.NullAlias {
		return nil
	}

	switch t := reflect.TypeFor[E](); t.Kind() { //nolint:exhaustive
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return nil
	default:
		return errors.NewConversionError("null "+role+" in sorted container", ErrMalformedStream).
			Add("required-type", t.String()).
			Add("path", r.Path())
	}
}

func convertTo[T any](v reflect.Value) (T, error) {
	var zero T

	if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
		return zero, nil
	}

	out, ok := v.Interface().(T)
	if !ok {
		return zero, errors.NewConversionError("unexpected element type", errors.ErrWrongType).
			Add("actual-type", v.Type().String()).
			Add("required-type", reflect.TypeFor[T]().String())
	}

	return out, nil
}

func debugLog(ctx context.Context, kind string, outcome Outcome, path Path, elements int) {
	logger.Get(logger.WithSubsystem(ctx, "sortedconv")).Debug("reconstructed sorted container",
		"kind", kind,
		"rule", outcome.String(),
		"path", path.String(),
		"elements", elements)
}

func failed(ctx context.Context, kind string, state State, err error) error {
	logger.Get(logger.WithSubsystem(ctx, "sortedconv")).Debug("sorted container conversion failed",
		"error", logger.AnnotateError(err, "kind", kind, "state", state.String()))

	return err
}
