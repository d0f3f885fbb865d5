package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	marshalerrors "github.com/amp-labs/amp-marshal/errors"
)

// AnnotateError wraps an error with slog key-value pairs. When the returned
// error is logged through a handler built by NewHandler, the attributes are
// added to the log line. Returns nil if err is nil.
func AnnotateError(err error, args ...any) error {
	if err == nil {
		return nil
	}

	r := slog.NewRecord(time.Now(), slog.LevelDebug, "", 0)
	r.Add(args...)

	var errAttrs []slog.Attr

	r.Attrs(func(attr slog.Attr) bool {
		errAttrs = append(errAttrs, attr)

		return true
	})

	return &slogError{
		err:   err,
		attrs: errAttrs,
	}
}

type slogError struct {
	err   error
	attrs []slog.Attr
}

func (s *slogError) Error() string {
	return s.err.Error()
}

func (s *slogError) Unwrap() error {
	return s.err
}

var _ error = (*slogError)(nil)

// slogErrorLogger decorates a handler. Error attributes created by
// AnnotateError contribute their attributes, and conversion errors contribute
// their kind and breadcrumbs under an "error_context" group.
type slogErrorLogger struct {
	inner slog.Handler
}

var _ slog.Handler = (*slogErrorLogger)(nil)

func (s *slogErrorLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return s.inner.Enabled(ctx, level)
}

func (s *slogErrorLogger) Handle(ctx context.Context, record slog.Record) error {
	var (
		baseAttrs []slog.Attr
		errAttrs  []slog.Attr
	)

	record.Attrs(func(attr slog.Attr) bool {
		err, isErr := attr.Value.Any().(error)
		if !isErr {
			baseAttrs = append(baseAttrs, attr)

			return true
		}

		var se *slogError
		if errors.As(err, &se) {
			errAttrs = append(errAttrs, se.attrs...)
			err = se.err
		}

		baseAttrs = append(baseAttrs, slog.Attr{Key: attr.Key, Value: slog.AnyValue(err)})

		if ce, ok := marshalerrors.AsError(err); ok {
			errAttrs = append(errAttrs, breadcrumbAttrs(ce))
		}

		return true
	})

	if len(errAttrs) == 0 {
		return s.inner.Handle(ctx, record)
	}

	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	r.AddAttrs(baseAttrs...)
	r.AddAttrs(errAttrs...)

	return s.inner.Handle(ctx, r)
}

func breadcrumbAttrs(ce *marshalerrors.Error) slog.Attr {
	crumbs := ce.Context()
	attrs := make([]any, 0, len(crumbs)+1)
	attrs = append(attrs, slog.String("kind", ce.Kind().Error()))

	for _, crumb := range crumbs {
		attrs = append(attrs, slog.String(crumb.Key, crumb.Value))
	}

	return slog.Group("error_context", attrs...)
}

func (s *slogErrorLogger) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &slogErrorLogger{inner: s.inner.WithAttrs(attrs)}
}

func (s *slogErrorLogger) WithGroup(name string) slog.Handler {
	return &slogErrorLogger{inner: s.inner.WithGroup(name)}
}
