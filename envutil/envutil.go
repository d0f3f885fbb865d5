// Package envutil reads typed configuration values from environment
// variables, with per-context overrides for tests.
package envutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
)

var ErrNotAllowed = errors.New("value not allowed")

type envContextKey string

// WithEnvOverride returns a context in which key reads as value, regardless
// of the process environment.
func WithEnvOverride(ctx context.Context, key string, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, envContextKey(key), value)
}

func get(ctx context.Context, key string) Reader[string] {
	if ctx != nil {
		if val, ok := ctx.Value(envContextKey(key)).(string); ok {
			return Reader[string]{key: key, present: true, value: val}
		}
	}

	val, ok := os.LookupEnv(key)

	return Reader[string]{
		key:     key,
		present: ok,
		value:   val,
	}
}

func apply[T any](rdr Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		rdr = opt(rdr)
	}

	return rdr
}

// String returns a Reader for the given environment variable key.
func String(ctx context.Context, key string, opts ...Option[string]) Reader[string] {
	return apply(get(ctx, key), opts)
}

// Bool returns a Reader that parses the variable with strconv.ParseBool.
func Bool(ctx context.Context, key string, opts ...Option[bool]) Reader[bool] {
	rdr := Map(get(ctx, key), func(s string) (bool, error) {
		return strconv.ParseBool(strings.TrimSpace(s))
	})

	return apply(rdr, opts)
}

// SlogLevel returns a Reader that parses the variable as a slog level
// ("debug", "info", "warn", "error", optionally with an offset like "info+2").
func SlogLevel(ctx context.Context, key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	rdr := Map(get(ctx, key), func(s string) (slog.Level, error) {
		var level slog.Level

		err := level.UnmarshalText([]byte(strings.TrimSpace(s)))

		return level, err
	})

	return apply(rdr, opts)
}

// OneOf returns a Reader whose lower-cased, trimmed value must be one of allowed.
func OneOf(ctx context.Context, key string, allowed []string, opts ...Option[string]) Reader[string] {
	rdr := Map(get(ctx, key), func(s string) (string, error) {
		val := strings.ToLower(strings.TrimSpace(s))
		if !slices.Contains(allowed, val) {
			return val, fmt.Errorf("%w: %q (allowed: %s)", ErrNotAllowed, val, strings.Join(allowed, ", "))
		}

		return val, nil
	})

	return apply(rdr, opts)
}
