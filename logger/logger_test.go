//nolint:err113 // Test file uses errors.New() for creating test errors
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	marshalerrors "github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/envutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	return out
}

func TestGetWithContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := slog.New(NewHandler(Options{JSON: true, Output: &buf}))

	ctx := WithLogger(t.Context(), base)
	ctx = WithSubsystem(ctx, "sortedconv")
	ctx = With(ctx, "type", "TreeSet")

	Get(ctx).Info("hello")

	line := decodeLine(t, &buf)
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "sortedconv", line["subsystem"])
	assert.Equal(t, "TreeSet", line["type"])
}

func TestMuted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := WithLogger(t.Context(), slog.New(NewHandler(Options{JSON: true, Output: &buf})))
	ctx = WithMuted(ctx, true)

	Get(ctx).Error("should not appear")

	assert.Empty(t, buf.String())
}

func TestAnnotateError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, AnnotateError(nil, "key", "value"))

	base := errors.New("base error")
	annotated := AnnotateError(base, "user", "42")

	require.ErrorIs(t, annotated, base)
	assert.Equal(t, "base error", annotated.Error())

	var buf bytes.Buffer

	slog.New(NewHandler(Options{JSON: true, Output: &buf})).Info("failed", "error", annotated)

	line := decodeLine(t, &buf)
	assert.Equal(t, "42", line["user"])
	assert.Equal(t, "base error", line["error"])
}

func TestConversionErrorBreadcrumbs(t *testing.T) {
	t.Parallel()

	err := marshalerrors.NewConversionError("cannot set property", errors.New("boom"))
	err.Add("property", "Person.name")

	var buf bytes.Buffer

	slog.New(NewHandler(Options{JSON: true, Output: &buf})).Warn("unmarshal failed", "error", err)

	line := decodeLine(t, &buf)

	group, ok := line["error_context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "conversion failed", group["kind"])
	assert.Equal(t, "Person.name", group["property"])
}

func TestPlainErrorKept(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	slog.New(NewHandler(Options{JSON: true, Output: &buf})).Info("x", "error", errors.New("plain"))

	line := decodeLine(t, &buf)
	assert.Equal(t, "plain", line["error"])
	assert.NotContains(t, line, "error_context")
}

func TestConfigureLogging(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ctx := envutil.WithEnvOverride(t.Context(), "LOG_JSON", "true")
	ctx = envutil.WithEnvOverride(ctx, "LOG_LEVEL", "warn")

	logger := ConfigureLogging(ctx, "test", WithOutput(&buf))

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	Get().Warn("kept")

	line := decodeLine(t, &buf)
	assert.Equal(t, "test", line["subsystem"])
	assert.Equal(t, "kept", line["msg"])
}
