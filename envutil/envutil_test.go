package envutil

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNegative = errors.New("negative")

func TestString(t *testing.T) {
	t.Parallel()

	ctx := WithEnvOverride(t.Context(), "ENVUTIL_TEST_STRING", "hello")

	val, err := String(ctx, "ENVUTIL_TEST_STRING").Value()
	require.NoError(t, err)
	assert.Equal(t, "hello", val)

	_, err = String(t.Context(), "ENVUTIL_TEST_DOES_NOT_EXIST").Value()
	require.ErrorIs(t, err, ErrEnvVarMissing)

	val, err = String(t.Context(), "ENVUTIL_TEST_DOES_NOT_EXIST", Default("dflt")).Value()
	require.NoError(t, err)
	assert.Equal(t, "dflt", val)
}

func TestBool(t *testing.T) {
	t.Parallel()

	ctx := WithEnvOverride(t.Context(), "ENVUTIL_TEST_BOOL", " true ")
	assert.True(t, Bool(ctx, "ENVUTIL_TEST_BOOL").ValueOrElse(false))

	ctx = WithEnvOverride(t.Context(), "ENVUTIL_TEST_BOOL", "maybe")
	rdr := Bool(ctx, "ENVUTIL_TEST_BOOL", Default(true))

	assert.False(t, rdr.HasValue())
	_, err := rdr.Value()
	require.ErrorIs(t, err, ErrBadEnvVar)
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()

	ctx := WithEnvOverride(t.Context(), "ENVUTIL_TEST_LEVEL", "DEBUG")
	assert.Equal(t, slog.LevelDebug, SlogLevel(ctx, "ENVUTIL_TEST_LEVEL").ValueOrElse(slog.LevelInfo))

	assert.Equal(t, slog.LevelWarn,
		SlogLevel(t.Context(), "ENVUTIL_TEST_LEVEL_MISSING", Default(slog.LevelWarn)).ValueOrElse(slog.LevelInfo))
}

func TestOneOf(t *testing.T) {
	t.Parallel()

	allowed := []string{"fast", "buffered"}

	ctx := WithEnvOverride(t.Context(), "ENVUTIL_TEST_ENUM", " Fast ")
	val, err := OneOf(ctx, "ENVUTIL_TEST_ENUM", allowed).Value()
	require.NoError(t, err)
	assert.Equal(t, "fast", val)

	ctx = WithEnvOverride(t.Context(), "ENVUTIL_TEST_ENUM", "slow")
	_, err = OneOf(ctx, "ENVUTIL_TEST_ENUM", allowed).Value()
	require.ErrorIs(t, err, ErrNotAllowed)
}

func TestValidateAndIfMissing(t *testing.T) {
	t.Parallel()

	ctx := WithEnvOverride(t.Context(), "ENVUTIL_TEST_NUM", "-3")
	rdr := Map(String(ctx, "ENVUTIL_TEST_NUM"), func(s string) (int, error) {
		if s[0] == '-' {
			return 0, errNegative
		}

		return len(s), nil
	})

	_, err := rdr.Value()
	require.ErrorIs(t, err, errNegative)

	_, err = String(t.Context(), "ENVUTIL_TEST_NUM_MISSING", IfMissing[string](errNegative)).Value()
	require.ErrorIs(t, err, errNegative)

	_, err = String(ctx, "ENVUTIL_TEST_NUM", Validate(func(s string) error { return errNegative })).Value()
	require.ErrorIs(t, err, errNegative)
}

func TestLoadEnvFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("MARSHAL_A=one\n# comment\nMARSHAL_B=\"two\"\n"), 0o600))

	vars, err := LoadEnvFile(envPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"MARSHAL_A": "one", "MARSHAL_B": "two"}, vars)

	yamlPath := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("env:\n  MARSHAL_C: three\n"), 0o600))

	ctx, err := WithEnvFile(t.Context(), yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "three", String(ctx, "MARSHAL_C").ValueOrElse(""))

	_, err = LoadEnvFile(filepath.Join(dir, "test.toml"))
	require.ErrorIs(t, err, ErrUnknownFileType)
}
