package envutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFileType is returned when the file extension is not recognized.
var ErrUnknownFileType = errors.New("env file doesn't have a known file suffix")

// LoadEnvFile loads environment variables from a file and returns them as a map.
// The file format is detected from the extension:
//   - .env files are parsed as KEY=VALUE pairs by godotenv
//   - .yml/.yaml files must have an "env" mapping of string key-value pairs
//
// Example YAML file:
//
//	env:
//	  MARSHAL_PROPERTY_ORDER: natural
//	  MARSHAL_COMPRESSION: zstd
func LoadEnvFile(path string) (map[string]string, error) {
	name := strings.ToLower(filepath.Base(path))

	switch {
	case strings.HasSuffix(name, ".env"):
		return godotenv.Read(path)
	case strings.HasSuffix(name, ".yml"), strings.HasSuffix(name, ".yaml"):
		return loadYAMLFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, filepath.Base(path))
	}
}

// WithEnvFile returns a context in which every variable of the file overrides
// the process environment.
func WithEnvFile(ctx context.Context, path string) (context.Context, error) {
	vars, err := LoadEnvFile(path)
	if err != nil {
		return ctx, err
	}

	for key, value := range vars {
		ctx = WithEnvOverride(ctx, key, value)
	}

	return ctx, nil
}

type yamlEnvFile struct {
	Env map[string]string `yaml:"env"`
}

func loadYAMLFile(path string) (map[string]string, error) {
	bts, err := os.ReadFile(path) // #nosec G304 -- path is the intended file to load
	if err != nil {
		return nil, err
	}

	out := &yamlEnvFile{}

	if err := yaml.Unmarshal(bts, out); err != nil {
		return nil, err
	}

	return out.Env, nil
}
