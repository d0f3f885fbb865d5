// Package config loads marshalling settings from the environment.
package config

import (
	"context"
	"fmt"

	"github.com/amp-labs/amp-marshal/beans"
	"github.com/amp-labs/amp-marshal/envutil"
	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/logger"
	"github.com/amp-labs/amp-marshal/marshal"
	"github.com/amp-labs/amp-marshal/sortedconv"
	"github.com/amp-labs/amp-marshal/stream"
)

const (
	EnvPropertyOrder  = "MARSHAL_PROPERTY_ORDER"
	EnvForcePath      = "MARSHAL_FORCE_PATH"
	EnvDocumentFormat = "MARSHAL_DOCUMENT_FORMAT"
	EnvCompression    = "MARSHAL_COMPRESSION"
)

// Property orders accepted by MARSHAL_PROPERTY_ORDER.
const (
	OrderDeclaration = "declaration"
	OrderLexical     = "lexical"
	OrderNatural     = "natural"
)

// Config holds the settings shared by marshallers built from it.
type Config struct {
	PropertyOrder string
	ForcePath     sortedconv.Path
	Format        stream.Format
	Compression   stream.Compression
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		PropertyOrder: OrderDeclaration,
		ForcePath:     sortedconv.PathAuto,
		Format:        stream.FormatYAML,
		Compression:   stream.CompressionNone,
	}
}

// Load reads the configuration from the environment (or the overrides in
// ctx). Every invalid variable is reported, not just the first.
func Load(ctx context.Context) (*Config, error) {
	var errs errors.Collection

	cfg := Default()

	order, err := envutil.OneOf(ctx, EnvPropertyOrder,
		[]string{OrderDeclaration, OrderLexical, OrderNatural},
		envutil.Default(cfg.PropertyOrder)).Value()
	errs.Add(err)

	path, err := envutil.Map(
		envutil.OneOf(ctx, EnvForcePath, []string{"auto", "fast", "buffered", "ordinary"}, envutil.Default("auto")),
		sortedconv.ParsePath).Value()
	errs.Add(err)

	format, err := envutil.Map(
		envutil.OneOf(ctx, EnvDocumentFormat, []string{"yaml", "cbor"}, envutil.Default("yaml")),
		stream.ParseFormat).Value()
	errs.Add(err)

	compression, err := envutil.Map(
		envutil.OneOf(ctx, EnvCompression, []string{"none", "zstd", "lz4", "brotli"}, envutil.Default("none")),
		stream.ParseCompression).Value()
	errs.Add(err)

	if errs.HasError() {
		return nil, fmt.Errorf("invalid marshal configuration: %w", errs.GetError())
	}

	cfg.PropertyOrder = order
	cfg.ForcePath = path
	cfg.Format = format
	cfg.Compression = compression

	logger.Get(ctx).Debug("loaded marshal configuration",
		"propertyOrder", cfg.PropertyOrder,
		"forcePath", cfg.ForcePath.String(),
		"format", cfg.Format.String(),
		"compression", cfg.Compression.String())

	return cfg, nil
}

// Sorter returns the property sorter for PropertyOrder.
func (c *Config) Sorter() beans.Sorter {
	switch c.PropertyOrder {
	case OrderLexical:
		return beans.NameOrderLexical()
	case OrderNatural:
		return beans.NameOrderNatural()
	default:
		return beans.DeclarationOrder()
	}
}

// Capabilities returns the probes sorted container converters should use.
func (c *Config) Capabilities() sortedconv.Capabilities {
	return sortedconv.ForcePath(c.ForcePath)
}

// ConverterOptions returns the options for sorted container converters.
func (c *Config) ConverterOptions() []sortedconv.Option {
	return []sortedconv.Option{sortedconv.WithCapabilities(c.Capabilities())}
}

// NewMarshaller returns a marshaller whose bean provider orders properties
// as configured. String rules are registered.
func (c *Config) NewMarshaller(opts ...marshal.Option) (*marshal.Marshaller, error) {
	provider := beans.NewProvider(beans.NewDictionary(beans.WithSorter(c.Sorter())))

	m := marshal.New(append([]marshal.Option{marshal.WithProvider(provider)}, opts...)...)

	if err := sortedconv.RegisterStringRules(m.Registry()); err != nil {
		return nil, err
	}

	return m, nil
}

// Encode marshals value and seals it with the configured format and
// compression.
func (c *Config) Encode(ctx context.Context, m *marshal.Marshaller, value any) ([]byte, error) {
	return m.Encode(ctx, value, c.Format, c.Compression)
}
