// Package logger configures slog for the marshalling tools and hands out
// context-aware loggers.
package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/amp-labs/amp-marshal/envutil"
)

// Used to tag every log line with the part of the system generating it.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex protects concurrent calls to ConfigureLoggingWithOptions,
// which modifies global state (slog.SetDefault and log.Default).
var configMutex sync.Mutex //nolint:gochecknoglobals

type contextKey string

// Options is used to configure logging.
type Options struct {
	Subsystem   string
	JSON        bool
	MinLevel    slog.Level
	LegacyLevel slog.Level
	Output      io.Writer
}

// ConfigureLoggingWithOptions configures logging for the application.
// It returns the default logger.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	logger := slog.New(NewHandler(opts))

	slog.SetDefault(logger)

	// Third party packages may still use the log package.
	def := log.Default()
	*def = *slog.NewLogLogger(logger.Handler(), opts.LegacyLevel)

	subsystem.Store(opts.Subsystem)

	return logger
}

// NewHandler builds the handler ConfigureLoggingWithOptions installs, without
// touching global state. Conversion errors logged through it have their
// breadcrumbs expanded into attributes.
func NewHandler(opts Options) slog.Handler {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var handler slog.Handler

	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{
			Level: opts.MinLevel,
		})
	} else {
		handler = slog.NewTextHandler(opts.Output, &slog.HandlerOptions{
			Level: opts.MinLevel,
		})
	}

	return &slogErrorLogger{inner: handler}
}

// Option is a functional option for configuring logging via ConfigureLogging.
type Option func(*Options)

// WithOutput overrides the destination of log output.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// ConfigureLogging configures logging from LOG_JSON, LOG_LEVEL and
// LEGACY_LOG_LEVEL. It returns the default logger.
func ConfigureLogging(ctx context.Context, app string, opts ...Option) *slog.Logger {
	options := Options{
		Subsystem:   app,
		JSON:        envutil.Bool(ctx, "LOG_JSON", envutil.Default(false)).ValueOrElse(false),
		MinLevel:    envutil.SlogLevel(ctx, "LOG_LEVEL", envutil.Default(slog.LevelInfo)).ValueOrElse(slog.LevelInfo),
		LegacyLevel: envutil.SlogLevel(ctx, "LEGACY_LOG_LEVEL").ValueOrElse(slog.LevelInfo),
		Output:      os.Stderr,
	}

	for _, o := range opts {
		o(&options)
	}

	return ConfigureLoggingWithOptions(options)
}

// WithMuted adds a muted flag to the context. When muted is true, loggers
// obtained from this context produce no output.
func WithMuted(ctx context.Context, muted bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("mute"), muted)
}

func isMuted(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	muted, ok := ctx.Value(contextKey("mute")).(bool)

	return ok && muted
}

// WithSubsystem overrides the default subsystem for loggers obtained from ctx.
func WithSubsystem(ctx context.Context, subsystem string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("subsystem"), subsystem)
}

// GetSubsystem returns the subsystem from the context, or the default one
// set by ConfigureLogging.
func GetSubsystem(ctx context.Context) string { //nolint:contextcheck
	if ctx == nil {
		ctx = context.Background()
	}

	if val, ok := ctx.Value(contextKey("subsystem")).(string); ok {
		return val
	}

	if val, ok := subsystem.Load().(string); ok {
		return val
	}

	return ""
}

// WithLogger pins a specific logger to the context. Tests use this to route
// library logs into the test output.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("logger"), logger)
}

func getRealContext(ctx ...context.Context) context.Context {
	for _, c := range ctx {
		if c != nil {
			return c
		}
	}

	return context.Background()
}

// nullHandler discards all log output. It backs muted contexts.
type nullHandler struct{}

func (n *nullHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (n *nullHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (n *nullHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return n
}

func (n *nullHandler) WithGroup(_ string) slog.Handler {
	return n
}

var nullLogger = slog.New(&nullHandler{}) //nolint:gochecknoglobals

// Get returns a logger carrying the subsystem and any values added with With.
//
//nolint:contextcheck
func Get(ctx ...context.Context) *slog.Logger {
	realCtx := getRealContext(ctx...)

	if isMuted(realCtx) {
		return nullLogger
	}

	logger := slog.Default()
	if pinned, ok := realCtx.Value(contextKey("logger")).(*slog.Logger); ok && pinned != nil {
		logger = pinned
	}

	if sub := GetSubsystem(realCtx); sub != "" {
		logger = logger.With("subsystem", sub)
	}

	if vals := getValues(realCtx); vals != nil {
		logger = logger.With(vals...)
	}

	return logger
}

// With returns a new context with the given values added.
// The values are added to the logger automatically.
func With(ctx context.Context, values ...any) context.Context {
	if len(values) == 0 && ctx != nil {
		return ctx
	}

	if ctx == nil {
		ctx = context.Background()
	}

	prev := getValues(ctx)
	vals := make([]any, 0, len(prev)+len(values))
	vals = append(vals, prev...)
	vals = append(vals, values...)

	return context.WithValue(ctx, contextKey("loggerValues"), vals)
}

func getValues(ctx context.Context) []any { //nolint:contextcheck
	if ctx == nil {
		return nil
	}

	vals, _ := ctx.Value(contextKey("loggerValues")).([]any)

	return vals
}
