package age

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// Option defines functional options for the AGE store.
type Option func(*options)

// options contains configuration for the AGE store connection.
type options struct {
	// Connection parameters; a non-empty connString overrides them.
	host     string
	port     int
	database string
	user     string
	password string

	// Full PostgreSQL connection string (DSN or URL).
	connString string

	// Name of the graph this store operates on.
	graphName string

	// Maximum number of pooled connections.
	poolSize int32

	// Logger for store operations (nop when unset).
	logger *slog.Logger
}

// applyDefaults sets default values for any unset options. Connection
// defaults come from the AGE_* environment, falling back to the local
// benchmark setup.
func applyDefaults(opts *options) {
	if opts.host == "" {
		opts.host = envOr("AGE_HOST", "localhost")
	}

	if opts.port == 0 {
		opts.port = envIntOr("AGE_PORT", 5433)
	}

	if opts.database == "" {
		opts.database = envOr("AGE_DATABASE", "benchmark")
	}

	if opts.user == "" {
		opts.user = envOr("AGE_USER", "benchmark")
	}

	if opts.password == "" {
		opts.password = envOr("AGE_PASSWORD", "benchmark")
	}

	if opts.graphName == "" {
		opts.graphName = envOr("AGE_GRAPH", "benchmark_graph")
	}

	if opts.poolSize == 0 {
		opts.poolSize = 4
	}

	if opts.logger == nil {
		opts.logger = slog.New(discardHandler{})
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// dsn builds a connection string from the individual parameters.
func (o *options) dsn() string {
	if o.connString != "" {
		return o.connString
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s",
		o.host, o.port, o.database, o.user, o.password)
}

// WithHost sets the PostgreSQL host.
func WithHost(host string) Option {
	return func(opts *options) {
		opts.host = host
	}
}

// WithPort sets the PostgreSQL port.
func WithPort(port int) Option {
	return func(opts *options) {
		opts.port = port
	}
}

// WithDatabase sets the database name.
func WithDatabase(database string) Option {
	return func(opts *options) {
		opts.database = database
	}
}

// WithUser sets the database user.
func WithUser(user string) Option {
	return func(opts *options) {
		opts.user = user
	}
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(opts *options) {
		opts.password = password
	}
}

// WithConnString sets a complete connection string (DSN or URL), taking
// precedence over the individual host/port/database/user/password options.
func WithConnString(connString string) Option {
	return func(opts *options) {
		opts.connString = connString
	}
}

// WithGraphName sets the name of the graph the store operates on.
// The name must be a safe identifier; New rejects anything else.
func WithGraphName(name string) Option {
	return func(opts *options) {
		opts.graphName = name
	}
}

// WithPoolSize sets the maximum number of pooled connections.
func WithPoolSize(size int32) Option {
	return func(opts *options) {
		opts.poolSize = size
	}
}

// WithLogger sets the logger used for store operations.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// discardHandler is a slog.Handler that drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
