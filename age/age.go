package age

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPoolCreationFailed = fmt.Errorf("failed to create connection pool")
	ErrInvalidGraphName   = fmt.Errorf("invalid graph name")
	ErrGraphNotFound      = fmt.Errorf("graph does not exist")
)

// identRe matches identifiers that are safe to interpolate into SQL and
// Cypher text: alphanumeric/underscore, starting with a letter or
// underscore, at most 63 characters (the PostgreSQL identifier limit).
var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// ValidIdent reports whether s is a safe identifier. Graph and label
// names cross into raw identifier interpolation, so anything else is
// rejected before it reaches the database.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// Querier is the subset of pgx operations the store helpers need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same helpers work inside
// and outside an explicit transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a connection pool for one Apache AGE graph.
type Store struct {
	pool   *pgxpool.Pool
	opts   *options
	logger *slog.Logger
}

// New creates a new AGE store. Every pooled connection loads the AGE
// extension and sets the ag_catalog search path before use.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	if !ValidIdent(options.graphName) {
		return nil, fmt.Errorf("%w: %q must be alphanumeric/underscore, start with letter/underscore, max 63 chars",
			ErrInvalidGraphName, options.graphName)
	}

	cfg, err := pgxpool.ParseConfig(options.dsn())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolCreationFailed, err)
	}
	cfg.MaxConns = options.poolSize
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, "LOAD 'age'"); err != nil {
			return fmt.Errorf("failed to load AGE extension: %w", err)
		}
		if _, err := conn.Exec(ctx, `SET search_path = ag_catalog, "$user", public`); err != nil {
			return fmt.Errorf("failed to set search path: %w", err)
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolCreationFailed, err)
	}

	s := &Store{
		pool:   pool,
		opts:   options,
		logger: options.logger,
	}

	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// GraphName returns the name of the graph this store operates on.
func (s *Store) GraphName() string {
	return s.opts.graphName
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on error or panic. Wrapping a whole multi-label insertion
// call in one WithTx makes the call atomic: any label's failure rolls
// back every row the call staged or wrote.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// EnsureExtension creates the AGE extension in the connected database if
// it is not installed yet. Requires a role allowed to create extensions;
// deployments that provision the extension out of band never need this.
func (s *Store) EnsureExtension(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS age"); err != nil {
		return fmt.Errorf("failed to create AGE extension: %w", err)
	}
	return nil
}

// GraphExists reports whether the store's graph exists in ag_catalog.
func (s *Store) GraphExists(ctx context.Context) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		"SELECT 1 FROM ag_catalog.ag_graph WHERE name = $1", s.opts.graphName,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("graph lookup failed: %w", err)
	}
	return true, nil
}

// EnsureGraph creates the graph if it does not already exist.
func (s *Store) EnsureGraph(ctx context.Context) error {
	exists, err := s.GraphExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	s.logger.Debug("creating graph", slog.String("graph", s.opts.graphName))
	if _, err := s.pool.Exec(ctx, "SELECT ag_catalog.create_graph($1)", s.opts.graphName); err != nil {
		return fmt.Errorf("failed to create graph %q: %w", s.opts.graphName, err)
	}
	return nil
}

// CleanGraph removes all nodes and edges from the graph, leaving the
// graph itself (and its label catalog) in place.
func (s *Store) CleanGraph(ctx context.Context) error {
	exists, err := s.GraphExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	s.logger.Debug("cleaning graph", slog.String("graph", s.opts.graphName))
	if err := ExecCypher(ctx, s.pool, s.opts.graphName, "MATCH (n) DETACH DELETE n"); err != nil {
		return fmt.Errorf("failed to clean graph %q: %w", s.opts.graphName, err)
	}
	return nil
}

// DropGraph drops the entire graph including its label tables.
func (s *Store) DropGraph(ctx context.Context) error {
	exists, err := s.GraphExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	s.logger.Debug("dropping graph", slog.String("graph", s.opts.graphName))
	if _, err := s.pool.Exec(ctx, "SELECT ag_catalog.drop_graph($1, true)", s.opts.graphName); err != nil {
		return fmt.Errorf("failed to drop graph %q: %w", s.opts.graphName, err)
	}
	return nil
}

// CountNodes returns the total number of nodes in the graph.
func (s *Store) CountNodes(ctx context.Context) (int64, error) {
	return QueryCypherInt(ctx, s.pool, s.opts.graphName, "MATCH (n) RETURN count(n)")
}

// CountEdges returns the total number of edges in the graph.
func (s *Store) CountEdges(ctx context.Context) (int64, error) {
	return QueryCypherInt(ctx, s.pool, s.opts.graphName, "MATCH ()-[r]->() RETURN count(r)")
}
