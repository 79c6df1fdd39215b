package age

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// CypherSQL wraps a Cypher body in the SQL call AGE expects. The graph
// name is interpolated, so callers must have validated it with ValidIdent.
// The body is dollar-quoted; property values inside it must already be
// escaped for Cypher.
func CypherSQL(graph, body string) string {
	return fmt.Sprintf("SELECT * FROM cypher('%s', $$ %s $$) AS (v ag_catalog.agtype)", graph, body)
}

// ExecCypher executes a Cypher statement against the graph, discarding
// any returned rows.
func ExecCypher(ctx context.Context, q Querier, graph, body string) error {
	rows, err := q.Query(ctx, CypherSQL(graph, body))
	if err != nil {
		return fmt.Errorf("cypher execution failed: %w", err)
	}
	rows.Close()
	return rows.Err()
}

// QueryCypherInt executes a Cypher statement expected to return a single
// integer value, such as a count.
func QueryCypherInt(ctx context.Context, q Querier, graph, body string) (int64, error) {
	sql := fmt.Sprintf("SELECT v::text FROM cypher('%s', $$ %s $$) AS (v ag_catalog.agtype)", graph, body)

	var raw string
	if err := q.QueryRow(ctx, sql).Scan(&raw); err != nil {
		return 0, fmt.Errorf("cypher query failed: %w", err)
	}

	// agtype renders scalars as their JSON form; counts come back bare
	// but strings carry quotes.
	n, err := strconv.ParseInt(strings.Trim(raw, `"`), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected agtype integer %q: %w", raw, err)
	}
	return n, nil
}
