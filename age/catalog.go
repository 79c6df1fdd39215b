package age

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Label describes one entry of the graph's label catalog. Every label
// owns a physical table named after it inside the graph's schema and a
// sequence that allocates the entry-id half of each graphid.
type Label struct {
	// Internal label id, the first component of every graphid in the
	// label's table.
	ID int32

	// Name of the sequence allocating entry ids for the label.
	SeqName string
}

// LabelInfo looks up the catalog entry for a label in the given graph.
// It returns nil when the label does not exist yet; AGE materializes a
// label's table on the first Cypher insert that uses it.
func LabelInfo(ctx context.Context, q Querier, graph, label string) (*Label, error) {
	const sql = `
		SELECT l.id::int, l.seq_name
		FROM ag_catalog.ag_label l
		JOIN ag_catalog.ag_graph g ON l.graph = g.graphid
		WHERE g.name = $1 AND l.name = $2`

	var info Label
	err := q.QueryRow(ctx, sql, graph, label).Scan(&info.ID, &info.SeqName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("label catalog lookup failed: %w", err)
	}
	return &info, nil
}
