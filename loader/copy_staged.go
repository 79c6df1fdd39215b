package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agebench/agebench/age"
)

// defaultPageSize is how many staged rows one UNWIND MERGE statement
// carries. Larger pages mean fewer round trips but bigger statements;
// the value is an empirical trade-off, not derived.
const defaultPageSize = 200

// CopyStaged bulk-lands all records in a transaction-scoped staging
// table through the COPY channel, then pages through the staging table
// per label and upserts each page with one Cypher UNWIND MERGE.
type CopyStaged struct {
	pageSize int
}

// NewCopyStaged creates the COPY-staged strategy.
func NewCopyStaged() *CopyStaged {
	return &CopyStaged{pageSize: defaultPageSize}
}

func (s *CopyStaged) Name() string { return "copy-staged" }

func (s *CopyStaged) Description() string {
	return "COPY to staging table, then paged UNWIND MERGE"
}

// InsertNodes stages all nodes via COPY and merges them page by page.
func (s *CopyStaged) InsertNodes(ctx context.Context, tx pgx.Tx, graph string, nodes []Node) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	if err := validateNodeLabels(nodes); err != nil {
		return 0, err
	}
	if err := checkDuplicateIDs("node", nodeIDs(nodes)); err != nil {
		return 0, err
	}

	_, err := tx.Exec(ctx, `
		CREATE TEMP TABLE _staging_nodes (
			id TEXT NOT NULL,
			label TEXT NOT NULL,
			properties JSONB NOT NULL
		) ON COMMIT DROP`)
	if err != nil {
		return 0, fmt.Errorf("failed to create node staging table: %w", err)
	}

	rows := make([][]string, 0, len(nodes))
	for _, node := range nodes {
		props, err := propertiesJSON(node.ID, node.Properties)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []string{node.ID, node.Label, props})
	}
	if err := copyRows(ctx, tx, "_staging_nodes", []string{"id", "label", "properties"}, rows); err != nil {
		return 0, err
	}

	labels, err := s.stagedLabels(ctx, tx, "_staging_nodes")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, label := range labels {
		n, err := s.mergeStagedNodes(ctx, tx, graph, label)
		if err != nil {
			return 0, err
		}
		count += n
	}

	if err := dropStaging(ctx, tx, "_staging_nodes"); err != nil {
		return 0, err
	}
	return count, nil
}

// InsertEdges stages all edges via COPY and merges them page by page.
func (s *CopyStaged) InsertEdges(ctx context.Context, tx pgx.Tx, graph string, edges []Edge) (int, error) {
	if len(edges) == 0 {
		return 0, nil
	}
	if err := validateEdgeLabels(edges); err != nil {
		return 0, err
	}
	if err := checkDuplicateIDs("edge", edgeIDs(edges)); err != nil {
		return 0, err
	}

	_, err := tx.Exec(ctx, `
		CREATE TEMP TABLE _staging_edges (
			id TEXT NOT NULL,
			label TEXT NOT NULL,
			start_id TEXT NOT NULL,
			end_id TEXT NOT NULL,
			properties JSONB NOT NULL
		) ON COMMIT DROP`)
	if err != nil {
		return 0, fmt.Errorf("failed to create edge staging table: %w", err)
	}

	rows := make([][]string, 0, len(edges))
	for _, edge := range edges {
		props, err := propertiesJSON(edge.ID, edge.Properties)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []string{edge.ID, edge.Label, edge.StartID, edge.EndID, props})
	}
	if err := copyRows(ctx, tx, "_staging_edges",
		[]string{"id", "label", "start_id", "end_id", "properties"}, rows); err != nil {
		return 0, err
	}

	labels, err := s.stagedLabels(ctx, tx, "_staging_edges")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, label := range labels {
		n, err := s.mergeStagedEdges(ctx, tx, graph, label)
		if err != nil {
			return 0, err
		}
		count += n
	}

	if err := dropStaging(ctx, tx, "_staging_edges"); err != nil {
		return 0, err
	}
	return count, nil
}

// stagedLabels returns the distinct labels present in a staging table.
func (s *CopyStaged) stagedLabels(ctx context.Context, tx pgx.Tx, table string) ([]string, error) {
	rows, err := tx.Query(ctx, "SELECT DISTINCT label FROM "+table+" ORDER BY label")
	if err != nil {
		return nil, fmt.Errorf("failed to list staged labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to list staged labels: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// mergeStagedNodes pages through one label's staged nodes and issues one
// UNWIND MERGE per page.
func (s *CopyStaged) mergeStagedNodes(ctx context.Context, tx pgx.Tx, graph, label string) (int, error) {
	count := 0
	for offset := 0; ; {
		items, err := s.fetchStagedProperties(ctx, tx,
			"SELECT properties FROM _staging_nodes WHERE label = $1 ORDER BY id LIMIT $2 OFFSET $3",
			label, offset)
		if err != nil {
			return 0, err
		}
		if len(items) == 0 {
			break
		}

		body := fmt.Sprintf("WITH %s AS items UNWIND items AS item MERGE (n:%s {id: item.id}) SET %s",
			formatItemsArray(items), label, formatSetClauses("n", items, nil))
		if err := age.ExecCypher(ctx, tx, graph, body); err != nil {
			return 0, fmt.Errorf("failed to merge staged nodes of label %q: %w", label, err)
		}

		count += len(items)
		offset += len(items)
	}
	return count, nil
}

// mergeStagedEdges pages through one label's staged edges. Endpoint ids
// are folded into each item for the MATCH and excluded from the SET.
func (s *CopyStaged) mergeStagedEdges(ctx context.Context, tx pgx.Tx, graph, label string) (int, error) {
	count := 0
	for offset := 0; ; {
		rows, err := tx.Query(ctx,
			"SELECT start_id, end_id, properties FROM _staging_edges WHERE label = $1 ORDER BY id LIMIT $2 OFFSET $3",
			label, s.pageSize, offset)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch staged edges: %w", err)
		}

		var items []Properties
		for rows.Next() {
			var startID, endID string
			var raw []byte
			if err := rows.Scan(&startID, &endID, &raw); err != nil {
				rows.Close()
				return 0, fmt.Errorf("failed to scan staged edge: %w", err)
			}
			item, err := decodeProperties(raw)
			if err != nil {
				rows.Close()
				return 0, err
			}
			item["start_id"] = startID
			item["end_id"] = endID
			items = append(items, item)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("failed to fetch staged edges: %w", err)
		}
		if len(items) == 0 {
			break
		}

		body := fmt.Sprintf(
			"WITH %s AS items UNWIND items AS item "+
				"MATCH (src {id: item.start_id}) MATCH (tgt {id: item.end_id}) "+
				"MERGE (src)-[r:%s {id: item.id}]->(tgt) SET %s",
			formatItemsArray(items), label,
			formatSetClauses("r", items, map[string]bool{"start_id": true, "end_id": true}))
		if err := age.ExecCypher(ctx, tx, graph, body); err != nil {
			return 0, fmt.Errorf("failed to merge staged edges of label %q: %w", label, err)
		}

		count += len(items)
		offset += len(items)
	}
	return count, nil
}

// fetchStagedProperties runs a paged staging query returning a JSONB
// properties column and decodes each row into a property bag.
func (s *CopyStaged) fetchStagedProperties(ctx context.Context, tx pgx.Tx, sql, label string, offset int) ([]Properties, error) {
	rows, err := tx.Query(ctx, sql, label, s.pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staged rows: %w", err)
	}
	defer rows.Close()

	var items []Properties
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan staged row: %w", err)
		}
		item, err := decodeProperties(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// decodeProperties decodes a JSONB property blob back into a bag.
// Numbers decode as json.Number so integers wider than float64's 53-bit
// mantissa survive the staging round trip.
func decodeProperties(raw []byte) (Properties, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var props Properties
	if err := dec.Decode(&props); err != nil {
		return nil, fmt.Errorf("failed to decode staged properties: %w", err)
	}
	return props, nil
}
