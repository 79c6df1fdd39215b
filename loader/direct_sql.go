package loader

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agebench/agebench/age"
)

// DirectSQL writes straight into AGE's physical label tables, bypassing
// Cypher for everything except materializing a brand-new label.
//
// AGE stores each label in its own table inside the graph's schema.
// Node tables carry (id graphid, properties agtype); edge tables add
// (start_id, end_id graphid). DirectSQL resolves labels and identifiers
// itself: rows are staged through the COPY channel, reconciled against
// existing rows by logical id, and new rows get their graphid allocated
// from the label's sequence. No per-row statement runs inside the
// transaction.
type DirectSQL struct{}

// NewDirectSQL creates the direct physical-table strategy.
func NewDirectSQL() *DirectSQL {
	return &DirectSQL{}
}

func (s *DirectSQL) Name() string { return "direct-sql" }

func (s *DirectSQL) Description() string {
	return "Direct INSERT into AGE's physical tables (bypass Cypher)"
}

// InsertNodes upserts nodes with set-based SQL against the per-label
// tables. The whole batch for a label fails before any of its rows
// commit; wrapping the call in one transaction extends that to all
// labels.
func (s *DirectSQL) InsertNodes(ctx context.Context, tx pgx.Tx, graph string, nodes []Node) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	if err := validateNodeLabels(nodes); err != nil {
		return 0, err
	}
	// The whole batch is checked at once, so an id reused across labels
	// and the seed record of a new label are both covered.
	if err := checkDuplicateIDs("node", nodeIDs(nodes)); err != nil {
		return 0, err
	}

	labels, grouped := groupNodesByLabel(nodes)

	count := 0
	for _, label := range labels {
		n, err := s.insertNodeBatch(ctx, tx, graph, label, grouped[label])
		if err != nil {
			return 0, err
		}
		count += n
	}
	return count, nil
}

// insertNodeBatch loads one label's nodes.
func (s *DirectSQL) insertNodeBatch(ctx context.Context, tx pgx.Tx, graph, label string, batch []Node) (int, error) {
	info, err := age.LabelInfo(ctx, tx, graph, label)
	if err != nil {
		return 0, err
	}

	count := 0
	rest := batch
	if info == nil {
		// Materialize the label by inserting the first record through
		// Cypher; AGE creates the label table on first use. The seed
		// lands with that statement and skips the bulk path.
		seed := batch[0]
		props := formatCypherProperties(withID(seed.ID, seed.Properties))
		body := fmt.Sprintf("CREATE (n:%s %s)", label, props)
		if err := age.ExecCypher(ctx, tx, graph, body); err != nil {
			return 0, &SchemaError{Label: label, Err: err}
		}

		info, err = age.LabelInfo(ctx, tx, graph, label)
		if err != nil {
			return 0, err
		}
		if info == nil {
			return 0, &SchemaError{Label: label}
		}

		rest = batch[1:]
		count++
	}

	if len(rest) == 0 {
		return count, nil
	}

	_, err = tx.Exec(ctx, `
		CREATE TEMP TABLE _staging_nodes (
			id TEXT NOT NULL,
			properties JSONB NOT NULL
		) ON COMMIT DROP`)
	if err != nil {
		return 0, fmt.Errorf("failed to create node staging table: %w", err)
	}

	rows := make([][]string, 0, len(rest))
	for _, node := range rest {
		props, err := propertiesJSON(node.ID, node.Properties)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []string{node.ID, props})
	}
	if err := copyRows(ctx, tx, "_staging_nodes", []string{"id", "properties"}, rows); err != nil {
		return 0, err
	}

	if err := stagingDuplicates(ctx, tx, "_staging_nodes", "node"); err != nil {
		return 0, err
	}

	table := qualified(graph, label)

	// Upsert as two set-based statements keyed on the logical id read
	// back through AGE's own property accessor: update rows that already
	// exist, then insert the rest with a freshly allocated graphid.
	update := fmt.Sprintf(`
		UPDATE %s AS t
		SET properties = (s.properties::text)::ag_catalog.agtype
		FROM _staging_nodes AS s
		WHERE ag_catalog.agtype_object_field_text_agtype(
			t.properties, '"id"'::ag_catalog.agtype
		) = s.id`, table)
	if _, err := tx.Exec(ctx, update); err != nil {
		return 0, fmt.Errorf("failed to update existing nodes of label %q: %w", label, err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (id, properties)
		SELECT
			ag_catalog._graphid($1::int, nextval('%s')),
			(s.properties::text)::ag_catalog.agtype
		FROM _staging_nodes AS s
		WHERE NOT EXISTS (
			SELECT 1 FROM %s AS t
			WHERE ag_catalog.agtype_object_field_text_agtype(
				t.properties, '"id"'::ag_catalog.agtype
			) = s.id
		)`, table, qualified(graph, info.SeqName), table)
	if _, err := tx.Exec(ctx, insert, info.ID); err != nil {
		return 0, fmt.Errorf("failed to insert new nodes of label %q: %w", label, err)
	}
	count += len(rest)

	if err := dropStaging(ctx, tx, "_staging_nodes"); err != nil {
		return 0, err
	}
	return count, nil
}

// InsertEdges upserts edges with set-based SQL, resolving both endpoints
// to graphids itself and failing hard on unresolved references.
func (s *DirectSQL) InsertEdges(ctx context.Context, tx pgx.Tx, graph string, edges []Edge) (int, error) {
	if len(edges) == 0 {
		return 0, nil
	}
	if err := validateEdgeLabels(edges); err != nil {
		return 0, err
	}
	if err := checkDuplicateIDs("edge", edgeIDs(edges)); err != nil {
		return 0, err
	}

	labels, grouped := groupEdgesByLabel(edges)

	count := 0
	for _, label := range labels {
		n, err := s.insertEdgeBatch(ctx, tx, graph, label, grouped[label])
		if err != nil {
			return 0, err
		}
		count += n
	}
	return count, nil
}

// insertEdgeBatch loads one label's edges.
func (s *DirectSQL) insertEdgeBatch(ctx context.Context, tx pgx.Tx, graph, label string, batch []Edge) (int, error) {
	info, err := age.LabelInfo(ctx, tx, graph, label)
	if err != nil {
		return 0, err
	}

	count := 0
	rest := batch
	if info == nil {
		seed := batch[0]

		// The seed bypasses staging, so its endpoints get an explicit
		// check here; Cypher MATCH would otherwise create nothing and
		// drop the edge silently.
		missing, err := s.missingEndpoints(ctx, tx, graph, seed.StartID, seed.EndID)
		if err != nil {
			return 0, err
		}
		if len(missing) > 0 {
			return 0, newIntegrityError(IntegrityOrphan, "edge", missing)
		}

		props := formatCypherProperties(withID(seed.ID, seed.Properties))
		body := fmt.Sprintf(
			"MATCH (src {id: '%s'}), (tgt {id: '%s'}) CREATE (src)-[r:%s %s]->(tgt)",
			escapeCypherString(seed.StartID), escapeCypherString(seed.EndID), label, props)
		if err := age.ExecCypher(ctx, tx, graph, body); err != nil {
			return 0, &SchemaError{Label: label, Err: err}
		}

		info, err = age.LabelInfo(ctx, tx, graph, label)
		if err != nil {
			return 0, err
		}
		if info == nil {
			return 0, &SchemaError{Label: label}
		}

		rest = batch[1:]
		count++
	}

	if len(rest) == 0 {
		return count, nil
	}

	_, err = tx.Exec(ctx, `
		CREATE TEMP TABLE _staging_edges (
			id TEXT NOT NULL,
			start_id TEXT NOT NULL,
			end_id TEXT NOT NULL,
			start_graphid ag_catalog.graphid,
			end_graphid ag_catalog.graphid,
			properties JSONB NOT NULL
		) ON COMMIT DROP`)
	if err != nil {
		return 0, fmt.Errorf("failed to create edge staging table: %w", err)
	}

	rows := make([][]string, 0, len(rest))
	for _, edge := range rest {
		props, err := propertiesJSON(edge.ID, edge.Properties)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []string{edge.ID, edge.StartID, edge.EndID, props})
	}
	if err := copyRows(ctx, tx, "_staging_edges",
		[]string{"id", "start_id", "end_id", "properties"}, rows); err != nil {
		return 0, err
	}

	if err := stagingDuplicates(ctx, tx, "_staging_edges", "edge"); err != nil {
		return 0, err
	}

	// Resolve endpoints in two separate single-column joins against the
	// vertex parent table. Joining on both endpoints at once degrades
	// into a cross product when many rows share identical ids.
	vertexTable := qualified(graph, "_ag_label_vertex")
	for _, col := range []struct{ src, dst string }{
		{"start_id", "start_graphid"},
		{"end_id", "end_graphid"},
	} {
		resolve := fmt.Sprintf(`
			UPDATE _staging_edges AS s
			SET %s = v.id
			FROM %s AS v
			WHERE ag_catalog.agtype_object_field_text_agtype(
				v.properties, '"id"'::ag_catalog.agtype
			) = s.%s`, col.dst, vertexTable, col.src)
		if _, err := tx.Exec(ctx, resolve); err != nil {
			return 0, fmt.Errorf("failed to resolve edge endpoints: %w", err)
		}
	}

	if err := s.checkOrphans(ctx, tx); err != nil {
		return 0, err
	}

	table := qualified(graph, label)

	update := fmt.Sprintf(`
		UPDATE %s AS t
		SET properties = (s.properties::text)::ag_catalog.agtype
		FROM _staging_edges AS s
		WHERE ag_catalog.agtype_object_field_text_agtype(
			t.properties, '"id"'::ag_catalog.agtype
		) = s.id`, table)
	if _, err := tx.Exec(ctx, update); err != nil {
		return 0, fmt.Errorf("failed to update existing edges of label %q: %w", label, err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (id, start_id, end_id, properties)
		SELECT
			ag_catalog._graphid($1::int, nextval('%s')),
			s.start_graphid,
			s.end_graphid,
			(s.properties::text)::ag_catalog.agtype
		FROM _staging_edges AS s
		WHERE NOT EXISTS (
			SELECT 1 FROM %s AS e
			WHERE ag_catalog.agtype_object_field_text_agtype(
				e.properties, '"id"'::ag_catalog.agtype
			) = s.id
		)`, table, qualified(graph, info.SeqName), table)
	if _, err := tx.Exec(ctx, insert, info.ID); err != nil {
		return 0, fmt.Errorf("failed to insert new edges of label %q: %w", label, err)
	}
	count += len(rest)

	if err := dropStaging(ctx, tx, "_staging_edges"); err != nil {
		return 0, err
	}
	return count, nil
}

// missingEndpoints returns the node logical ids among the given ones
// that do not resolve to any vertex. Each id is looked up on its own.
func (s *DirectSQL) missingEndpoints(ctx context.Context, tx pgx.Tx, graph string, ids ...string) ([]string, error) {
	lookup := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s AS v
			WHERE ag_catalog.agtype_object_field_text_agtype(
				v.properties, '"id"'::ag_catalog.agtype
			) = $1
		)`, qualified(graph, "_ag_label_vertex"))

	seen := make(map[string]bool, len(ids))
	var missing []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		var exists bool
		if err := tx.QueryRow(ctx, lookup, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("endpoint lookup failed: %w", err)
		}
		if !exists {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// checkOrphans fails the call when any staged edge kept a NULL endpoint
// after resolution, enumerating the distinct missing node ids.
func (s *DirectSQL) checkOrphans(ctx context.Context, tx pgx.Tx) error {
	rows, err := tx.Query(ctx, `
		SELECT start_id, end_id, start_graphid IS NULL, end_graphid IS NULL
		FROM _staging_edges
		WHERE start_graphid IS NULL OR end_graphid IS NULL`)
	if err != nil {
		return fmt.Errorf("orphan check failed: %w", err)
	}
	defer rows.Close()

	missing := make(map[string]bool)
	for rows.Next() {
		var startID, endID string
		var startMissing, endMissing bool
		if err := rows.Scan(&startID, &endID, &startMissing, &endMissing); err != nil {
			return fmt.Errorf("orphan check failed: %w", err)
		}
		if startMissing {
			missing[startID] = true
		}
		if endMissing {
			missing[endID] = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("orphan check failed: %w", err)
	}

	if len(missing) > 0 {
		ids := make([]string, 0, len(missing))
		for id := range missing {
			ids = append(ids, id)
		}
		return newIntegrityError(IntegrityOrphan, "edge", ids)
	}
	return nil
}

// qualified builds a schema-qualified, quoted relation name. Both parts
// have passed identifier validation before reaching this point.
func qualified(graph, name string) string {
	return fmt.Sprintf(`"%s"."%s"`, graph, name)
}
