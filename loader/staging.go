package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// copyRows streams rows into a staging table through the textual COPY
// channel. Every field is escaped for the COPY control characters so
// arbitrary property content cannot corrupt row boundaries.
func copyRows(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]string) error {
	var buf strings.Builder
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				buf.WriteByte('\t')
			}
			buf.WriteString(escapeCopy(field))
		}
		buf.WriteByte('\n')
	}

	sql := fmt.Sprintf("COPY %s (%s) FROM STDIN", table, strings.Join(columns, ", "))
	if _, err := tx.Conn().PgConn().CopyFrom(ctx, strings.NewReader(buf.String()), sql); err != nil {
		return fmt.Errorf("copy into %s failed: %w", table, err)
	}
	return nil
}

// dropStaging removes a staging table at the end of an insert call so a
// later call in the same transaction can recreate it.
func dropStaging(ctx context.Context, tx pgx.Tx, table string) error {
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop staging table %s: %w", table, err)
	}
	return nil
}

// stagingDuplicates enforces logical-id uniqueness on a staged batch with
// a set-based check. The in-memory check catches duplicates first; this
// backstop guards the staged rows that actually feed the upsert.
func stagingDuplicates(ctx context.Context, tx pgx.Tx, table, entity string) error {
	rows, err := tx.Query(ctx,
		fmt.Sprintf("SELECT id FROM %s GROUP BY id HAVING COUNT(*) > 1", table))
	if err != nil {
		return fmt.Errorf("duplicate check on %s failed: %w", table, err)
	}
	defer rows.Close()

	var dupes []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("duplicate check on %s failed: %w", table, err)
		}
		dupes = append(dupes, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("duplicate check on %s failed: %w", table, err)
	}

	if len(dupes) > 0 {
		return newIntegrityError(IntegrityDuplicate, entity, dupes)
	}
	return nil
}
