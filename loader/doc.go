// Package loader implements bulk-loading strategies for Apache AGE graphs.
//
// A Strategy ingests batches of nodes and edges into a graph inside a
// caller-supplied transaction. All strategies implement the same contract:
// upserts are idempotent keyed on the caller-assigned logical id, a call
// either applies the whole batch or fails without visible effect, and the
// returned count is the number of records processed (updates included).
//
// Four strategies are provided, from slowest to fastest:
//
//   - IndividualMerge: one Cypher MERGE per record.
//   - UnwindMerge: one Cypher UNWIND MERGE per label.
//   - CopyStaged: COPY into a staging table, then paged UNWIND MERGE.
//   - DirectSQL: COPY into a staging table, then set-based INSERT/UPDATE
//     directly against AGE's physical label tables, bypassing Cypher.
//
// The strategies differ only in performance; correctness-relevant behavior
// is identical across all four.
package loader
