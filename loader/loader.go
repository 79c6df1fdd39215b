package loader

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Properties is the property bag of a node or edge. Values may be
// strings, bools, integers, floats, nil, []any lists, or nested
// map[string]any maps; anything else is serialized through JSON.
type Properties map[string]any

// Node is a node to insert. ID is the caller-assigned logical id used as
// the natural key for idempotent upsert; it must be unique within a batch
// and stable across re-runs.
type Node struct {
	ID         string
	Label      string
	Properties Properties
}

// Edge is an edge to insert. StartID and EndID reference node logical
// ids; both must resolve to existing nodes by the time the batch commits.
type Edge struct {
	ID         string
	Label      string
	StartID    string
	EndID      string
	Properties Properties
}

// Strategy is the contract every loading approach implements.
//
// Both insert operations run against the caller's transaction: the caller
// owns begin/commit, and wrapping a whole multi-label call in one
// transaction makes any single label's failure roll back the entire call.
// Re-invoking with an unchanged batch updates properties in place and
// never duplicates entities.
type Strategy interface {
	// Name returns a short stable identifier for the strategy.
	Name() string

	// Description returns a one-line summary of the approach.
	Description() string

	// InsertNodes upserts the given nodes into the graph, returning the
	// number of records processed.
	InsertNodes(ctx context.Context, tx pgx.Tx, graph string, nodes []Node) (int, error)

	// InsertEdges upserts the given edges into the graph, returning the
	// number of records processed.
	InsertEdges(ctx context.Context, tx pgx.Tx, graph string, edges []Edge) (int, error)
}

// All returns the available strategies ordered slowest to fastest.
func All() []Strategy {
	return []Strategy{
		NewIndividualMerge(),
		NewUnwindMerge(),
		NewCopyStaged(),
		NewDirectSQL(),
	}
}

// ByName returns the strategy with the given name.
func ByName(name string) (Strategy, bool) {
	for _, s := range All() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}
