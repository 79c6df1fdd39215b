// Package age provides a PostgreSQL connection layer for Apache AGE graphs.
//
// The Store wraps a pgx connection pool whose connections have the AGE
// extension loaded and the ag_catalog search path set, and exposes the
// graph lifecycle operations the loading strategies rely on: graph
// creation and teardown, label catalog lookups, a Cypher call helper,
// and node/edge counts.
//
// Example usage:
//
//	store, err := age.New(ctx,
//		age.WithHost("localhost"),
//		age.WithPort(5433),
//		age.WithGraphName("benchmark_graph"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.EnsureGraph(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Connection defaults are read from the AGE_HOST, AGE_PORT, AGE_DATABASE,
// AGE_USER, AGE_PASSWORD and AGE_GRAPH environment variables.
package age
