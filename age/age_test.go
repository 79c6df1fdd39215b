package age

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdent(t *testing.T) {
	valid := []string{"g", "benchmark_graph", "_private", "Graph1", "a_b_c",
		strings.Repeat("a", 63)}
	for _, s := range valid {
		assert.True(t, ValidIdent(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"1graph",
		"my-graph",
		"my graph",
		"graph;drop",
		"gr'aph",
		strings.Repeat("a", 64),
	}
	for _, s := range invalid {
		assert.False(t, ValidIdent(s), "expected %q to be invalid", s)
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Setenv("AGE_HOST", "")
	t.Setenv("AGE_PORT", "")
	t.Setenv("AGE_DATABASE", "")
	t.Setenv("AGE_USER", "")
	t.Setenv("AGE_PASSWORD", "")
	t.Setenv("AGE_GRAPH", "")

	opts := &options{}
	applyDefaults(opts)

	assert.Equal(t, "localhost", opts.host)
	assert.Equal(t, 5433, opts.port)
	assert.Equal(t, "benchmark", opts.database)
	assert.Equal(t, "benchmark", opts.user)
	assert.Equal(t, "benchmark_graph", opts.graphName)
	assert.EqualValues(t, 4, opts.poolSize)
	assert.NotNil(t, opts.logger)
}

func TestApplyDefaultsFromEnv(t *testing.T) {
	t.Setenv("AGE_HOST", "db.internal")
	t.Setenv("AGE_PORT", "5499")
	t.Setenv("AGE_GRAPH", "staging_graph")

	opts := &options{}
	applyDefaults(opts)

	assert.Equal(t, "db.internal", opts.host)
	assert.Equal(t, 5499, opts.port)
	assert.Equal(t, "staging_graph", opts.graphName)
}

func TestOptionsOverrideEnv(t *testing.T) {
	t.Setenv("AGE_HOST", "db.internal")

	opts := &options{}
	WithHost("override")(opts)
	WithPort(5500)(opts)
	applyDefaults(opts)

	assert.Equal(t, "override", opts.host)
	assert.Equal(t, 5500, opts.port)
}

func TestDSN(t *testing.T) {
	opts := &options{
		host:     "h",
		port:     5432,
		database: "d",
		user:     "u",
		password: "p",
	}
	assert.Equal(t, "host=h port=5432 dbname=d user=u password=p", opts.dsn())

	opts.connString = "postgres://u:p@h:5432/d"
	assert.Equal(t, "postgres://u:p@h:5432/d", opts.dsn())
}

func TestCypherSQL(t *testing.T) {
	got := CypherSQL("g", "MATCH (n) RETURN count(n)")
	assert.Equal(t,
		"SELECT * FROM cypher('g', $$ MATCH (n) RETURN count(n) $$) AS (v ag_catalog.agtype)",
		got)
}
