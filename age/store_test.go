package age_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agebench/agebench/age"
	"github.com/agebench/agebench/internal/testutil/testctr"
)

func newStore(t *testing.T) *age.Store {
	t.Helper()

	connString := testctr.SetupAGE(t)
	ctx := context.Background()

	graph := "test_" + strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	store, err := age.New(ctx,
		age.WithConnString(connString),
		age.WithGraphName(graph),
	)
	require.NoError(t, err)
	require.NoError(t, store.EnsureExtension(ctx))

	t.Cleanup(func() {
		_ = store.DropGraph(context.Background())
		_ = store.Close()
	})
	return store
}

func TestNewRejectsInvalidGraphName(t *testing.T) {
	_, err := age.New(context.Background(), age.WithGraphName("bad-name"))
	require.ErrorIs(t, err, age.ErrInvalidGraphName)
}

func TestEnsureGraph(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	exists, err := store.GraphExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.EnsureGraph(ctx))

	exists, err = store.GraphExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	// Idempotent.
	require.NoError(t, store.EnsureGraph(ctx))
}

func TestCountsAndClean(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureGraph(ctx))

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf("CREATE (n:Person {id: 'p%d'})", i)
		require.NoError(t, age.ExecCypher(ctx, store.Pool(), store.GraphName(), body))
	}
	require.NoError(t, age.ExecCypher(ctx, store.Pool(), store.GraphName(),
		"MATCH (a {id: 'p0'}), (b {id: 'p1'}) CREATE (a)-[:KNOWS]->(b)"))

	nodes, err := store.CountNodes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, nodes)

	edges, err := store.CountEdges(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, edges)

	require.NoError(t, store.CleanGraph(ctx))

	nodes, err = store.CountNodes(ctx)
	require.NoError(t, err)
	assert.Zero(t, nodes)
}

func TestDropGraph(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureGraph(ctx))
	require.NoError(t, store.DropGraph(ctx))

	exists, err := store.GraphExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	// Dropping an absent graph is not an error.
	require.NoError(t, store.DropGraph(ctx))
}

func TestWithTxRollback(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureGraph(ctx))

	boom := fmt.Errorf("boom")
	err := store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := age.ExecCypher(ctx, tx, store.GraphName(), "CREATE (n:Person {id: 'tx'})"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	nodes, err := store.CountNodes(ctx)
	require.NoError(t, err)
	assert.Zero(t, nodes, "rolled-back work must not be visible")
}

func TestLabelInfo(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureGraph(ctx))

	info, err := age.LabelInfo(ctx, store.Pool(), store.GraphName(), "Missing")
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, age.ExecCypher(ctx, store.Pool(), store.GraphName(),
		"CREATE (n:Present {id: 'x'})"))

	info, err = age.LabelInfo(ctx, store.Pool(), store.GraphName(), "Present")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Positive(t, info.ID)
	assert.NotEmpty(t, info.SeqName)
}

func TestQueryCypherInt(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureGraph(ctx))

	n, err := age.QueryCypherInt(ctx, store.Pool(), store.GraphName(),
		"MATCH (n) RETURN count(n)")
	require.NoError(t, err)
	assert.Zero(t, n)
}
