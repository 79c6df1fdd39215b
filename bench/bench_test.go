package bench_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agebench/agebench/age"
	"github.com/agebench/agebench/bench"
	"github.com/agebench/agebench/internal/testutil/testctr"
	"github.com/agebench/agebench/loader"
)

func TestRunnerSmallMatrix(t *testing.T) {
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

	direct, ok := loader.ByName("direct-sql")
	require.True(t, ok)

	runner := &bench.Runner{
		Store:      store,
		Strategies: []loader.Strategy{direct},
		Sizes:      []int{5, 10},
		Timeout:    time.Minute,
		Logger:     slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	}

	report, err := runner.Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	for _, result := range report.Results {
		assert.Equal(t, "direct-sql", result.Strategy)
		assert.Empty(t, result.Error)
		assert.True(t, result.Verified)
		assert.Positive(t, result.NodesPerSec)
		assert.Positive(t, result.EdgesPerSec)
	}
	assert.Equal(t, 5, report.Results[0].Size)
	assert.Equal(t, 10, report.Results[1].Size)
}

// A run that exceeds the timeout is recorded as failed and its
// transaction aborts, leaving the graph empty.
func TestRunnerTimeoutAbortsRun(t *testing.T) {
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

	direct, ok := loader.ByName("direct-sql")
	require.True(t, ok)

	runner := &bench.Runner{
		Store:      store,
		Strategies: []loader.Strategy{direct},
		Sizes:      []int{100},
		Timeout:    time.Nanosecond,
		Logger:     slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	}

	report, err := runner.Run(ctx)
	require.NoError(t, err, "a timed-out run is a result, not a harness failure")
	require.Len(t, report.Results, 1)

	result := report.Results[0]
	assert.NotEmpty(t, result.Error)
	assert.False(t, result.Verified)

	nodes, err := store.CountNodes(ctx)
	require.NoError(t, err)
	assert.Zero(t, nodes, "aborted transaction must leave no rows behind")
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
