// Package bench times the loading strategies against a live AGE store
// and collects comparable results.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agebench/agebench/age"
	"github.com/agebench/agebench/datagen"
	"github.com/agebench/agebench/loader"
)

// DefaultSizes are the batch sizes a run covers when none are given.
var DefaultSizes = []int{100, 500, 1000, 5000, 10000}

// Runner executes every (strategy, size) combination against the store's
// graph, rebuilding the graph between runs so each measurement starts
// from an empty graph.
type Runner struct {
	Store      *age.Store
	Strategies []loader.Strategy
	Sizes      []int

	// Timeout bounds one (strategy, size) run; zero means no bound. A
	// run that exceeds it is recorded as failed and its transaction
	// aborts uncommitted.
	Timeout time.Duration

	Logger *slog.Logger
}

// Run executes the benchmark matrix and returns the collected report.
// Infrastructure failures (graph teardown, connection loss) abort the
// run; a strategy failure is recorded in its result and the run
// continues.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	strategies := r.Strategies
	if len(strategies) == 0 {
		strategies = loader.All()
	}
	sizes := r.Sizes
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report := NewReport()
	for _, strategy := range strategies {
		for _, size := range sizes {
			logger.Info("running benchmark",
				slog.String("strategy", strategy.Name()),
				slog.Int("size", size))

			result, err := r.runOne(ctx, strategy, size)
			if err != nil {
				return nil, err
			}
			report.Results = append(report.Results, *result)

			if result.Error != "" {
				logger.Warn("benchmark run failed",
					slog.String("strategy", strategy.Name()),
					slog.Int("size", size),
					slog.String("error", result.Error))
			}
		}
	}
	return report, nil
}

// runOne measures a single strategy at a single size.
func (r *Runner) runOne(ctx context.Context, strategy loader.Strategy, size int) (*Result, error) {
	if err := r.Store.DropGraph(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset graph: %w", err)
	}
	if err := r.Store.EnsureGraph(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset graph: %w", err)
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	nodes, edges := datagen.Chain(size)
	result := &Result{Strategy: strategy.Name(), Size: size}

	graph := r.Store.GraphName()

	start := time.Now()
	err := r.Store.WithTx(runCtx, func(tx pgx.Tx) error {
		_, err := strategy.InsertNodes(runCtx, tx, graph, nodes)
		return err
	})
	result.NodeSeconds = time.Since(start).Seconds()
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	start = time.Now()
	err = r.Store.WithTx(runCtx, func(tx pgx.Tx) error {
		_, err := strategy.InsertEdges(runCtx, tx, graph, edges)
		return err
	})
	result.EdgeSeconds = time.Since(start).Seconds()
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	if result.NodeSeconds > 0 {
		result.NodesPerSec = float64(size) / result.NodeSeconds
	}
	if result.EdgeSeconds > 0 {
		result.EdgesPerSec = float64(len(edges)) / result.EdgeSeconds
	}

	// Verify the strategy actually produced the expected graph.
	nodeCount, err := r.Store.CountNodes(ctx)
	if err != nil {
		return nil, err
	}
	edgeCount, err := r.Store.CountEdges(ctx)
	if err != nil {
		return nil, err
	}
	result.Verified = nodeCount == int64(size) && edgeCount == int64(len(edges))
	if !result.Verified {
		result.Error = fmt.Sprintf("count mismatch: %d nodes (want %d), %d edges (want %d)",
			nodeCount, size, edgeCount, len(edges))
	}

	return result, nil
}
