// Command agebench benchmarks the bulk-loading strategies against a
// running Apache AGE instance.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/agebench/agebench/age"
	"github.com/agebench/agebench/bench"
	"github.com/agebench/agebench/loader"
)

var (
	flagSizes      string
	flagStrategies string
	flagTimeout    time.Duration
	flagOutput     string
	flagHost       string
	flagPort       int
	flagDatabase   string
	flagUser       string
	flagPassword   string
	flagGraph      string
	flagVerbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "agebench",
		Short: "Benchmark bulk-insert strategies for Apache AGE",
		Long: `agebench times four bulk-loading strategies against a running
Apache AGE instance, from one-MERGE-per-record up to direct writes into
AGE's physical tables, and reports throughput per strategy and batch size.

Connection parameters default to the AGE_HOST, AGE_PORT, AGE_DATABASE,
AGE_USER, AGE_PASSWORD and AGE_GRAPH environment variables.`,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().StringVar(&flagSizes, "sizes", "", "comma-separated batch sizes (default 100,500,1000,5000,10000)")
	root.Flags().StringVar(&flagStrategies, "strategies", "", "comma-separated strategy names or indices (default all)")
	root.Flags().DurationVar(&flagTimeout, "timeout", 5*time.Minute, "per-run timeout")
	root.Flags().StringVar(&flagOutput, "output", "", "write the JSON report to this path")
	root.Flags().StringVar(&flagHost, "host", "", "PostgreSQL host")
	root.Flags().IntVar(&flagPort, "port", 0, "PostgreSQL port")
	root.Flags().StringVar(&flagDatabase, "database", "", "database name")
	root.Flags().StringVar(&flagUser, "user", "", "database user")
	root.Flags().StringVar(&flagPassword, "password", "", "database password")
	root.Flags().StringVar(&flagGraph, "graph", "", "graph name")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sizes, err := parseSizes(flagSizes)
	if err != nil {
		return err
	}
	strategies, err := parseStrategies(flagStrategies)
	if err != nil {
		return err
	}

	store, err := age.New(ctx, storeOptions(logger)...)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := &bench.Runner{
		Store:      store,
		Strategies: strategies,
		Sizes:      sizes,
		Timeout:    flagTimeout,
		Logger:     logger,
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printTable(cmd.OutOrStdout(), report)

	if flagOutput != "" {
		if err := report.WriteJSON(flagOutput); err != nil {
			return err
		}
		logger.Info("report written", slog.String("path", flagOutput))
	}
	return nil
}

func storeOptions(logger *slog.Logger) []age.Option {
	opts := []age.Option{age.WithLogger(logger)}
	if flagHost != "" {
		opts = append(opts, age.WithHost(flagHost))
	}
	if flagPort != 0 {
		opts = append(opts, age.WithPort(flagPort))
	}
	if flagDatabase != "" {
		opts = append(opts, age.WithDatabase(flagDatabase))
	}
	if flagUser != "" {
		opts = append(opts, age.WithUser(flagUser))
	}
	if flagPassword != "" {
		opts = append(opts, age.WithPassword(flagPassword))
	}
	if flagGraph != "" {
		opts = append(opts, age.WithGraphName(flagGraph))
	}
	return opts
}

func parseSizes(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid size %q", part)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// parseStrategies accepts strategy names or zero-based indices into the
// slowest-to-fastest registry order.
func parseStrategies(s string) ([]loader.Strategy, error) {
	if s == "" {
		return nil, nil
	}
	all := loader.All()

	var selected []loader.Strategy
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if idx, err := strconv.Atoi(part); err == nil {
			if idx < 0 || idx >= len(all) {
				return nil, fmt.Errorf("strategy index %d out of range [0,%d]", idx, len(all)-1)
			}
			selected = append(selected, all[idx])
			continue
		}
		strategy, ok := loader.ByName(part)
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q", part)
		}
		selected = append(selected, strategy)
	}
	return selected, nil
}

func printTable(w io.Writer, report *bench.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tSIZE\tNODES/S\tEDGES/S\tVERIFIED\tERROR")
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.0f\t%t\t%s\n",
			r.Strategy, r.Size, r.NodesPerSec, r.EdgesPerSec, r.Verified, r.Error)
	}
	tw.Flush()
}
