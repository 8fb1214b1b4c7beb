package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"benchviz/internal/config"
	"benchviz/internal/render"
	"benchviz/internal/report"
	"benchviz/internal/storage"
	"benchviz/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "benchviz",
		Short:        "Render benchmark harness logs into PNG charts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runReport,
	}

	root.Flags().String("config", "", "config file path")
	root.Flags().String("metrics", report.DefaultMetricsPath, "metrics JSONL path")
	root.Flags().String("ibc-events", report.DefaultIBCEventsPath, "IBC events JSONL path")
	root.Flags().String("transactions", report.DefaultTransactionPath, "transaction events JSONL path")
	root.Flags().String("out-dir", ".", "directory for the generated charts")
	root.Flags().Int("bins", report.DefaultBins, "histogram bin count")
	root.Flags().String("resample-window", "1s", "throughput resample window (e.g. 1s, 500ms, 1m)")
	root.Flags().String("duplicate-policy", string(report.DuplicateFirst), "repeated tx_id handling (first, last, reject)")
	root.Flags().String("renderer", render.BackendGonum, "chart backend (gonum, gochart)")
	root.Flags().String("summary", "", "optional JSONL summary output path")
	root.Flags().String("pg-dsn", "", "optional Postgres DSN for result export")
	root.Flags().String("run-id", "", "run identifier for exported results (default: start time)")
	root.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return root
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	window, err := time.ParseDuration(cfg.ResampleWindow)
	if err != nil {
		return fmt.Errorf("invalid resample window: %w", err)
	}
	if window < time.Millisecond {
		return fmt.Errorf("resample window must be at least 1ms")
	}
	if cfg.Bins <= 0 {
		return fmt.Errorf("bins must be > 0")
	}

	policy, err := report.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return err
	}

	renderer, err := render.New(cfg.Renderer)
	if err != nil {
		return err
	}

	started := time.Now().UTC()
	runID := cfg.RunID
	if runID == "" {
		runID = started.Format("20060102T150405Z")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []storage.ResultSink
	if cfg.Summary != "" {
		sinks = append(sinks, storage.NewJsonlSummary(cfg.Summary))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}

	pipelineCfg := report.Config{
		MetricsPath:      cfg.Metrics,
		IBCEventsPath:    cfg.IBCEvents,
		TransactionsPath: cfg.Transactions,
		OutDir:           cfg.OutDir,
		Bins:             cfg.Bins,
		ResampleWindow:   window,
		DuplicatePolicy:  policy,
		RunID:            runID,
	}

	logger.Info("report start",
		zap.String("run_id", runID),
		zap.String("metrics", cfg.Metrics),
		zap.String("ibc_events", cfg.IBCEvents),
		zap.String("transactions", cfg.Transactions),
		zap.String("out_dir", cfg.OutDir),
		zap.Int("bins", cfg.Bins),
		zap.Duration("resample_window", window),
		zap.String("duplicate_policy", string(policy)),
		zap.String("renderer", renderer.Name()),
		zap.String("summary", cfg.Summary),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	result, err := report.NewPipeline(pipelineCfg, renderer, logger, sinks...).Run(ctx)
	if err != nil {
		logger.Error("report failed", zap.Error(err))
		return err
	}

	logger.Info("report complete",
		zap.String("run_id", runID),
		zap.Duration("elapsed", time.Since(started)),
	)

	return printOutputs(cmd.OutOrStdout(), result.Outputs)
}

func printOutputs(w io.Writer, outputs []string) error {
	if _, err := fmt.Fprintln(w, "Generated the following plots:"); err != nil {
		return err
	}
	for _, path := range outputs {
		if _, err := fmt.Fprintf(w, "- %s\n", path); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
