package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"benchviz/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	run_id TEXT PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS metric_counts (
	run_id TEXT NOT NULL,
	name TEXT NOT NULL,
	count BIGINT NOT NULL,
	PRIMARY KEY (run_id, name)
);
CREATE TABLE IF NOT EXISTS latency_samples (
	run_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	tx_id TEXT NOT NULL,
	start_ts TIMESTAMPTZ NOT NULL,
	end_ts TIMESTAMPTZ NOT NULL,
	latency_seconds DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, kind, tx_id)
);
CREATE TABLE IF NOT EXISTS throughput_buckets (
	run_id TEXT NOT NULL,
	metric TEXT NOT NULL,
	window_size_ms BIGINT NOT NULL,
	window_start_ts TIMESTAMPTZ NOT NULL,
	sum DOUBLE PRECISION NOT NULL,
	sample_count BIGINT NOT NULL,
	PRIMARY KEY (run_id, metric, window_size_ms, window_start_ts)
);
`

// Store provides Postgres persistence for report results.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the result tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutReport replaces every result of a run in one transaction. Rows left from
// an earlier run with the same id are deleted first.
func (s *Store) PutReport(ctx context.Context, report model.Report) error {
	if report.RunID == "" {
		return fmt.Errorf("run id required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO report_runs (run_id, generated_at, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (run_id) DO UPDATE
		SET generated_at = EXCLUDED.generated_at, updated_at = now()
	`, report.RunID, report.GeneratedAt); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	batch := &pgx.Batch{}
	queueClearRun(batch, report.RunID)
	queueMetricCounts(batch, report.RunID, report.MetricCounts)
	queueLatencySamples(batch, report.RunID, report.IBCLatency)
	queueLatencySamples(batch, report.RunID, report.TxLatency)
	queueThroughput(batch, report.RunID, report.Throughput)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("write results: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

var resultTables = []string{"metric_counts", "latency_samples", "throughput_buckets"}

func queueClearRun(batch *pgx.Batch, runID string) {
	for _, table := range resultTables {
		batch.Queue(fmt.Sprintf("DELETE FROM %s WHERE run_id = $1", table), runID)
	}
}

func queueMetricCounts(batch *pgx.Batch, runID string, counts []model.MetricCount) {
	for _, count := range counts {
		batch.Queue(`
			INSERT INTO metric_counts (run_id, name, count)
			VALUES ($1, $2, $3)
			ON CONFLICT (run_id, name)
			DO UPDATE SET count = EXCLUDED.count
		`,
			runID,
			count.Name,
			int64(count.Count),
		)
	}
}

func queueLatencySamples(batch *pgx.Batch, runID string, series model.LatencySeries) {
	for _, sample := range series.Samples {
		batch.Queue(`
			INSERT INTO latency_samples (run_id, kind, tx_id, start_ts, end_ts, latency_seconds)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (run_id, kind, tx_id)
			DO UPDATE SET
				start_ts = EXCLUDED.start_ts,
				end_ts = EXCLUDED.end_ts,
				latency_seconds = EXCLUDED.latency_seconds
		`,
			runID,
			string(series.Kind),
			string(sample.TxID),
			sample.Start,
			sample.End,
			sample.Seconds,
		)
	}
}

func queueThroughput(batch *pgx.Batch, runID string, series model.ThroughputSeries) {
	for _, bucket := range series.Buckets {
		batch.Queue(`
			INSERT INTO throughput_buckets (run_id, metric, window_size_ms, window_start_ts, sum, sample_count)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (run_id, metric, window_size_ms, window_start_ts)
			DO UPDATE SET
				sum = EXCLUDED.sum,
				sample_count = EXCLUDED.sample_count
		`,
			runID,
			series.Metric,
			series.Window.Milliseconds(),
			bucket.Start,
			bucket.Sum,
			int64(bucket.Count),
		)
	}
}
