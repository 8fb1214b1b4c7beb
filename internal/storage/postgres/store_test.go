package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"benchviz/internal/model"
)

func TestQueueResults(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	batch := &pgx.Batch{}

	queueMetricCounts(batch, "run", []model.MetricCount{{Name: "tx_submitted", Count: 3}, {Name: "mempool_size", Count: 1}})
	queueLatencySamples(batch, "run", model.LatencySeries{
		Kind:    model.LatencyIBC,
		Samples: []model.LatencySample{{TxID: "1", Start: start, End: start.Add(5 * time.Second), Seconds: 5}},
	})
	queueLatencySamples(batch, "run", model.LatencySeries{Kind: model.LatencyTransaction})
	queueThroughput(batch, "run", model.ThroughputSeries{
		Metric:  model.MetricTxSubmitted,
		Window:  time.Second,
		Buckets: []model.ThroughputBucket{{Start: start, Sum: 3, Count: 3}},
	})

	if batch.Len() != 4 {
		t.Fatalf("expected 4 queued statements, got %d", batch.Len())
	}
}

func TestQueueClearRunPrecedesInserts(t *testing.T) {
	batch := &pgx.Batch{}
	queueClearRun(batch, "run-1")
	queueMetricCounts(batch, "run-1", []model.MetricCount{{Name: "tx_submitted", Count: 1}})

	if batch.Len() != len(resultTables)+1 {
		t.Fatalf("unexpected statement count: %d", batch.Len())
	}
	for i, table := range resultTables {
		query := batch.QueuedQueries[i]
		if !strings.HasPrefix(query.SQL, "DELETE FROM "+table+" ") {
			t.Fatalf("statement %d should clear %s: %s", i, table, query.SQL)
		}
		if len(query.Arguments) != 1 || query.Arguments[0] != "run-1" {
			t.Fatalf("statement %d arguments: %v", i, query.Arguments)
		}
	}
	if last := batch.QueuedQueries[len(resultTables)].SQL; !strings.Contains(last, "INSERT INTO metric_counts") {
		t.Fatalf("insert should follow the deletes: %s", last)
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
