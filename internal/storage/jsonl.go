package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"benchviz/internal/model"
)

// JsonlSummary writes the numeric results of a run as JSON lines. The file is
// truncated on every PutReport so identical inputs give identical files.
type JsonlSummary struct {
	path string
	mu   sync.Mutex
}

func NewJsonlSummary(path string) *JsonlSummary {
	return &JsonlSummary{path: path}
}

type metricCountLine struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type latencyStatsLine struct {
	Kind   string  `json:"kind"`
	Series string  `json:"series"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	Max    float64 `json:"max"`
}

type histogramBinLine struct {
	Kind   string  `json:"kind"`
	Series string  `json:"series"`
	Index  int     `json:"index"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

type throughputBucketLine struct {
	Kind          string  `json:"kind"`
	Metric        string  `json:"metric"`
	WindowSeconds float64 `json:"window_seconds"`
	Start         string  `json:"start"`
	Sum           float64 `json:"sum"`
	Count         int     `json:"count"`
}

// PutReport replaces the summary file with the lines for report.
func (s *JsonlSummary) PutReport(_ context.Context, report model.Report) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, line := range summaryLines(report) {
		data, err := json.Marshal(line)
		if err != nil {
			return fmt.Errorf("marshal summary line: %w", err)
		}
		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("write summary line: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}

	return nil
}

func summaryLines(report model.Report) []interface{} {
	lines := make([]interface{}, 0, len(report.MetricCounts)+len(report.Throughput.Buckets)+128)
	for _, count := range report.MetricCounts {
		lines = append(lines, metricCountLine{Kind: "metric_count", Name: count.Name, Count: count.Count})
	}
	for _, series := range []model.LatencySeries{report.IBCLatency, report.TxLatency} {
		stats := series.Stats
		lines = append(lines, latencyStatsLine{
			Kind:   "latency_stats",
			Series: string(series.Kind),
			Count:  stats.Count,
			Min:    stats.Min,
			Mean:   stats.Mean,
			P50:    stats.P50,
			P90:    stats.P90,
			P95:    stats.P95,
			Max:    stats.Max,
		})
		for i, bin := range series.Histogram {
			lines = append(lines, histogramBinLine{
				Kind:   "histogram_bin",
				Series: string(series.Kind),
				Index:  i,
				Min:    bin.Min,
				Max:    bin.Max,
				Count:  bin.Count,
			})
		}
	}
	for _, bucket := range report.Throughput.Buckets {
		lines = append(lines, throughputBucketLine{
			Kind:          "throughput_bucket",
			Metric:        report.Throughput.Metric,
			WindowSeconds: report.Throughput.Window.Seconds(),
			Start:         bucket.Start.UTC().Format(time.RFC3339Nano),
			Sum:           bucket.Sum,
			Count:         bucket.Count,
		})
	}
	return lines
}
