package model

import "time"

// LatencyKind identifies which lifecycle a latency series measures.
type LatencyKind string

const (
	LatencyIBC         LatencyKind = "ibc"
	LatencyTransaction LatencyKind = "transaction"
)

// MetricCount is the number of metric lines carrying a given name.
type MetricCount struct {
	Name  string
	Count int
}

// LatencySample is the elapsed time between the start and end events of one id.
type LatencySample struct {
	TxID    TxID
	Start   time.Time
	End     time.Time
	Seconds float64
}

// LatencyStats summarizes a latency series. All values are seconds.
type LatencyStats struct {
	Count int
	Min   float64
	Mean  float64
	P50   float64
	P90   float64
	P95   float64
	Max   float64
}

// HistogramBin is one equal-width bin. Min is inclusive; Max is exclusive
// except for the last bin of a histogram.
type HistogramBin struct {
	Min   float64
	Max   float64
	Count int
}

// LatencySeries is a paired latency series with its derived summaries.
type LatencySeries struct {
	Kind      LatencyKind
	Samples   []LatencySample
	Stats     LatencyStats
	Histogram []HistogramBin
}

// ThroughputBucket is the sum of metric deltas within one resample window.
type ThroughputBucket struct {
	Start time.Time
	Sum   float64
	Count int
}

// ThroughputSeries is a resampled metric.
type ThroughputSeries struct {
	Metric  string
	Window  time.Duration
	Buckets []ThroughputBucket
}

// Report holds every numeric result of one pipeline run.
type Report struct {
	RunID              string
	GeneratedAt        time.Time
	MetricCounts       []MetricCount
	IBCLatency         LatencySeries
	TxLatency          LatencySeries
	Throughput         ThroughputSeries
	IBCLatencyOverTime []LatencySample
}
