package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Output file names, written under Config.OutDir.
const (
	AggregateMetricsFile   = "aggregate_metrics.png"
	IBCLatencyFile         = "ibc_latency_distribution.png"
	TxLatencyFile          = "transaction_latency_distribution.png"
	ThroughputFile         = "throughput.png"
	LatencyOverTimeFile    = "latency_over_time.png"
	DefaultBins            = 50
	DefaultResampleWindow  = time.Second
	DefaultMetricsPath     = "metrics.jsonl"
	DefaultIBCEventsPath   = "ibc_events.jsonl"
	DefaultTransactionPath = "transactions.jsonl"
)

// DuplicatePolicy decides which event wins when an id repeats within the
// start or end subset of a latency pairing.
type DuplicatePolicy string

const (
	DuplicateFirst  DuplicatePolicy = "first"
	DuplicateLast   DuplicatePolicy = "last"
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy validates a policy name. Empty means DuplicateFirst.
func ParseDuplicatePolicy(input string) (DuplicatePolicy, error) {
	switch policy := DuplicatePolicy(strings.ToLower(strings.TrimSpace(input))); policy {
	case "":
		return DuplicateFirst, nil
	case DuplicateFirst, DuplicateLast, DuplicateReject:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want first, last or reject)", input)
	}
}

// Config controls a pipeline run.
type Config struct {
	MetricsPath      string
	IBCEventsPath    string
	TransactionsPath string
	OutDir           string
	Bins             int
	ResampleWindow   time.Duration
	DuplicatePolicy  DuplicatePolicy
	RunID            string
}

// DefaultConfig reproduces the historical fixed paths and constants.
func DefaultConfig() Config {
	return Config{
		MetricsPath:      DefaultMetricsPath,
		IBCEventsPath:    DefaultIBCEventsPath,
		TransactionsPath: DefaultTransactionPath,
		OutDir:           ".",
		Bins:             DefaultBins,
		ResampleWindow:   DefaultResampleWindow,
		DuplicatePolicy:  DuplicateFirst,
	}
}

// OutputPath joins an output file name with the output directory.
func (c Config) OutputPath(name string) string {
	if c.OutDir == "" {
		return name
	}
	return filepath.Join(c.OutDir, name)
}

// OutputPaths lists the five charts in the order they are written.
func (c Config) OutputPaths() []string {
	names := []string{AggregateMetricsFile, IBCLatencyFile, TxLatencyFile, ThroughputFile, LatencyOverTimeFile}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, c.OutputPath(name))
	}
	return paths
}

func (c Config) validate() error {
	if c.MetricsPath == "" || c.IBCEventsPath == "" || c.TransactionsPath == "" {
		return fmt.Errorf("input paths are required")
	}
	if c.Bins <= 0 {
		return fmt.Errorf("bins must be > 0")
	}
	if c.ResampleWindow <= 0 {
		return fmt.Errorf("resample window must be positive")
	}
	if _, err := ParseDuplicatePolicy(string(c.DuplicatePolicy)); err != nil {
		return err
	}
	return nil
}
