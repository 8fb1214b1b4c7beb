package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"benchviz/internal/model"
	"benchviz/internal/render"
	"benchviz/internal/storage"
)

// Result is what a pipeline run produced.
type Result struct {
	Outputs []string
	Report  model.Report
}

// Pipeline loads the three harness logs and renders the report charts.
type Pipeline struct {
	cfg      Config
	renderer render.Renderer
	sinks    []storage.ResultSink
	logger   *zap.Logger
	now      func() time.Time
}

func NewPipeline(cfg Config, renderer render.Renderer, logger *zap.Logger, sinks ...storage.ResultSink) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = render.NewGonum()
	}

	return &Pipeline{
		cfg:      cfg,
		renderer: renderer,
		sinks:    sinks,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes the loader and the three reporters in order. The first error
// aborts the run; charts written before it stay on disk.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if err := p.cfg.validate(); err != nil {
		return Result{}, err
	}

	metrics, err := storage.LoadTable[model.Metric](p.cfg.MetricsPath)
	if err != nil {
		return Result{}, fmt.Errorf("load metrics: %w", err)
	}
	ibcEvents, err := storage.LoadTable[model.IBCEvent](p.cfg.IBCEventsPath)
	if err != nil {
		return Result{}, fmt.Errorf("load ibc events: %w", err)
	}
	txEvents, err := storage.LoadTable[model.TxEvent](p.cfg.TransactionsPath)
	if err != nil {
		return Result{}, fmt.Errorf("load transactions: %w", err)
	}

	p.logger.Info("inputs loaded",
		zap.String("metrics", p.cfg.MetricsPath),
		zap.Int("metric_rows", metrics.Len()),
		zap.String("ibc_events", p.cfg.IBCEventsPath),
		zap.Int("ibc_rows", ibcEvents.Len()),
		zap.String("transactions", p.cfg.TransactionsPath),
		zap.Int("tx_rows", txEvents.Len()),
	)

	report := model.Report{RunID: p.cfg.RunID, GeneratedAt: p.now().UTC()}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	report.MetricCounts, err = p.AggregateMetrics(metrics.Clone())
	if err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	report.IBCLatency, report.TxLatency, err = p.LatencyDistribution(ibcEvents.Clone(), txEvents.Clone())
	if err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	report.Throughput, report.IBCLatencyOverTime, err = p.ThroughputAndLatency(metrics.Clone(), ibcEvents.Clone())
	if err != nil {
		return Result{}, err
	}

	for _, sink := range p.sinks {
		if err := sink.PutReport(ctx, report); err != nil {
			return Result{}, fmt.Errorf("export results: %w", err)
		}
	}

	return Result{Outputs: p.cfg.OutputPaths(), Report: report}, nil
}

// AggregateMetrics counts metric names and renders the bar chart.
func (p *Pipeline) AggregateMetrics(metrics storage.Table[model.Metric]) ([]model.MetricCount, error) {
	if err := metrics.Require("name"); err != nil {
		return nil, fmt.Errorf("aggregate metrics: %w", err)
	}

	counts := CountByName(metrics.Rows)
	bars := make([]render.Bar, 0, len(counts))
	for _, count := range counts {
		bars = append(bars, render.Bar{Label: count.Name, Value: float64(count.Count)})
	}

	path := p.cfg.OutputPath(AggregateMetricsFile)
	err := p.renderer.BarChart(path, render.BarChart{
		Title:         "Aggregate Metrics",
		XLabel:        "Metric Name",
		YLabel:        "Count",
		Bars:          bars,
		LabelRotation: 45,
		Size:          render.SizeWide,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate metrics: %w", err)
	}

	p.logger.Info("aggregate metrics rendered", zap.String("out", path), zap.Int("names", len(counts)))
	return counts, nil
}

// LatencyDistribution pairs IBC packet and transaction events and renders
// one latency histogram for each.
func (p *Pipeline) LatencyDistribution(ibcEvents storage.Table[model.IBCEvent], txEvents storage.Table[model.TxEvent]) (model.LatencySeries, model.LatencySeries, error) {
	if err := ibcEvents.Require("event", "tx_id", "ts"); err != nil {
		return model.LatencySeries{}, model.LatencySeries{}, fmt.Errorf("ibc latency: %w", err)
	}
	if err := txEvents.Require("event", "tx_id", "ts"); err != nil {
		return model.LatencySeries{}, model.LatencySeries{}, fmt.Errorf("transaction latency: %w", err)
	}

	p.logUnknown(model.LatencyIBC, countUnknown(ibcEvents.Rows, func(e model.IBCEvent) bool { return e.Event.Known() }))
	p.logUnknown(model.LatencyTransaction, countUnknown(txEvents.Rows, func(e model.TxEvent) bool { return e.Event.Known() }))

	ibcSamples, err := PairLatencies(ibcEvents.Rows, IBCPacketPairing, p.cfg.DuplicatePolicy)
	if err != nil {
		return model.LatencySeries{}, model.LatencySeries{}, fmt.Errorf("ibc latency: %w", err)
	}
	txSamples, err := PairLatencies(txEvents.Rows, TxPairing, p.cfg.DuplicatePolicy)
	if err != nil {
		return model.LatencySeries{}, model.LatencySeries{}, fmt.Errorf("transaction latency: %w", err)
	}

	ibc, err := p.renderLatency(model.LatencyIBC, ibcSamples, IBCLatencyFile, "IBC Packet Latency Distribution", "IBC Packet Latency")
	if err != nil {
		return model.LatencySeries{}, model.LatencySeries{}, err
	}
	tx, err := p.renderLatency(model.LatencyTransaction, txSamples, TxLatencyFile, "Transaction Latency Distribution", "Transaction Latency")
	if err != nil {
		return model.LatencySeries{}, model.LatencySeries{}, err
	}
	return ibc, tx, nil
}

// logUnknown notes rows whose event name the harness never emits. They are
// never paired.
func (p *Pipeline) logUnknown(kind model.LatencyKind, rows int) {
	if rows == 0 {
		return
	}
	p.logger.Debug("unrecognized events", zap.String("kind", string(kind)), zap.Int("rows", rows))
}

func countUnknown[T any](rows []T, known func(T) bool) int {
	n := 0
	for _, row := range rows {
		if !known(row) {
			n++
		}
	}
	return n
}

func (p *Pipeline) renderLatency(kind model.LatencyKind, samples []model.LatencySample, file, title, legend string) (model.LatencySeries, error) {
	values := Seconds(samples)
	bins, err := NewHistogram(values, p.cfg.Bins)
	if err != nil {
		return model.LatencySeries{}, fmt.Errorf("%s histogram: %w", kind, err)
	}

	path := p.cfg.OutputPath(file)
	err = p.renderer.Histogram(path, render.Histogram{
		Title:  title,
		XLabel: "Latency (seconds)",
		YLabel: "Frequency",
		Legend: legend,
		Bins:   bins,
		Grid:   true,
		Size:   render.SizeShort,
	})
	if err != nil {
		return model.LatencySeries{}, fmt.Errorf("%s latency: %w", kind, err)
	}

	stats := Summarize(values)
	p.logger.Info("latency distribution rendered",
		zap.String("kind", string(kind)),
		zap.String("out", path),
		zap.Int("pairs", stats.Count),
		zap.Float64("min", stats.Min),
		zap.Float64("mean", stats.Mean),
		zap.Float64("p50", stats.P50),
		zap.Float64("p95", stats.P95),
		zap.Float64("max", stats.Max),
	)

	return model.LatencySeries{Kind: kind, Samples: samples, Stats: stats, Histogram: bins}, nil
}

// ThroughputAndLatency renders resampled tx_submitted throughput and IBC
// packet latency against packet creation time.
func (p *Pipeline) ThroughputAndLatency(metrics storage.Table[model.Metric], ibcEvents storage.Table[model.IBCEvent]) (model.ThroughputSeries, []model.LatencySample, error) {
	if err := metrics.Require("name", "ts", "delta"); err != nil {
		return model.ThroughputSeries{}, nil, fmt.Errorf("throughput: %w", err)
	}

	buckets, err := Resample(metrics.Rows, model.MetricTxSubmitted, p.cfg.ResampleWindow)
	if err != nil {
		return model.ThroughputSeries{}, nil, fmt.Errorf("throughput: %w", err)
	}

	points := make([]render.Point, 0, len(buckets))
	for _, bucket := range buckets {
		points = append(points, render.Point{Time: bucket.Start, Value: bucket.Sum})
	}

	throughputPath := p.cfg.OutputPath(ThroughputFile)
	err = p.renderer.TimeSeries(throughputPath, render.TimeSeries{
		Title:  "Transaction Throughput (tx/sec)",
		XLabel: "Time",
		YLabel: "Transactions per Second",
		Points: points,
		Grid:   true,
		Size:   render.SizeShort,
	})
	if err != nil {
		return model.ThroughputSeries{}, nil, fmt.Errorf("throughput: %w", err)
	}
	p.logger.Info("throughput rendered",
		zap.String("out", throughputPath),
		zap.Int("buckets", len(buckets)),
		zap.Duration("window", p.cfg.ResampleWindow),
	)

	if err := ibcEvents.Require("event", "tx_id", "ts"); err != nil {
		return model.ThroughputSeries{}, nil, fmt.Errorf("latency over time: %w", err)
	}
	samples, err := PairLatencies(ibcEvents.Rows, IBCPacketPairing, p.cfg.DuplicatePolicy)
	if err != nil {
		return model.ThroughputSeries{}, nil, fmt.Errorf("latency over time: %w", err)
	}
	samples = SortByStart(samples)

	latencyPoints := make([]render.Point, 0, len(samples))
	for _, sample := range samples {
		latencyPoints = append(latencyPoints, render.Point{Time: sample.Start, Value: sample.Seconds})
	}

	latencyPath := p.cfg.OutputPath(LatencyOverTimeFile)
	err = p.renderer.TimeSeries(latencyPath, render.TimeSeries{
		Title:   "IBC Packet Latency Over Time",
		XLabel:  "Time",
		YLabel:  "Latency (seconds)",
		Points:  latencyPoints,
		Markers: true,
		Grid:    true,
		Size:    render.SizeShort,
	})
	if err != nil {
		return model.ThroughputSeries{}, nil, fmt.Errorf("latency over time: %w", err)
	}
	p.logger.Info("latency over time rendered", zap.String("out", latencyPath), zap.Int("pairs", len(samples)))

	throughput := model.ThroughputSeries{
		Metric:  model.MetricTxSubmitted,
		Window:  p.cfg.ResampleWindow,
		Buckets: buckets,
	}
	return throughput, samples, nil
}
