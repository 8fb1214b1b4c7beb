package model

import "encoding/json"

// MetricCounter is the metric type of lines that carry a delta.
const MetricCounter = "counter"

// MetricTxSubmitted is the counter incremented for each submitted transaction.
const MetricTxSubmitted = "tx_submitted"

// Metric is one line of metrics.jsonl. Counters carry Delta, gauges and
// histograms carry Value; free-form events carry only Payload. Only TS, Name
// and Delta are decoded strictly.
type Metric struct {
	TS      Timestamp       `json:"ts"`
	Type    Text            `json:"type,omitempty"`
	Name    string          `json:"name,omitempty"`
	Delta   *float64        `json:"delta,omitempty"`
	Value   Number          `json:"value"`
	Thread  Number          `json:"thread"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DeltaOrZero returns the counter delta, treating a missing value as zero.
func (m Metric) DeltaOrZero() float64 {
	if m.Delta == nil {
		return 0
	}
	return *m.Delta
}
