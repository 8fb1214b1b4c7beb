package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"benchviz/internal/model"
)

// ErrDuplicateID is returned under DuplicateReject when an id repeats.
var ErrDuplicateID = errors.New("duplicate tx_id")

// Pairing names the start and end events of a latency measurement.
type Pairing struct {
	Start string
	End   string
}

var (
	IBCPacketPairing = Pairing{Start: string(model.IBCPacketCreated), End: string(model.IBCAckReceived)}
	TxPairing        = Pairing{Start: string(model.TxCreated), End: string(model.TxIncludedInBlock)}
)

type timedEvent struct {
	id model.TxID
	at time.Time
}

// PairLatencies matches start and end events by id and returns end - start in
// seconds for every id present in both subsets, ordered by id. Ids missing
// either side are dropped. Negative latencies are kept. Every timestamp in
// events is parsed, so a bad ts fails the pairing even on an unrelated row.
func PairLatencies[E model.LifecycleEvent](events []E, pairing Pairing, policy DuplicatePolicy) ([]model.LatencySample, error) {
	policy, err := ParseDuplicatePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	starts := make(map[model.TxID]time.Time)
	ends := make(map[model.TxID]time.Time)
	for i, event := range events {
		ts, ok, err := event.EventTime().Time()
		if err != nil {
			return nil, fmt.Errorf("parse ts of row %d: %w", i+1, err)
		}
		if !ok {
			continue
		}

		var target map[model.TxID]time.Time
		switch event.EventName() {
		case pairing.Start:
			target = starts
		case pairing.End:
			target = ends
		default:
			continue
		}

		id := event.PairID()
		if id == "" {
			continue
		}
		if err := assign(target, timedEvent{id: id, at: ts}, event.EventName(), policy); err != nil {
			return nil, err
		}
	}

	samples := make([]model.LatencySample, 0, len(ends))
	for id, end := range ends {
		start, ok := starts[id]
		if !ok {
			continue
		}
		samples = append(samples, model.LatencySample{
			TxID:    id,
			Start:   start,
			End:     end,
			Seconds: end.Sub(start).Seconds(),
		})
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].TxID < samples[j].TxID
	})
	return samples, nil
}

func assign(target map[model.TxID]time.Time, event timedEvent, name string, policy DuplicatePolicy) error {
	if _, exists := target[event.id]; exists {
		switch policy {
		case DuplicateReject:
			return fmt.Errorf("%w %q for event %q", ErrDuplicateID, event.id, name)
		case DuplicateFirst:
			return nil
		}
	}
	target[event.id] = event.at
	return nil
}

// SortByStart orders samples by start time, then id.
func SortByStart(samples []model.LatencySample) []model.LatencySample {
	out := make([]model.LatencySample, len(samples))
	copy(out, samples)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].TxID < out[j].TxID
	})
	return out
}

// Seconds extracts the latency values of samples.
func Seconds(samples []model.LatencySample) []float64 {
	values := make([]float64, 0, len(samples))
	for _, sample := range samples {
		values = append(values, sample.Seconds)
	}
	return values
}
