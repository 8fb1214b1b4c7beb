package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestIBCEventIgnoresUnknownKeys(t *testing.T) {
	line := `{"ts":"2024-01-01T00:00:00.250Z","event":"packet_created","tx_id":"abc","src_chain":"A","dst_chain":"B","sequence":7,"extra":{"nested":true}}`

	var event IBCEvent
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if event.Event != IBCPacketCreated || event.TxID != "abc" || event.SrcChain != "A" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if seq, ok := event.Sequence.Float64(); !ok || seq != 7 {
		t.Fatalf("sequence mismatch: %v", event.Sequence)
	}
	if !event.Event.Known() {
		t.Fatalf("packet_created should be known")
	}

	ts, ok, err := event.TS.Time()
	if err != nil || !ok {
		t.Fatalf("parse ts: ok=%v err=%v", ok, err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 250_000_000, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("ts mismatch: %v != %v", ts, want)
	}
}

func TestTxIDAcceptsNumbers(t *testing.T) {
	var event TxEvent
	if err := json.Unmarshal([]byte(`{"event":"created","tx_id":42,"ts":"2024-01-01T00:00:00Z"}`), &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if event.TxID != "42" {
		t.Fatalf("tx_id mismatch: %q", event.TxID)
	}
	if event.PairID() != "42" || event.EventName() != "created" {
		t.Fatalf("accessor mismatch: %q %q", event.PairID(), event.EventName())
	}
}

func TestTxIDRejectsObjects(t *testing.T) {
	var event TxEvent
	if err := json.Unmarshal([]byte(`{"tx_id":{"a":1}}`), &event); err == nil {
		t.Fatalf("expected error for object tx_id")
	}
}

func TestEventTypeKnown(t *testing.T) {
	if IBCEventType("packet_lost").Known() {
		t.Fatalf("packet_lost should not be known")
	}
	if !TxIncludedInBlock.Known() {
		t.Fatalf("included_in_block should be known")
	}
	if TxEventType("finalized").Known() {
		t.Fatalf("finalized should not be known")
	}
}

func TestMetricDelta(t *testing.T) {
	var m Metric
	if err := json.Unmarshal([]byte(`{"ts":"2024-01-01T00:00:00Z","type":"counter","name":"tx_submitted","delta":2.0,"thread":18446744073709551615}`), &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if m.DeltaOrZero() != 2 {
		t.Fatalf("delta mismatch: %v", m.DeltaOrZero())
	}

	var gauge Metric
	if err := json.Unmarshal([]byte(`{"type":"gauge","name":"mempool_size","value":10}`), &gauge); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if gauge.DeltaOrZero() != 0 {
		t.Fatalf("missing delta should be zero, got %v", gauge.DeltaOrZero())
	}
}
