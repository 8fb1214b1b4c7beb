package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"benchviz/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadTableRows(t *testing.T) {
	path := writeFile(t, "metrics.jsonl", strings.Join([]string{
		`{"ts":"2024-01-01T00:00:00.000Z","type":"counter","name":"tx_submitted","delta":1.00000,"thread":1}`,
		`{"ts":"2024-01-01T00:00:00.500Z","type":"gauge","name":"mempool_size","value":3.0,"thread":2}`,
		``,
		`{"ts":"2024-01-01T00:00:01.000Z","payload":{"kind":"custom"},"thread":1}`,
	}, "\n")+"\n")

	table, err := LoadTable[model.Metric](path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}
	if table.Rows[0].Name != "tx_submitted" || table.Rows[0].DeltaOrZero() != 1 {
		t.Fatalf("row 0 mismatch: %+v", table.Rows[0])
	}
	if v, ok := table.Rows[1].Value.Float64(); !ok || v != 3 {
		t.Fatalf("row 1 mismatch: %+v", table.Rows[1])
	}
	if table.Rows[2].Name != "" || len(table.Rows[2].Payload) == 0 {
		t.Fatalf("row 2 mismatch: %+v", table.Rows[2])
	}

	want := []string{"delta", "name", "payload", "thread", "ts", "type", "value"}
	if got := table.ColumnNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("columns mismatch: %v != %v", got, want)
	}
}

func TestLoadTableMalformedLine(t *testing.T) {
	path := writeFile(t, "ibc_events.jsonl", "{\"event\":\"packet_created\"}\n{not json}\n")

	_, err := LoadTable[model.IBCEvent](path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error should name the line: %v", err)
	}
}

func TestLoadTableToleratesUnusedFieldTypes(t *testing.T) {
	ibcPath := writeFile(t, "ibc_events.jsonl", strings.Join([]string{
		`{"ts":"2024-01-01T00:00:00Z","event":"packet_created","tx_id":"A","sequence":"7"}`,
		`{"ts":"2024-01-01T00:00:01Z","event":"packet_relayed","tx_id":"A","sequence":-1,"src_chain":1,"latency_ms":"slow"}`,
		`{"ts":"2024-01-01T00:00:02Z","event":"ack_received","tx_id":"A","payload":{"memo":"x"},"relayer_id":["r1"]}`,
	}, "\n")+"\n")
	ibc, err := LoadTable[model.IBCEvent](ibcPath)
	if err != nil {
		t.Fatalf("load ibc events: %v", err)
	}
	if ibc.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", ibc.Len())
	}
	if seq, ok := ibc.Rows[0].Sequence.Float64(); !ok || seq != 7 {
		t.Fatalf("quoted sequence should still read as a number: %v", ibc.Rows[0].Sequence)
	}
	if ibc.Rows[1].SrcChain != "1" {
		t.Fatalf("numeric src_chain should keep its text: %q", ibc.Rows[1].SrcChain)
	}
	if _, ok := ibc.Rows[1].LatencyMs.Float64(); ok {
		t.Fatalf("non-numeric latency_ms should not parse")
	}

	metricsPath := writeFile(t, "metrics.jsonl", strings.Join([]string{
		`{"ts":"2024-01-01T00:00:00Z","type":"counter","name":"tx_submitted","delta":1,"thread":"0x7f"}`,
		`{"ts":"2024-01-01T00:00:00Z","type":7,"name":"mempool_size","value":"n/a"}`,
	}, "\n")+"\n")
	metrics, err := LoadTable[model.Metric](metricsPath)
	if err != nil {
		t.Fatalf("load metrics: %v", err)
	}
	if metrics.Rows[0].Thread.String() != "0x7f" || metrics.Rows[0].DeltaOrZero() != 1 {
		t.Fatalf("row 0 mismatch: %+v", metrics.Rows[0])
	}

	txPath := writeFile(t, "transactions.jsonl",
		`{"ts":"2024-01-01T00:00:00Z","event":"included_in_block","tx_id":1,"block_height":"12","payload":{"a":1},"from":null}`+"\n")
	txs, err := LoadTable[model.TxEvent](txPath)
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if h, ok := txs.Rows[0].BlockHeight.Float64(); !ok || h != 12 {
		t.Fatalf("block height mismatch: %v", txs.Rows[0].BlockHeight)
	}
}

func TestLoadTableStrictFields(t *testing.T) {
	loadMetrics := func(path string) error {
		_, err := LoadTable[model.Metric](path)
		return err
	}
	loadTx := func(path string) error {
		_, err := LoadTable[model.TxEvent](path)
		return err
	}

	cases := []struct {
		field string
		line  string
		load  func(string) error
	}{
		{"event", `{"ts":"2024-01-01T00:00:00Z","event":5,"tx_id":"A"}`, loadTx},
		{"tx_id", `{"ts":"2024-01-01T00:00:00Z","event":"created","tx_id":{"id":1}}`, loadTx},
		{"delta", `{"ts":"2024-01-01T00:00:00Z","name":"tx_submitted","delta":"one"}`, loadMetrics},
		{"name", `{"ts":"2024-01-01T00:00:00Z","name":3}`, loadMetrics},
		{"ts", `{"ts":{"at":1},"name":"tx_submitted"}`, loadMetrics},
	}
	for _, tc := range cases {
		path := writeFile(t, "input.jsonl", tc.line+"\n")
		if err := tc.load(path); err == nil {
			t.Fatalf("expected decode error for bad %s", tc.field)
		}
	}
}

func TestLoadTableRejectsNonObjects(t *testing.T) {
	for _, content := range []string{"[1,2]\n", "null\n", "42\n"} {
		path := writeFile(t, "events.jsonl", content)
		if _, err := LoadTable[model.IBCEvent](path); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable[model.Metric](filepath.Join(t.TempDir(), "missing.jsonl"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestTableRequire(t *testing.T) {
	path := writeFile(t, "transactions.jsonl", `{"event":"created","ts":"2024-01-01T00:00:00Z"}`+"\n")
	table, err := LoadTable[model.TxEvent](path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := table.Require("event", "ts"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = table.Require("event", "tx_id")
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected missing column error, got %v", err)
	}
	if !strings.Contains(err.Error(), "tx_id") {
		t.Fatalf("error should name the column: %v", err)
	}

	var empty Table[model.TxEvent]
	if err := empty.Require("tx_id"); err != nil {
		t.Fatalf("empty table should satisfy requirements: %v", err)
	}
}

func TestTableClone(t *testing.T) {
	table := Table[model.Metric]{
		Rows:    []model.Metric{{Name: "a"}},
		Columns: map[string]struct{}{"name": {}},
	}
	clone := table.Clone()
	clone.Rows[0].Name = "b"
	clone.Columns["ts"] = struct{}{}

	if table.Rows[0].Name != "a" {
		t.Fatalf("clone shares rows")
	}
	if table.Has("ts") {
		t.Fatalf("clone shares columns")
	}
}
