package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
)

// ErrMissingColumn is returned when a non-empty table never carries a key.
var ErrMissingColumn = errors.New("missing column")

// Table is a fully loaded JSONL file: one decoded row per line plus the union
// of top-level keys seen across all lines.
type Table[T any] struct {
	Rows    []T
	Columns map[string]struct{}
}

// LoadTable reads a JSONL file into memory. Blank lines are skipped; any other
// line that is not a JSON object fails the load.
func LoadTable[T any](path string) (Table[T], error) {
	file, err := os.Open(path)
	if err != nil {
		return Table[T]{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	table := Table[T]{Columns: make(map[string]struct{})}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var keys map[string]json.RawMessage
		if err := json.Unmarshal(line, &keys); err != nil {
			return Table[T]{}, fmt.Errorf("decode %s line %d: %w", path, lineNo, err)
		}
		if keys == nil {
			return Table[T]{}, fmt.Errorf("decode %s line %d: expected a JSON object", path, lineNo)
		}

		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return Table[T]{}, fmt.Errorf("decode %s line %d: %w", path, lineNo, err)
		}

		for key := range keys {
			table.Columns[key] = struct{}{}
		}
		table.Rows = append(table.Rows, row)
	}

	if err := scanner.Err(); err != nil {
		return Table[T]{}, fmt.Errorf("scan %s: %w", path, err)
	}

	return table, nil
}

// Len returns the number of rows.
func (t Table[T]) Len() int {
	return len(t.Rows)
}

// Has reports whether any row carried the key.
func (t Table[T]) Has(column string) bool {
	_, ok := t.Columns[column]
	return ok
}

// ColumnNames returns the sorted column set.
func (t Table[T]) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for name := range t.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Require fails with ErrMissingColumn if the table has rows but none of them
// carried one of the columns. An empty table satisfies every requirement.
func (t Table[T]) Require(columns ...string) error {
	if len(t.Rows) == 0 {
		return nil
	}
	for _, column := range columns {
		if !t.Has(column) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, column)
		}
	}
	return nil
}

// Clone returns a copy that shares no slices or maps with t.
func (t Table[T]) Clone() Table[T] {
	columns := make(map[string]struct{}, len(t.Columns))
	for key := range t.Columns {
		columns[key] = struct{}{}
	}
	return Table[T]{Rows: slices.Clone(t.Rows), Columns: columns}
}
