package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a free-form descriptive field. A JSON string is unquoted; any other
// value keeps its raw JSON text, so an unexpected type never fails a load.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
			return nil
		}
	}
	*t = Text(data)
	return nil
}

// Number is a free-form numeric field. It accepts any JSON value and keeps it
// in text form; Float64 reports whether that text is a number.
type Number struct {
	raw string
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*n = Number{raw: strings.TrimSpace(s)}
			return nil
		}
	}
	*n = Number{raw: string(data)}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.raw == "" {
		return []byte("null"), nil
	}
	if _, ok := n.Float64(); ok && json.Valid([]byte(n.raw)) {
		return []byte(n.raw), nil
	}
	return json.Marshal(n.raw)
}

// String returns the raw value.
func (n Number) String() string {
	return n.raw
}

// Float64 parses the value. ok is false when it is absent or not numeric.
func (n Number) Float64() (float64, bool) {
	if n.raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(n.raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
