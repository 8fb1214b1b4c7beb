package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp keeps the raw "ts" value of a log line. It is parsed on demand so
// that a bad value only fails the stage that reads it.
type Timestamp struct {
	raw     string
	numeric bool
}

// NewTimestamp returns a Timestamp holding t in RFC3339 form.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{raw: t.UTC().Format(time.RFC3339Nano)}
}

// IsZero reports whether the value was absent, null or empty.
func (t Timestamp) IsZero() bool {
	return t.raw == ""
}

// String returns the raw value.
func (t Timestamp) String() string {
	return t.raw
}

// Time parses the timestamp. ok is false when the value is absent.
func (t Timestamp) Time() (tm time.Time, ok bool, err error) {
	if t.IsZero() {
		return time.Time{}, false, nil
	}
	if t.numeric {
		tm, err = parseUnixSeconds(t.raw)
		if err != nil {
			return time.Time{}, false, err
		}
		return tm, true, nil
	}
	tm, err = ParseTime(t.raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return tm, true, nil
}

// ParseTime parses an ISO-8601 style timestamp. Values without a zone are UTC.
func ParseTime(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	for _, layout := range timestampLayouts {
		if tm, err := time.Parse(layout, input); err == nil {
			return tm.UTC(), nil
		}
	}
	if isNumeric(input) {
		return parseUnixSeconds(input)
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", input)
}

func parseUnixSeconds(input string) (time.Time, error) {
	val, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse unix seconds %q: %w", input, err)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return time.Time{}, fmt.Errorf("invalid unix seconds %q", input)
	}
	sec, frac := math.Modf(val)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

func isNumeric(input string) bool {
	_, err := strconv.ParseFloat(input, 64)
	return err == nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.numeric {
		return []byte(t.raw), nil
	}
	return json.Marshal(t.raw)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp{raw: strings.TrimSpace(s)}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ts must be a string or number: %w", err)
	}
	*t = Timestamp{raw: n.String(), numeric: true}
	return nil
}
