package model

import (
	"encoding/json"
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing collector timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats collectors emit. Timestamps
// without a zone are read as UTC. The bool is false when nothing matched.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timestamp is a point in time that may have failed to parse. An unparseable
// value keeps its raw text so it survives a load/save round-trip.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// NewTimestamp wraps a valid time.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// TimestampFrom parses raw. It returns nil for empty input and an invalid
// Timestamp for text that does not parse.
func TimestampFrom(raw string) *Timestamp {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, ok := ParseTimestamp(raw); ok {
		return &Timestamp{Time: t}
	}
	return &Timestamp{Raw: raw}
}

// Valid reports whether the timestamp holds a parsed time.
func (t *Timestamp) Valid() bool {
	return t != nil && !t.Time.IsZero()
}

// String returns RFC3339 for valid timestamps and the raw text otherwise.
func (t *Timestamp) String() string {
	if t == nil {
		return ""
	}
	if t.Valid() {
		return t.Time.Format(time.RFC3339)
	}
	return t.Raw
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Time.IsZero() {
		return json.Marshal(t.Time.Format(time.RFC3339Nano))
	}
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	return []byte("null"), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Non-string values (numbers, objects) are kept as unparseable text.
		*t = Timestamp{Raw: strings.TrimSpace(string(data))}
		return nil
	}
	if parsed := TimestampFrom(s); parsed != nil {
		*t = *parsed
		return nil
	}
	*t = Timestamp{}
	return nil
}
