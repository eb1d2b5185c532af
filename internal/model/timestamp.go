package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the wire format for all timestamps in the catalog file.
const TimestampLayout = "2006-01-02 15:04"

// Timestamp is a custom time type that marshals as "YYYY-MM-DD HH:MM" (UTC).
//
// The zero value marshals as the empty string. Unmarshaling accepts the
// catalog layout and, for tolerance against hand-edited files, RFC 3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp creates a Timestamp truncated to minute precision in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Minute)}
}

// ParseTimestamp parses a string in the catalog layout.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Timestamp{t.UTC()}, nil
}

// MarshalJSON renders the timestamp in the catalog layout, or "" when zero.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(ts.UTC().Format(TimestampLayout))
}

// UnmarshalJSON parses the catalog layout, falling back to RFC 3339.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		ts.Time = time.Time{}
		return nil
	}

	formats := []string{
		TimestampLayout,
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}

	return fmt.Errorf("unable to parse timestamp: %s", s)
}

// String renders the timestamp in the catalog layout.
func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(TimestampLayout)
}
