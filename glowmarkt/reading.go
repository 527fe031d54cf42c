package glowmarkt

import (
	"encoding/json"
	"time"
)

// Reading is a single meter reading for a resource.
type Reading struct {
	// Start is the beginning of the reading window, always in UTC.
	Start time.Time
	// Period is the length of the reading window.
	Period ReadingPeriod
	// Value is the total usage over the window. It may be negative for
	// cost corrections or exported generation.
	Value float32
}

// End returns the end of the reading window. Month and year windows
// have no fixed length so no end can be derived; ok is false for them.
func (r Reading) End() (time.Time, bool) {
	d, ok := r.Period.Duration()
	if !ok {
		return time.Time{}, false
	}
	return r.Start.Add(d), true
}

// MarshalJSON emits the start, the derived end for fixed-length
// periods, and the value.
func (r Reading) MarshalJSON() ([]byte, error) {
	out := struct {
		Start time.Time  `json:"start"`
		End   *time.Time `json:"end,omitempty"`
		Value float32    `json:"value"`
	}{
		Start: r.Start,
		Value: r.Value,
	}

	if end, ok := r.End(); ok {
		out.End = &end
	}

	return json.Marshal(out)
}

// newReadings converts raw API data points into readings, preserving
// the order the API delivered them in.
func newReadings(entries []readingEntry, period ReadingPeriod) []Reading {
	readings := make([]Reading, len(entries))
	for i, entry := range entries {
		readings[i] = Reading{
			Start:  time.Unix(entry.Timestamp, 0).UTC(),
			Period: period,
			Value:  entry.Value,
		}
	}
	return readings
}
