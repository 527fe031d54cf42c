// Package influx converts meter readings into tagged measurements in
// InfluxDB line protocol form.
package influx

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Measurement is a single tagged data point.
type Measurement struct {
	// Name of the measurement series.
	Name string
	// Timestamp in nanoseconds since the epoch, UTC.
	Timestamp int64
	// Tags attached to the point.
	Tags map[string]string
	// Fields holds the point's values. Every value must be finite.
	Fields map[string]float64
}

// NewMeasurement creates a measurement at the given instant with a copy
// of the supplied tags.
func NewMeasurement(name string, timestamp time.Time, tags map[string]string) *Measurement {
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}

	return &Measurement{
		Name:      name,
		Timestamp: timestamp.UTC().UnixNano(),
		Tags:      copied,
		Fields:    make(map[string]float64),
	}
}

// AddField records a field value. A non-finite value indicates a bug in
// the caller and panics.
func (m *Measurement) AddField(key string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		panic(fmt.Sprintf("non-finite value %v for field %s", value, key))
	}
	m.Fields[key] = value
}

// allZero reports whether every field of the measurement is exactly 0.
func (m *Measurement) allZero() bool {
	for _, v := range m.Fields {
		if v != 0 {
			return false
		}
	}
	return true
}

// String renders the measurement in line protocol:
//
//	name[,tag=value,...] field=value[,...] timestamp
//
// Tags and fields appear in sorted key order. A measurement with no
// fields is invalid in line protocol and panics.
func (m *Measurement) String() string {
	if len(m.Fields) == 0 {
		panic("measurement has no fields")
	}

	var b strings.Builder
	b.WriteString(m.Name)

	for _, k := range sortedKeys(m.Tags) {
		b.WriteByte(',')
		b.WriteString(escape(k))
		b.WriteByte('=')
		b.WriteString(escape(m.Tags[k]))
	}

	b.WriteByte(' ')

	fieldKeys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		fieldKeys = append(fieldKeys, k)
	}
	sort.Strings(fieldKeys)

	for i, k := range fieldKeys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escape(k))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(m.Fields[k], 'f', -1, 64))
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(m.Timestamp, 10))

	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var escaper = strings.NewReplacer(" ", `\ `, ",", `\,`)

// escape protects the characters that delimit tags and fields in line
// protocol.
func escape(s string) string {
	return escaper.Replace(s)
}
