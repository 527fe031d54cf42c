package influx

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMeasurementString(t *testing.T) {
	timestamp := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	m := NewMeasurement("glowmarkt", timestamp, map[string]string{
		"device-id": "dev-1",
		"class":     "electricity",
	})
	m.AddField("consumption", 0.5)

	// Tags render in sorted key order.
	assert.Equal(t, "glowmarkt,class=electricity,device-id=dev-1 consumption=0.5 1672531200000000000", m.String())
}

func TestMeasurementStringNoTags(t *testing.T) {
	m := NewMeasurement("glowmarkt", time.Unix(0, 0), nil)
	m.AddField("value", 12)

	assert.Equal(t, "glowmarkt value=12 0", m.String())
}

func TestMeasurementStringMultipleFields(t *testing.T) {
	m := NewMeasurement("glowmarkt", time.Unix(1, 0), map[string]string{"a": "b"})
	m.AddField("z", 1)
	m.AddField("a", 2.25)

	assert.Equal(t, "glowmarkt,a=b a=2.25,z=1 1000000000", m.String())
}

func TestMeasurementEscaping(t *testing.T) {
	m := NewMeasurement("glowmarkt", time.Unix(0, 0), map[string]string{
		"city": "New York, NY",
	})
	m.AddField("value", 1)

	assert.Equal(t, `glowmarkt,city=New\ York\,\ NY value=1 0`, m.String())
}

func TestMeasurementTagsCopied(t *testing.T) {
	tags := map[string]string{"a": "1"}
	m := NewMeasurement("glowmarkt", time.Unix(0, 0), tags)

	tags["a"] = "2"
	assert.Equal(t, "1", m.Tags["a"])
}

func TestAddFieldRejectsNonFinite(t *testing.T) {
	m := NewMeasurement("glowmarkt", time.Unix(0, 0), nil)

	assert.Panics(t, func() { m.AddField("value", math.NaN()) })
	assert.Panics(t, func() { m.AddField("value", math.Inf(1)) })
}

func TestStringPanicsWithoutFields(t *testing.T) {
	m := NewMeasurement("glowmarkt", time.Unix(0, 0), nil)
	assert.Panics(t, func() { _ = m.String() })
}
