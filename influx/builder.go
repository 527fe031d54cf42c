package influx

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/whitcombe/glowmarkt/glowmarkt"
)

// MeasurementName is the series name used for all meter readings.
const MeasurementName = "glowmarkt"

// ReadingsFetcher retrieves the readings for one resource over one
// sub-range. *glowmarkt.Client satisfies this.
type ReadingsFetcher interface {
	Readings(ctx context.Context, resourceID string, start, end time.Time, period glowmarkt.ReadingPeriod) ([]glowmarkt.Reading, error)
}

// Builder collects readings across devices and resources into a single
// time-ordered measurement sequence.
//
// AddDevice may be called from multiple goroutines; Measurements must
// only be called once all AddDevice calls have returned so that sorting
// and trailing-zero suppression see the complete result set.
type Builder struct {
	fetcher   ReadingsFetcher
	resources map[string]glowmarkt.Resource
	tags      map[string]string
	period    glowmarkt.ReadingPeriod
	strict    bool
	logger    logrus.FieldLogger

	mu     sync.Mutex
	byTime map[int64][]*Measurement
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTags adds caller-supplied tags to every measurement. Device and
// resource tags with the same name take precedence.
func WithTags(tags map[string]string) BuilderOption {
	return func(b *Builder) {
		for k, v := range tags {
			b.tags[k] = v
		}
	}
}

// WithPeriod sets the reading period fetched for every resource. The
// default is half-hour readings.
func WithPeriod(period glowmarkt.ReadingPeriod) BuilderOption {
	return func(b *Builder) { b.period = period }
}

// Strict makes per-resource fetch failures abort the whole collection
// instead of skipping the resource.
func Strict() BuilderOption {
	return func(b *Builder) { b.strict = true }
}

// WithBuilderLogger sets the logger used when resources are skipped.
func WithBuilderLogger(logger logrus.FieldLogger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a builder reading through fetcher and resolving
// device sensors against the given resource table.
func NewBuilder(fetcher ReadingsFetcher, resources map[string]glowmarkt.Resource, opts ...BuilderOption) *Builder {
	b := &Builder{
		fetcher:   fetcher,
		resources: resources,
		tags:      make(map[string]string),
		period:    glowmarkt.PeriodHalfHour,
		logger:    logrus.StandardLogger(),
		byTime:    make(map[int64][]*Measurement),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// AddDevice fetches readings for every sensor on the device across the
// given ranges and queues the resulting measurements.
//
// Sensors whose resource ID is not present in the resource table are
// skipped; a device may legitimately carry sensors without a resource.
// When a fetch fails the remaining ranges for that resource are
// abandoned: in strict mode the error is returned, otherwise the
// resource is logged and skipped and collection continues.
func (b *Builder) AddDevice(ctx context.Context, device glowmarkt.Device, ranges []glowmarkt.TimeRange) error {
	deviceTags := copyTags(b.tags)
	addDeviceTags(deviceTags, device)

	for _, sensor := range device.Protocol.Sensors {
		resource, ok := b.resources[sensor.ResourceID]
		if !ok {
			continue
		}

		tags := copyTags(deviceTags)
		addResourceTags(tags, resource)
		field := fieldForClassifier(resource.Classifier)

		for _, r := range ranges {
			readings, err := b.fetcher.Readings(ctx, resource.ID, r.Start, r.End, b.period)
			if err != nil {
				if b.strict {
					return err
				}
				b.logger.WithFields(logrus.Fields{
					"device_id":   device.ID,
					"resource_id": resource.ID,
				}).WithError(err).Warn("skipping readings for resource")
				break
			}

			for _, reading := range readings {
				m := NewMeasurement(MeasurementName, reading.Start, tags)
				m.AddField(field, float64(reading.Value))
				b.add(m)
			}
		}
	}

	return nil
}

func (b *Builder) add(m *Measurement) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byTime[m.Timestamp] = append(b.byTime[m.Timestamp], m)
}

// Measurements returns everything collected so far, sorted by timestamp
// ascending. Unless keepTrailingZeros is set, timestamp groups whose
// fields are all exactly zero are trimmed from the newest end of the
// sequence; the first group with any non-zero field stops the trim.
// Meters report zero for windows that have not happened yet, so the
// trailing zeros are usually noise rather than data.
func (b *Builder) Measurements(keepTrailingZeros bool) []*Measurement {
	b.mu.Lock()
	defer b.mu.Unlock()

	timestamps := make([]int64, 0, len(b.byTime))
	for ts := range b.byTime {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	if !keepTrailingZeros {
		for len(timestamps) > 0 {
			last := timestamps[len(timestamps)-1]
			if !groupAllZero(b.byTime[last]) {
				break
			}
			timestamps = timestamps[:len(timestamps)-1]
		}
	}

	var out []*Measurement
	for _, ts := range timestamps {
		out = append(out, b.byTime[ts]...)
	}
	return out
}

func groupAllZero(group []*Measurement) bool {
	for _, m := range group {
		if !m.allZero() {
			return false
		}
	}
	return true
}

func copyTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	return copied
}

// addDeviceTags records the identifying tags of a device.
func addDeviceTags(tags map[string]string, device glowmarkt.Device) {
	tags["device-id"] = device.ID
	if device.Description != "" {
		tags["device"] = device.Description
	}
	tags["device-active"] = strconv.FormatBool(device.Active)
	tags["hardware-id"] = device.HardwareID
	for k, v := range device.HardwareIDs {
		tags[k] = v
	}
}

// addResourceTags records the identifying tags of a resource, including
// the derived class tag (the first dot-segment of the classifier).
func addResourceTags(tags map[string]string, resource glowmarkt.Resource) {
	tags["resource-id"] = resource.ID
	tags["resource"] = resource.Name
	tags["resource-active"] = strconv.FormatBool(resource.Active)

	if resource.Classifier != "" {
		tags["classifier"] = resource.Classifier
		segments := strings.Split(resource.Classifier, ".")
		tags["class"] = segments[0]
	}

	if resource.BaseUnit != "" {
		tags["unit"] = resource.BaseUnit
	}
}

// fieldForClassifier derives the field key for a resource: the last
// dot-segment of its classifier, or "value" when it has none.
func fieldForClassifier(classifier string) string {
	if classifier == "" {
		return "value"
	}
	segments := strings.Split(classifier, ".")
	return segments[len(segments)-1]
}
