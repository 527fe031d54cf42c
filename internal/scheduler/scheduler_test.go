package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollector struct {
	mu      sync.Mutex
	errs    []error
	calls   int
	windows []time.Duration
}

func (c *stubCollector) Collect(ctx context.Context, start, end time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	c.windows = append(c.windows, end.Sub(start))

	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		return err
	}
	return nil
}

func TestCollectErrorIsLoggedNotFatal(t *testing.T) {
	logger, hook := test.NewNullLogger()
	collector := &stubCollector{errs: []error{errors.New("boom")}}

	s := New(context.Background(), collector, logger, "* * * * *", time.Hour)

	// First tick fails, second succeeds. The failure must only be
	// logged so that the next tick still runs.
	s.collect()
	s.collect()

	assert.Equal(t, 2, collector.calls)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "failed to collect readings", entry.Message)
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "boom")
}

func TestCollectCoversTrailingWindow(t *testing.T) {
	logger, _ := test.NewNullLogger()
	collector := &stubCollector{}

	s := New(context.Background(), collector, logger, "* * * * *", 2*time.Hour)
	s.collect()

	require.Len(t, collector.windows, 1)
	assert.Equal(t, 2*time.Hour, collector.windows[0])
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	logger, _ := test.NewNullLogger()

	s := New(context.Background(), &stubCollector{}, logger, "not a schedule", time.Hour)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	logger, _ := test.NewNullLogger()

	s := New(context.Background(), &stubCollector{}, logger, "* * * * *", time.Hour)
	require.NoError(t, s.Start())
	s.Stop()
}
