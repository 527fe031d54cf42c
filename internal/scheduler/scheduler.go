// Package scheduler drives the periodic collection used by the watch
// command.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Collector gathers readings over one trailing window and emits them.
type Collector interface {
	Collect(ctx context.Context, start, end time.Time) error
}

// Scheduler runs a collector on a cron schedule, each tick covering the
// trailing window.
type Scheduler struct {
	ctx       context.Context
	collector Collector
	logger    logrus.FieldLogger
	cron      *cron.Cron
	schedule  string
	window    time.Duration
}

func New(ctx context.Context, collector Collector, logger logrus.FieldLogger, schedule string, window time.Duration) *Scheduler {
	return &Scheduler{
		ctx:       ctx,
		collector: collector,
		logger:    logger,
		cron:      cron.New(),
		schedule:  schedule,
		window:    window,
	}
}

// Start begins periodic collection. Collection errors are logged, not
// fatal; the next tick retries the window.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.collect)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) collect() {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Minute)
	defer cancel()

	end := time.Now().UTC()
	start := end.Add(-s.window)

	if err := s.collector.Collect(ctx, start, end); err != nil {
		s.logger.WithError(err).Error("failed to collect readings")
	}
}

// Stop halts the scheduler and waits for a running collection.
func (s *Scheduler) Stop() {
	sctx := s.cron.Stop()
	<-sctx.Done()
}
