package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/whitcombe/glowmarkt/glowmarkt"
	"github.com/whitcombe/glowmarkt/influx"
	"github.com/whitcombe/glowmarkt/internal/scheduler"
)

func newInfluxCmd(app *App) *cobra.Command {
	var (
		deviceID string
		noStrip  bool
		tagArgs  []string
	)

	cmd := &cobra.Command{
		Use:   "influx <from> [to]",
		Short: "Retrieves device readings in InfluxDB line protocol",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			period := glowmarkt.PeriodHalfHour

			now := time.Now().UTC()
			start, err := parseDate(args[0], period, now)
			if err != nil {
				return err
			}

			endArg := ""
			if len(args) == 2 {
				endArg = args[1]
			}
			end, err := parseEndDate(endArg, period, now)
			if err != nil {
				return err
			}

			tags, err := app.influxTags(tagArgs)
			if err != nil {
				return err
			}

			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			measurements, err := app.gather(ctx, client, deviceID, tags, start, end, period, noStrip)
			if err != nil {
				return err
			}

			return emit(measurements)
		},
	}

	cmd.Flags().StringVarP(&deviceID, "device", "d", "", "read a single device instead of all devices")
	cmd.Flags().BoolVar(&noStrip, "no-strip", false, "don't strip trailing zero readings")
	cmd.Flags().StringArrayVar(&tagArgs, "tag", nil, "additional tag for every reading, as key=value")

	return cmd
}

func newWatchCmd(app *App) *cobra.Command {
	var tagArgs []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically emits recent readings in line protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tags, err := app.influxTags(tagArgs)
			if err != nil {
				return err
			}

			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			collector := &influxCollector{
				app:    app,
				client: client,
				tags:   tags,
			}

			window := time.Duration(app.cfg.Watch.WindowMinutes) * time.Minute
			sched := scheduler.New(ctx, collector, app.logger, app.cfg.Watch.Schedule, window)
			if err := sched.Start(); err != nil {
				return err
			}

			app.logger.WithField("schedule", app.cfg.Watch.Schedule).Info("watching for readings")

			<-ctx.Done()
			sched.Stop()
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&tagArgs, "tag", nil, "additional tag for every reading, as key=value")
	return cmd
}

// influxCollector adapts the gather pipeline to the scheduler.
type influxCollector struct {
	app    *App
	client *glowmarkt.Client
	tags   map[string]string
}

func (c *influxCollector) Collect(ctx context.Context, start, end time.Time) error {
	period := glowmarkt.PeriodHalfHour

	start, err := glowmarkt.AlignToPeriod(start, period)
	if err != nil {
		return err
	}
	end, err = glowmarkt.AlignToPeriod(end, period)
	if err != nil {
		return err
	}

	measurements, err := c.app.gather(ctx, c.client, "", c.tags, start, end, period, false)
	if err != nil {
		return err
	}

	return emit(measurements)
}

// gather fetches readings for one device or all of them and builds the
// measurement sequence.
func (a *App) gather(ctx context.Context, client *glowmarkt.Client, deviceID string, tags map[string]string, start, end time.Time, period glowmarkt.ReadingPeriod, keepTrailingZeros bool) ([]*influx.Measurement, error) {
	ranges, err := glowmarkt.SplitPeriods(start, end, period)
	if err != nil {
		return nil, err
	}

	resources, err := client.Resources(ctx)
	if err != nil {
		return nil, err
	}

	opts := []influx.BuilderOption{
		influx.WithTags(tags),
		influx.WithPeriod(period),
		influx.WithBuilderLogger(a.logger),
	}
	if a.cfg.Influx.Strict {
		opts = append(opts, influx.Strict())
	}

	builder := influx.NewBuilder(client, resources, opts...)

	if deviceID != "" {
		device, err := client.Device(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		if device == nil {
			return nil, fmt.Errorf("unknown device %s", deviceID)
		}

		if err := builder.AddDevice(ctx, *device, ranges); err != nil {
			return nil, err
		}
	} else {
		devices, err := client.Devices(ctx)
		if err != nil {
			return nil, err
		}

		for _, device := range values(devices) {
			if err := builder.AddDevice(ctx, device, ranges); err != nil {
				return nil, err
			}
		}
	}

	return builder.Measurements(keepTrailingZeros), nil
}

func emit(measurements []*influx.Measurement) error {
	for _, m := range measurements {
		fmt.Println(m)
	}
	return nil
}

// influxTags merges configured tags with --tag arguments; command line
// tags win.
func (a *App) influxTags(tagArgs []string) (map[string]string, error) {
	tags := make(map[string]string, len(a.cfg.Influx.Tags)+len(tagArgs))
	for k, v := range a.cfg.Influx.Tags {
		tags[k] = v
	}

	for _, arg := range tagArgs {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("unable to parse tag %q, no equals sign present", arg)
		}
		tags[key] = value
	}

	return tags, nil
}
