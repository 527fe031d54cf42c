package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/whitcombe/glowmarkt/glowmarkt"
)

func newTokenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Generates a valid authentication token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.login(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(client.Token())
			return nil
		},
	}
}

func newDeviceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "device [id]",
		Short: "Lists devices",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				device, err := client.Device(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(device)
			}

			devices, err := client.Devices(ctx)
			if err != nil {
				return err
			}
			return printJSON(values(devices))
		},
	}
}

func newDeviceTypeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "devicetype [id]",
		Short: "Lists device types",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			types, err := client.DeviceTypes(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				return printJSON(types[args[0]])
			}
			return printJSON(values(types))
		},
	}
}

func newResourceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resource [id]",
		Short: "Lists resources",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				resource, err := client.Resource(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(resource)
			}

			resources, err := client.Resources(ctx)
			if err != nil {
				return err
			}
			return printJSON(values(resources))
		},
	}
}

func newResourceTypeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resourcetype [id]",
		Short: "Lists resource types",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			types, err := client.ResourceTypes(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				return printJSON(types[args[0]])
			}
			return printJSON(values(types))
		},
	}
}

func newVirtualEntityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "virtualentity [id]",
		Short: "Lists virtual entities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				entity, err := client.VirtualEntity(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(entity)
			}

			entities, err := client.VirtualEntities(ctx)
			if err != nil {
				return err
			}
			return printJSON(values(entities))
		},
	}
}

func newTariffCmd(app *App) *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "tariff <resource-id>",
		Short: "Shows the tariff applied to a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			if history {
				tariffs, err := client.TariffList(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(tariffs)
			}

			tariff, err := client.LatestTariff(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(tariff)
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "list all historical tariffs")
	return cmd
}

func newReadingsCmd(app *App) *cobra.Command {
	var periodName string

	cmd := &cobra.Command{
		Use:   "readings <resource-id> <from> [to]",
		Short: "Lists meter readings for a resource",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			period, err := glowmarkt.ParsePeriod(periodName)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			start, err := parseDate(args[1], period, now)
			if err != nil {
				return err
			}

			endArg := ""
			if len(args) == 3 {
				endArg = args[2]
			}
			end, err := parseEndDate(endArg, period, now)
			if err != nil {
				return err
			}

			ranges, err := glowmarkt.SplitPeriods(start, end, period)
			if err != nil {
				return err
			}

			client, err := app.login(ctx)
			if err != nil {
				return err
			}

			for _, r := range ranges {
				readings, err := client.Readings(ctx, args[0], r.Start, r.End, period)
				if err != nil {
					return err
				}

				if err := printJSON(readings); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&periodName, "period", "halfhour", "reading period (halfhour or hour)")
	return cmd
}
