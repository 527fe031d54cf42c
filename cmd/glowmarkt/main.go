// Command glowmarkt retrieves smart meter data from the Glowmarkt API.
//
// The tool supports:
//   - Listing devices, device types, resources, resource types and
//     virtual entities
//   - Fetching meter readings over arbitrary time ranges
//   - Emitting readings as InfluxDB line protocol, one-shot or on a
//     schedule
//
// Usage:
//
//	glowmarkt [command] [flags]
//
// Credentials come from flags, a config file or GLOWMARKT_* environment
// variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/whitcombe/glowmarkt/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.New(version)
	if err := app.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
