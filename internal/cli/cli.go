// Package cli implements the glowmarkt command line tool.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/whitcombe/glowmarkt/glowmarkt"
	"github.com/whitcombe/glowmarkt/internal/config"
)

// App wires configuration, logging and the API client into the cobra
// command tree.
type App struct {
	root   *cobra.Command
	cfg    *config.Config
	logger *logrus.Logger

	configPath string
	username   string
	password   string
	token      string
	verbose    bool
}

// New builds the command tree.
func New(version string) *App {
	app := &App{
		logger: logrus.New(),
	}

	root := &cobra.Command{
		Use:     "glowmarkt",
		Short:   "Access to the Glowmarkt API for smart meter data",
		Version: version,
		Long: `Access to the Glowmarkt API for smart meter data.

All commands require either a username and password or a valid JWT
token. If both are given the token is checked first and a new one is
generated when it is no longer valid.

Dates are expressed in RFC 3339 form (2023-01-01T00:00:00Z) or as a
negative offset from the current time in minutes, so -1440 is
interpreted as 24 hours ago.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "path to YAML config file")
	flags.StringVarP(&app.username, "username", "u", "", "account username (env GLOWMARKT_API_USERNAME)")
	flags.StringVarP(&app.password, "password", "p", "", "account password (env GLOWMARKT_API_PASSWORD)")
	flags.StringVarP(&app.token, "token", "t", "", "existing JWT token (env GLOWMARKT_API_TOKEN)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newTokenCmd(app),
		newDeviceCmd(app),
		newDeviceTypeCmd(app),
		newResourceCmd(app),
		newResourceTypeCmd(app),
		newVirtualEntityCmd(app),
		newTariffCmd(app),
		newReadingsCmd(app),
		newInfluxCmd(app),
		newWatchCmd(app),
	)

	app.root = root
	return app
}

// ExecuteContext runs the CLI.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// setup loads configuration and initialises logging before any
// subcommand runs. Command line flags override file and environment
// values.
func (a *App) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.username != "" {
		cfg.API.Username = a.username
	}
	if a.password != "" {
		cfg.API.Password = a.password
	}
	if a.token != "" {
		cfg.API.Token = a.token
	}
	a.cfg = cfg

	a.logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	if a.verbose {
		level = logrus.DebugLevel
	}
	a.logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		a.logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return nil
}

// login produces an authenticated client. An existing token is
// validated first; when it is rejected and credentials are available a
// fresh token is generated.
func (a *App) login(ctx context.Context) (*glowmarkt.Client, error) {
	endpoint := glowmarkt.Endpoint{
		BaseURL:       a.cfg.API.BaseURL,
		ApplicationID: a.cfg.API.ApplicationID,
	}

	opts := []glowmarkt.Option{
		glowmarkt.WithLogger(a.logger),
		glowmarkt.WithRateLimit(a.cfg.API.RateLimit, a.cfg.API.RateLimitBurst),
		glowmarkt.WithMetadataCacheSize(a.cfg.API.CacheSize),
	}

	if a.cfg.API.Token != "" {
		client, err := glowmarkt.New(endpoint, append(opts, glowmarkt.WithToken(a.cfg.API.Token))...)
		if err != nil {
			return nil, err
		}

		err = client.Validate(ctx)
		if err == nil {
			return client, nil
		}
		if !glowmarkt.IsNotAuthenticated(err) {
			return nil, err
		}
		a.logger.Debug("token rejected, re-authenticating")
	}

	if a.cfg.API.Username == "" || a.cfg.API.Password == "" {
		return nil, errors.New("must pass a username and password")
	}

	client, err := glowmarkt.New(endpoint, opts...)
	if err != nil {
		return nil, err
	}

	if err := client.Authenticate(ctx, a.cfg.API.Username, a.cfg.API.Password); err != nil {
		return nil, err
	}

	return client, nil
}

// printJSON writes an indented JSON rendering to stdout.
func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// values flattens an ID-keyed map into a slice ordered by key, so
// listings come out deterministically.
func values[T any](byID map[string]T) []T {
	keys := make([]string, 0, len(byID))
	for k := range byID {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]T, 0, len(byID))
	for _, k := range keys {
		out = append(out, byID[k])
	}
	return out
}
