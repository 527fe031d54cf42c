package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the CLI.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Influx  InfluxConfig  `mapstructure:"influx"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	ApplicationID  string  `mapstructure:"application_id"`
	Username       string  `mapstructure:"username"`
	Password       string  `mapstructure:"password"`
	Token          string  `mapstructure:"token"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	CacheSize      int     `mapstructure:"cache_size"`
}

type InfluxConfig struct {
	Tags   map[string]string `mapstructure:"tags"`
	Strict bool              `mapstructure:"strict"`
}

type WatchConfig struct {
	Schedule      string `mapstructure:"schedule"`
	WindowMinutes int    `mapstructure:"window_minutes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Values in the file may reference environment variables
// with ${VAR} syntax; GLOWMARKT_-prefixed variables override file
// values, and defaults fill the rest.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("GLOWMARKT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about. The
	// credential keys deliberately have no default, so bind them
	// explicitly or GLOWMARKT_API_USERNAME and friends are ignored
	// when no config file mentions them.
	for _, key := range []string{"api.username", "api.password", "api.token"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Round-trip through a raw map so scalar types survive the
		// environment expansion below.
		var rawConfig map[string]interface{}
		if err := yaml.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw config: %w", err)
		}

		data, err = yaml.Marshal(rawConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal raw config: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := v.ReadConfig(bytes.NewReader([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.glowmarkt.com/api/v0-1")
	v.SetDefault("api.application_id", "b0f1b774-a586-4f72-9edd-27ead8aa7a8d")
	v.SetDefault("api.rate_limit", 5.0)
	v.SetDefault("api.rate_limit_burst", 10)
	v.SetDefault("api.cache_size", 128)

	v.SetDefault("watch.schedule", "*/30 * * * *")
	v.SetDefault("watch.window_minutes", 120)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
