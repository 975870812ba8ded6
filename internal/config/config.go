// Package config loads the depcheck configuration from an optional file and
// DEPCHECK_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/dephub/dephub-requirements/dephub"
	"github.com/dephub/dephub-requirements/internal/telemetry"
	"github.com/dephub/dephub-requirements/providers/components"
)

const (
	// EnvPrefix prefixes every environment variable (e.g. DEPCHECK_HOST_VERSION).
	EnvPrefix = "DEPCHECK"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the depcheck configuration.
type Config struct {
	Host       PlatformConfig          `mapstructure:"host"`
	Runtime    PlatformConfig          `mapstructure:"runtime"`
	Components []components.Info       `mapstructure:"components" validate:"unique=Name,dive"`
	Registry   RegistryConfig          `mapstructure:"registry"`
	Logging    telemetry.LoggingConfig `mapstructure:"logging"`
	// Output is the report format.
	Output string `mapstructure:"output" validate:"oneof=text json yaml"`
}

// PlatformConfig names a reserved requirement and its version.
type PlatformConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	// Version is empty when unknown (runtime: the running toolchain version).
	Version string `mapstructure:"version"`
}

// RegistryConfig configures the remote component registry.
type RegistryConfig struct {
	// URL of the registry API, empty to use configured components only.
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:       PlatformConfig{Name: dephub.DefaultHostName},
		Runtime:    PlatformConfig{Name: dephub.DefaultRuntimeName},
		Components: []components.Info{},
		Logging:    telemetry.DefaultLoggingConfig(),
		Output:     "text",
	}
}

// Load reads the configuration file at path (none if empty), applies
// environment overrides and validates the result.
func Load(ctx context.Context, path string) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("host.name", defaults.Host.Name)
	v.SetDefault("host.version", defaults.Host.Version)
	v.SetDefault("runtime.name", defaults.Runtime.Name)
	v.SetDefault("runtime.version", defaults.Runtime.Version)
	v.SetDefault("components", defaults.Components)
	v.SetDefault("registry.url", defaults.Registry.URL)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.output", defaults.Logging.Output)
	v.SetDefault("output", defaults.Output)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ComponentRegistry returns a registry holding the configured components.
func (c *Config) ComponentRegistry() *components.MemoryRegistry {
	return components.NewMemoryRegistry(c.Components...)
}

// RegistryURL returns the parsed registry URL, nil if none is configured.
func (c *Config) RegistryURL() (*url.URL, error) {
	if c.Registry.URL == "" {
		return nil, nil
	}
	return url.Parse(c.Registry.URL)
}

// EvaluatorOptions converts the platform settings into evaluator options.
func (c *Config) EvaluatorOptions() []dephub.Option {
	return []dephub.Option{
		dephub.WithHost(c.Host.Name, c.Host.Version),
		dephub.WithRuntime(c.Runtime.Name, c.Runtime.Version),
	}
}
