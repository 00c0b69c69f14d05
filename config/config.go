// Package config loads the tilestream settings from the environment or a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/eak1mov/go-tilestream/layer"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by New.
const EnvPrefix = "TILESTREAM_"

var ErrInvalidConfig = errors.New("tilestream: invalid config")

type (
	Config struct {
		Layer     layer.Config `envPrefix:"LAYER_" yaml:"layer"`
		Fetch     Fetch        `envPrefix:"FETCH_" yaml:"fetch"`
		Logger    Logger       `envPrefix:"LOGGER_" yaml:"logger"`
		Metrics   Metrics      `envPrefix:"METRICS_" yaml:"metrics"`
		Telemetry Telemetry    `envPrefix:"TELEMETRY_" yaml:"telemetry"`
	}

	Fetch struct {
		Workers   int           `env:"WORKERS" envDefault:"8" yaml:"workers" validate:"gt=0"`
		Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s" yaml:"timeout" validate:"gte=0"`
		UserAgent string        `env:"USER_AGENT" envDefault:"go-tilestream/1.0" yaml:"user_agent" validate:"required"`
		Retries   uint64        `env:"RETRIES" envDefault:"3" yaml:"retries"`
		Backoff   time.Duration `env:"BACKOFF" envDefault:"200ms" yaml:"backoff" validate:"gt=0"`
	}

	Logger struct {
		Level string `env:"LEVEL" envDefault:"info" yaml:"level" validate:"oneof=debug info warn error"`
	}

	// Metrics.Addr is the listen address of the metrics server; empty disables it.
	Metrics struct {
		Addr string `env:"ADDR" yaml:"addr" validate:"omitempty,hostname_port"`
	}

	Telemetry struct {
		Enabled     bool   `env:"ENABLED" yaml:"enabled"`
		ServiceName string `env:"SERVICE_NAME" envDefault:"tilestream" yaml:"service_name" validate:"required"`
		Endpoint    string `env:"OTLP_ENDPOINT" envDefault:"localhost:4317" yaml:"otlp_endpoint" validate:"required_if=Enabled true"`
		Insecure    bool   `env:"OTLP_INSECURE" envDefault:"true" yaml:"otlp_insecure"`
	}
)

// Default returns the configuration with every default applied.
func Default() Config {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: map[string]string{}})
	if err != nil {
		panic(fmt.Sprintf("tilestream: bad config defaults: %v", err))
	}
	return cfg
}

// New reads .env, if present, and then the TILESTREAM_ environment variables.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a YAML file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
