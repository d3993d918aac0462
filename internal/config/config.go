// Package config loads bufstress settings from defaults, an optional YAML
// file, BUFSTRESS_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/NetPo4ki/go-buffer/buffer"
)

// Config is the complete bufstress configuration.
type Config struct {
	Buffer  BufferConfig  `mapstructure:"buffer"`
	Load    LoadConfig    `mapstructure:"load"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// BufferConfig sizes the buffer under test.
type BufferConfig struct {
	// Capacity is the buffer capacity in bytes.
	Capacity int `mapstructure:"capacity"`
}

// LoadConfig describes the generated workload.
type LoadConfig struct {
	Producers int `mapstructure:"producers"`
	Consumers int `mapstructure:"consumers"`
	// Messages is the number of messages each producer sends.
	Messages int `mapstructure:"messages"`
	// PayloadSize is the length of each generated payload.
	PayloadSize int `mapstructure:"payload_size"`
	// SpecialEvery makes every Nth message the sentinel payload (0 = never).
	SpecialEvery int `mapstructure:"special_every"`
	// TimeoutSeconds bounds the whole run (0 = no limit).
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LoggingConfig controls the logrus logger.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
	// JSON switches from the text formatter to JSON.
	JSON bool `mapstructure:"json"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr serves /metrics when non-empty, e.g. ":9090".
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

// Timeout returns the run timeout as a time.Duration (0 means none).
func (c *LoadConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Buffer: BufferConfig{
			Capacity: 1024,
		},
		Load: LoadConfig{
			Producers:    4,
			Consumers:    4,
			Messages:     10000,
			PayloadSize:  16,
			SpecialEvery: 0,
		},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Namespace: "bufstress"},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("buffer.capacity", d.Buffer.Capacity)
	v.SetDefault("load.producers", d.Load.Producers)
	v.SetDefault("load.consumers", d.Load.Consumers)
	v.SetDefault("load.messages", d.Load.Messages)
	v.SetDefault("load.payload_size", d.Load.PayloadSize)
	v.SetDefault("load.special_every", d.Load.SpecialEvery)
	v.SetDefault("load.timeout_seconds", d.Load.TimeoutSeconds)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.json", d.Logging.JSON)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

// Prepare wires defaults, environment lookup and the optional config file into v.
func Prepare(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	v.SetEnvPrefix("BUFSTRESS")
	// BUFSTRESS_LOAD_PRODUCERS for load.producers
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}

var validLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

// Validate reports every invalid field.
func (c *Config) Validate() []error {
	var errs []error
	if c.Buffer.Capacity <= 1 {
		errs = append(errs, fmt.Errorf("buffer.capacity must be greater than 1, got %d", c.Buffer.Capacity))
	}
	if c.Load.Producers < 0 {
		errs = append(errs, fmt.Errorf("load.producers must not be negative, got %d", c.Load.Producers))
	}
	if c.Load.Consumers < 1 {
		errs = append(errs, fmt.Errorf("load.consumers must be at least 1, got %d", c.Load.Consumers))
	}
	if c.Load.Messages < 0 {
		errs = append(errs, fmt.Errorf("load.messages must not be negative, got %d", c.Load.Messages))
	}
	if c.Load.PayloadSize < 0 || c.Load.PayloadSize+1 >= c.Buffer.Capacity {
		errs = append(errs, fmt.Errorf("load.payload_size must be in [0, %d), got %d", c.Buffer.Capacity-1, c.Load.PayloadSize))
	}
	if c.Load.SpecialEvery < 0 {
		errs = append(errs, fmt.Errorf("load.special_every must not be negative, got %d", c.Load.SpecialEvery))
	}
	if c.Load.SpecialEvery > 0 && len(buffer.DefaultSentinel)+1 >= c.Buffer.Capacity {
		errs = append(errs, fmt.Errorf("buffer.capacity %d cannot hold the sentinel payload", c.Buffer.Capacity))
	}
	if c.Load.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("load.timeout_seconds must not be negative, got %d", c.Load.TimeoutSeconds))
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error", c.Logging.Level))
	}
	return errs
}
