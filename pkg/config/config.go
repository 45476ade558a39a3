// Package config provides the configuration of the payload simulator.
//
// The configuration is organized into logical sections:
//   - Pools: per-kind pool limits
//   - Logging: zap logger settings
//   - Metrics and Tracing: observability exporters
//   - Pipeline: the shape of the simulated trigger workload
//
// Example usage:
//
//	cfg, err := config.LoadFile("payloadsim.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts := cfg.PoolOptions(payload.KindSimpleHit)
package config

import (
	"time"

	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/logger"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// Config is the top-level configuration.
type Config struct {
	// Name identifies the run in logs and reports
	Name string `yaml:"name" json:"name"`

	// Pools holds pool limits keyed by payload kind name
	Pools map[string]PoolConfig `yaml:"pools" json:"pools"`

	Logging  logger.Config  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing" json:"tracing"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`

	// GeometryFile is the DOM geometry XML used to resolve beacon channels.
	// Empty disables channel resolution.
	GeometryFile string `yaml:"geometry_file" json:"geometry_file"`
}

// PoolConfig bounds one payload pool. Zero means unbounded.
type PoolConfig struct {
	MaxLive  int `yaml:"max_live" json:"max_live"`
	MaxIdle  int `yaml:"max_idle" json:"max_idle"`
	Prealloc int `yaml:"prealloc" json:"prealloc"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Address   string `yaml:"address" json:"address"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate"`
}

// PipelineConfig shapes the simulated workload.
type PipelineConfig struct {
	// Producers is the number of simulated string hubs
	Producers int `yaml:"producers" json:"producers"`
	// Events is the number of hits each producer emits
	Events int `yaml:"events" json:"events"`
	// HitsPerTrigger is the number of hits grouped into one trigger request
	HitsPerTrigger int `yaml:"hits_per_trigger" json:"hits_per_trigger"`
	// BeaconEvery turns every n-th hit into a beacon; 0 disables beacons
	BeaconEvery int `yaml:"beacon_every" json:"beacon_every"`
	// BufferSize is the capacity of the channels between stages
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`
	// Timeout bounds the whole run; 0 means no limit
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Name: "payloadsim",
		Pools: map[string]PoolConfig{
			payload.KindSimpleHit.String():      {Prealloc: 256},
			payload.KindBeaconHit.String():      {Prealloc: 16},
			payload.KindTriggerRequest.String(): {Prealloc: 32},
		},
		Logging: logger.Config{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Namespace: "payload",
			Address:   ":9090",
		},
		Tracing: TracingConfig{
			ServiceName: "payloadsim",
			SampleRate:  1.0,
		},
		Pipeline: PipelineConfig{
			Producers:      4,
			Events:         1000,
			HitsPerTrigger: 8,
			BeaconEvery:    50,
			BufferSize:     64,
		},
	}
}

// LoadFile reads a YAML configuration over the defaults and validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := Load(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value is within its acceptable range.
func (c *Config) Validate() error {
	for kind, pc := range c.Pools {
		if !knownKind(kind) {
			return errors.New(errors.ErrorTypeConfig, "unknown pool kind").WithDetail("kind", kind)
		}
		if pc.MaxLive < 0 || pc.MaxIdle < 0 || pc.Prealloc < 0 {
			return errors.New(errors.ErrorTypeConfig, "pool limits cannot be negative").WithDetail("kind", kind)
		}
		if pc.MaxLive > 0 && pc.Prealloc > pc.MaxLive {
			return errors.New(errors.ErrorTypeConfig, "prealloc exceeds max_live").WithDetail("kind", kind)
		}
	}

	p := c.Pipeline
	switch {
	case p.Producers <= 0:
		return errors.New(errors.ErrorTypeConfig, "producers must be positive")
	case p.Events < 0:
		return errors.New(errors.ErrorTypeConfig, "events cannot be negative")
	case p.HitsPerTrigger <= 0:
		return errors.New(errors.ErrorTypeConfig, "hits_per_trigger must be positive")
	case p.BeaconEvery < 0:
		return errors.New(errors.ErrorTypeConfig, "beacon_every cannot be negative")
	case p.BufferSize < 0:
		return errors.New(errors.ErrorTypeConfig, "buffer_size cannot be negative")
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "sample_rate must be between 0 and 1")
	}
	return nil
}

// PoolOptions returns the pool options configured for kind.
func (c *Config) PoolOptions(kind payload.Kind) []pool.Option {
	pc, ok := c.Pools[kind.String()]
	if !ok {
		return nil
	}
	return pc.Options()
}

// Options converts the limits to pool options.
func (pc PoolConfig) Options() []pool.Option {
	var opts []pool.Option
	if pc.MaxLive > 0 {
		opts = append(opts, pool.WithMaxLive(pc.MaxLive))
	}
	if pc.MaxIdle > 0 {
		opts = append(opts, pool.WithMaxIdle(pc.MaxIdle))
	}
	if pc.Prealloc > 0 {
		opts = append(opts, pool.WithPrealloc(pc.Prealloc))
	}
	return opts
}

func knownKind(name string) bool {
	for _, k := range payload.Kinds() {
		if k.String() == name {
			return true
		}
	}
	return false
}
