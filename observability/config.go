package observability

import (
	"fmt"
	"time"
)

// Config configures OTLP export of traces and metrics. When Enabled is
// false the global no-op providers stay in place and instrumented code runs
// unchanged.
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64 `mapstructure:"sample_rate"`
	// MetricInterval is the metric export period.
	MetricInterval time.Duration `mapstructure:"metric_interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	if c.MetricInterval < time.Second {
		return fmt.Errorf("observability.metric_interval must be at least 1s (got: %s)", c.MetricInterval)
	}
	return nil
}

// ServiceInfo identifies the service in exported telemetry.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}
