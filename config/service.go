package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/feedback/logger"
)

// Environments accepted by ServiceConfig.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig holds the fields every binary needs. Embed it in the
// binary's config struct:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values. Embedding structs call it first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base fields. Embedding structs call it first.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}
