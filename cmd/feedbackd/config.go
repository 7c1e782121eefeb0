package main

import (
	"github.com/kbukum/feedback/auth"
	"github.com/kbukum/feedback/config"
	"github.com/kbukum/feedback/database"
	"github.com/kbukum/feedback/observability"
	"github.com/kbukum/feedback/server"
	"github.com/kbukum/feedback/version"
)

const serviceName = "feedbackd"

// Config is the feedbackd configuration, loaded from config.yml, .env and
// the environment (AUTH_JWT_SECRET sets auth.jwt.secret).
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate fails when any section is invalid, including a missing signing
// secret.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

// loadConfig reads the configuration. Empty paths fall back to the
// standard search locations.
func loadConfig(configFile, envFile string) (*Config, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
