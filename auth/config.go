package auth

import (
	"fmt"

	"github.com/kbukum/feedback/auth/jwt"
	"github.com/kbukum/feedback/auth/password"
)

// Config holds authentication configuration.
type Config struct {
	// JWT configures token signing. Its secret is required.
	JWT jwt.Config `mapstructure:"jwt"`

	// Password configures credential hashing.
	Password password.Config `mapstructure:"password"`
}

// ApplyDefaults sets defaults on both sub-configurations.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
}

// Validate checks both sub-configurations.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	return nil
}

// Describe returns a one-line summary for startup logs. It never includes
// the secret.
func (c *Config) Describe() string {
	return fmt.Sprintf("JWT(%s) TTL=%s password=%s", c.JWT.Method, c.JWT.AccessTokenTTL, c.Password.Algorithm)
}
