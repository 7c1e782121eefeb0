package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names a supported HMAC signing algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// DefaultTTL is the token lifetime used when AccessTokenTTL is unset.
const DefaultTTL = time.Hour

// minSecretLen is the shortest signing secret accepted.
const minSecretLen = 16

// Config configures the token service. The secret is shared by every
// replica and is loaded once at startup.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string `mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `mapstructure:"method"`

	// Issuer is the "iss" claim (optional). When set, tokens without a
	// matching issuer are rejected.
	Issuer string `mapstructure:"issuer"`

	// Audience is the "aud" claim (optional).
	Audience []string `mapstructure:"audience"`

	// AccessTokenTTL is the token lifetime (default: 1h).
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = DefaultTTL
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("secret is required")
	}
	if len(c.Secret) < minSecretLen {
		return fmt.Errorf("secret must be at least %d bytes", minSecretLen)
	}
	if c.signingMethod() == nil {
		return fmt.Errorf("unsupported signing method: %s", c.Method)
	}
	if c.AccessTokenTTL < 0 {
		return fmt.Errorf("access_token_ttl must be positive (got: %s)", c.AccessTokenTTL)
	}
	return nil
}

func (c *Config) signingMethod() *gojwt.SigningMethodHMAC {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return nil
	}
}

func (c *Config) key() []byte {
	return []byte(c.Secret)
}
