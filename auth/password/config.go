package password

import "fmt"

// Algorithm names a password hashing algorithm.
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

// Config selects the algorithm new digests are created with.
type Config struct {
	// Algorithm selects the hashing algorithm (default: "argon2id").
	Algorithm Algorithm `mapstructure:"algorithm"`

	// BcryptCost is the bcrypt cost parameter (default: 12, range: 4-31).
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// Argon2Time is the number of argon2id iterations (default: 2).
	Argon2Time uint32 `mapstructure:"argon2_time"`

	// Argon2Memory is the argon2id memory cost in KiB (default: 19456).
	Argon2Memory uint32 `mapstructure:"argon2_memory"`

	// Argon2Threads is the argon2id parallelism (default: 1).
	Argon2Threads uint8 `mapstructure:"argon2_threads"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmArgon2id
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 2
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 19456
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 1
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmArgon2id, AlgorithmBcrypt:
	default:
		return fmt.Errorf("password.algorithm must be argon2id or bcrypt (got: %s)", c.Algorithm)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("password.bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	if c.Argon2Memory < 8*uint32(c.Argon2Threads) || c.Argon2Memory > maxArgon2Memory {
		return fmt.Errorf("password.argon2_memory out of range (got: %d KiB)", c.Argon2Memory)
	}
	if c.Argon2Time > maxArgon2Time {
		return fmt.Errorf("password.argon2_time must be <= %d (got: %d)", maxArgon2Time, c.Argon2Time)
	}
	return nil
}

// NewHasher creates a Hasher from configuration. The returned hasher
// creates digests with the configured algorithm and verifies both argon2id
// and bcrypt digests.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	m := &multiHasher{
		argon2: NewArgon2Hasher(
			WithArgon2Time(cfg.Argon2Time),
			WithArgon2Memory(cfg.Argon2Memory),
			WithArgon2Threads(cfg.Argon2Threads),
		),
		bcrypt: NewBcryptHasher(WithCost(cfg.BcryptCost)),
	}
	m.primary = m.argon2
	if cfg.Algorithm == AlgorithmBcrypt {
		m.primary = m.bcrypt
	}
	return m
}
