// Package password hashes and verifies account credentials.
//
// Digests are self-describing strings. Argon2id digests use the PHC format
// and carry their own parameters, so accounts hashed under older settings
// keep verifying after the configuration changes:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
//
// Verification answers yes or no. A malformed or unsupported digest is a
// mismatch, never an error the caller has to branch on.
package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes passwords and checks them against stored digests.
type Hasher interface {
	// Hash returns a salted digest of password. It fails only when the
	// entropy source does.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest.
	Verify(password, digest string) bool
}

const (
	argon2Prefix = "$argon2id$"

	// Upper bounds accepted when reading parameters out of a stored digest.
	maxArgon2Memory  = 1 << 20 // KiB (1 GiB)
	maxArgon2Time    = 64
	minArgon2KeyLen  = 16
	minArgon2SaltLen = 8
)

// --- Argon2id ---

// Argon2Hasher implements Hasher using argon2id.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

// Argon2Option configures the argon2id hasher.
type Argon2Option func(*Argon2Hasher)

// WithArgon2Time sets the number of iterations (default: 2).
func WithArgon2Time(t uint32) Argon2Option {
	return func(h *Argon2Hasher) {
		if t > 0 {
			h.time = t
		}
	}
}

// WithArgon2Memory sets the memory cost in KiB (default: 19456).
func WithArgon2Memory(m uint32) Argon2Option {
	return func(h *Argon2Hasher) {
		if m > 0 {
			h.memory = m
		}
	}
}

// WithArgon2Threads sets the parallelism (default: 1).
func WithArgon2Threads(p uint8) Argon2Option {
	return func(h *Argon2Hasher) {
		if p > 0 {
			h.threads = p
		}
	}
}

// NewArgon2Hasher creates an argon2id hasher. The defaults are the
// argon2 reference parameters: m=19456 KiB, t=2, p=1, 16-byte salt and
// 32-byte key.
func NewArgon2Hasher(opts ...Argon2Option) *Argon2Hasher {
	h := &Argon2Hasher{
		time:    2,
		memory:  19456,
		threads: 1,
		keyLen:  32,
		saltLen: 16,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt, err := generateRandomBytes(h.saltLen)
	if err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(password, digest string) bool {
	p, ok := parseArgon2(digest)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(key, p.key) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2(digest string) (argon2Params, bool) {
	var p argon2Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, false
	}
	if p.memory == 0 || p.memory > maxArgon2Memory || p.time == 0 || p.time > maxArgon2Time || p.threads == 0 {
		return p, false
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) < minArgon2SaltLen {
		return p, false
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) < minArgon2KeyLen {
		return p, false
	}
	return p, true
}

// --- Bcrypt ---

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter (default: 12, range: 4-31).
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher creates a bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: 12}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash fails for passwords longer than 72 bytes, the bcrypt input limit.
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: bcrypt: %w", err)
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

// --- Dispatch ---

// multiHasher hashes with the configured algorithm and verifies any digest
// format it recognizes.
type multiHasher struct {
	primary Hasher
	argon2  *Argon2Hasher
	bcrypt  *BcryptHasher
}

func (m *multiHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *multiHasher) Verify(password, digest string) bool {
	switch {
	case strings.HasPrefix(digest, argon2Prefix):
		return m.argon2.Verify(password, digest)
	case isBcrypt(digest):
		return m.bcrypt.Verify(password, digest)
	default:
		return false
	}
}
