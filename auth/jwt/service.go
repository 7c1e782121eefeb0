// Package jwt signs and verifies HMAC-signed bearer tokens.
//
// The service is generic over the claims type so that the identity layer
// owns the claim set while this package owns the cryptography:
//
//	svc, err := jwt.NewService(&cfg, func() *identity.Claims { return &identity.Claims{} })
//	token, err := svc.Generate(claims)
//	claims, err := svc.Parse(token)
//
// Parse always checks the signature before interpreting any claim and
// reports one of three failure kinds: ErrMalformed, ErrInvalidSignature or
// ErrExpired.
package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed means the token is not a decodable three-part JWT or
	// its claims are unusable.
	ErrMalformed = errors.New("jwt: malformed token")
	// ErrInvalidSignature means the signature does not match the secret.
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	// ErrExpired means the signature is valid but exp has passed.
	ErrExpired = errors.New("jwt: token expired")
)

// Service provides token generation and parsing for claims type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	now      func() time.Time
}

// Option configures a Service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService creates a token service. newEmpty returns a fresh claims value
// to decode into. It fails when the configuration has no usable secret.
func NewService[T gojwt.Claims](cfg *Config, newEmpty func() T, opts ...Option) (*Service[T], error) {
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[T]{cfg: c, newEmpty: newEmpty, now: o.now}, nil
}

// TTL returns the configured token lifetime.
func (s *Service[T]) TTL() time.Duration { return s.cfg.AccessTokenTTL }

// Now returns the service clock's current time.
func (s *Service[T]) Now() time.Time { return s.now() }

// Issuer returns the configured issuer, if any.
func (s *Service[T]) Issuer() string { return s.cfg.Issuer }

// Audience returns the configured audience, if any.
func (s *Service[T]) Audience() []string { return s.cfg.Audience }

// Generate signs claims as-is.
func (s *Service[T]) Generate(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString(s.cfg.key())
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and decodes its claims.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T

	if err := s.verifySignature(tokenString); err != nil {
		return zero, err
	}

	claims := s.newEmpty()
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		switch {
		case errors.Is(err, gojwt.ErrTokenExpired):
			return zero, ErrExpired
		case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
			return zero, ErrInvalidSignature
		default:
			return zero, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	parsed, ok := token.Claims.(T)
	if !ok || !token.Valid {
		return zero, ErrMalformed
	}
	return parsed, nil
}

// verifySignature checks the HMAC over header.payload before anything in
// the payload is decoded.
func (s *Service[T]) verifySignature(tokenString string) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ErrMalformed
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return ErrMalformed
	}
	signingString := parts[0] + "." + parts[1]
	if err := s.cfg.signingMethod().Verify(signingString, sig, s.cfg.key()); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (any, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return s.cfg.key(), nil
}

func (s *Service[T]) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience[0]))
	}
	return opts
}
