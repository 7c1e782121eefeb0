package identity

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/feedback/auth/jwt"
)

// Codec issues and validates identity tokens. It is safe for concurrent use.
type Codec struct {
	svc *jwt.Service[*Claims]
}

// NewCodec builds a codec from the signing configuration. It fails when no
// usable secret is configured.
func NewCodec(cfg jwt.Config, opts ...jwt.Option) (*Codec, error) {
	svc, err := jwt.NewService(&cfg, func() *Claims { return &Claims{} }, opts...)
	if err != nil {
		return nil, err
	}
	return &Codec{svc: svc}, nil
}

// TTL returns the default token lifetime.
func (c *Codec) TTL() time.Duration { return c.svc.TTL() }

// Issue signs a token for the given account. ttl <= 0 uses the default
// lifetime.
func (c *Codec) Issue(accountID int64, username string, role Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.svc.TTL()
	}
	now := c.svc.Now()
	claims := &Claims{
		Subject:   accountID,
		Username:  username,
		Role:      role,
		ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  gojwt.NewNumericDate(now),
		Issuer:    c.svc.Issuer(),
		Audience:  c.svc.Audience(),
	}
	return c.svc.Generate(claims)
}

// Validate verifies token and returns its claims. The error wraps one of
// jwt.ErrMalformed, jwt.ErrInvalidSignature or jwt.ErrExpired.
func (c *Codec) Validate(token string) (*Claims, error) {
	claims, err := c.svc.Parse(token)
	if err != nil {
		return nil, err
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", jwt.ErrMalformed, claims.Role)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username", jwt.ErrMalformed)
	}
	return claims, nil
}

// ValidateToken implements auth.TokenValidator. The returned value is an
// Identity.
func (c *Codec) ValidateToken(token string) (any, error) {
	claims, err := c.Validate(token)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}
