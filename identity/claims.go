package identity

import (
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an identity token.
type Claims struct {
	Subject   int64              `json:"sub"`
	Username  string             `json:"username"`
	Role      Role               `json:"role"`
	ExpiresAt *gojwt.NumericDate `json:"exp"`
	IssuedAt  *gojwt.NumericDate `json:"iat,omitempty"`
	Issuer    string             `json:"iss,omitempty"`
	Audience  gojwt.ClaimStrings `json:"aud,omitempty"`
}

// Identity returns the identity the claims assert.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.Subject, Username: c.Username, Role: c.Role}
}

// Expiry returns the expiry instant, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// gojwt.Claims

func (c *Claims) GetExpirationTime() (*gojwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*gojwt.NumericDate, error) { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*gojwt.NumericDate, error) { return nil, nil }
func (c *Claims) GetIssuer() (string, error) { return c.Issuer, nil }
func (c *Claims) GetAudience() (gojwt.ClaimStrings, error) { return c.Audience, nil }

func (c *Claims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}
