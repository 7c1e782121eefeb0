package auth

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "auth.jwt") {
		t.Fatalf("expected missing secret to fail, got %v", err)
	}

	cfg.JWT.Secret = "a-secret-long-enough-for-hs256"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWT.AccessTokenTTL != time.Hour {
		t.Errorf("expected 1h default TTL, got %s", cfg.JWT.AccessTokenTTL)
	}

	cfg.Password.Algorithm = "md5"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "auth.password") {
		t.Errorf("expected password config error, got %v", err)
	}
}

func TestConfig_DescribeHidesSecret(t *testing.T) {
	cfg := Config{}
	cfg.JWT.Secret = "super-secret-value-123"
	cfg.ApplyDefaults()

	d := cfg.Describe()
	if strings.Contains(d, cfg.JWT.Secret) {
		t.Error("Describe must not reveal the secret")
	}
	if !strings.Contains(d, "HS256") || !strings.Contains(d, "argon2id") {
		t.Errorf("unexpected description %q", d)
	}
}

func TestTokenValidatorFunc(t *testing.T) {
	v := TokenValidatorFunc(func(token string) (any, error) { return token + "!", nil })
	got, err := v.ValidateToken("x")
	if err != nil || got != "x!" {
		t.Errorf("ValidateToken = %v, %v", got, err)
	}
}
