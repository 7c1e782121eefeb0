package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Auth struct {
		JWT struct {
			Secret string `mapstructure:"secret"`
			Issuer string `mapstructure:"issuer"`
		} `mapstructure:"jwt"`
	} `mapstructure:"auth"`

	Server struct {
		Port        int    `mapstructure:"port"`
		MaxBodySize string `mapstructure:"max_body_size"`
	} `mapstructure:"server"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging defaults, got level %q", cfg.Logging.Level)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if !cfg.IsProduction() {
			t.Error("expected IsProduction")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: "development"}, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: "production"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: feedback
environment: staging
auth:
  jwt:
    issuer: feedback-test
server:
  port: 9090
  max_body_size: 2MB
`)

	var cfg testConfig
	if err := LoadConfig("feedback", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "feedback" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Auth.JWT.Issuer != "feedback-test" {
		t.Errorf("expected issuer from file, got %q", cfg.Auth.JWT.Issuer)
	}
	if cfg.Server.Port != 9090 || cfg.Server.MaxBodySize != "2MB" {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: feedback
server:
  port: 9090
`)
	t.Setenv("AUTH_JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("SERVER_MAX_BODY_SIZE", "4MB")

	var cfg testConfig
	if err := LoadConfig("feedback", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Auth.JWT.Secret != "from-env" {
		t.Errorf("expected secret from env, got %q", cfg.Auth.JWT.Secret)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port to win, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodySize != "4MB" {
		t.Errorf("expected underscored key from env, got %q", cfg.Server.MaxBodySize)
	}
	if cfg.Name != "feedback" {
		t.Errorf("expected name from file, got %q", cfg.Name)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "AUTH_JWT_SECRET=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("AUTH_JWT_SECRET") })

	var cfg testConfig
	err := LoadConfig("feedback", &cfg,
		WithConfigFile(filepath.Join(dir, "missing.yml")),
		WithEnvFile(envPath),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Auth.JWT.Secret != "from-dotenv" {
		t.Errorf("expected secret from .env, got %q", cfg.Auth.JWT.Secret)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "server: [unclosed\n")

	var cfg testConfig
	if err := LoadConfig("feedback", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/my-svc/config.yml": true,
		"./.env":                  true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("my-svc", LoaderConfig{})
	if files.ConfigFile != "./cmd/my-svc/config.yml" {
		t.Errorf("expected config file at ./cmd/my-svc/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected env file ./.env, got %q", files.EnvFile)
	}

	files = resolver.ResolveFiles("my-svc", LoaderConfig{ConfigFile: "/etc/feedback.yml"})
	if files.ConfigFile != "/etc/feedback.yml" {
		t.Errorf("explicit config file should win, got %q", files.ConfigFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("AUTH_JWT_SECRET")
	for _, want := range []string{"auth_jwt_secret", "auth.jwt.secret", "auth.jwt_secret"} {
		if !slices.Contains(got, want) {
			t.Errorf("variants %v missing %q", got, want)
		}
	}
	if got := envKeyVariants("PORT"); len(got) != 1 || got[0] != "port" {
		t.Errorf("single segment: got %v", got)
	}
}

func TestSections(t *testing.T) {
	got := sections(&testConfig{})
	for _, want := range []string{"name", "environment", "logging", "auth", "server"} {
		if !got[want] {
			t.Errorf("expected section %q in %v", want, got)
		}
	}
	if got["path"] || got["home"] {
		t.Errorf("unrelated names leaked into %v", got)
	}
}
