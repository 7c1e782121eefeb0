package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/feedback/bootstrap"
	"github.com/kbukum/feedback/component"
	"github.com/kbukum/feedback/identity"
	"github.com/kbukum/feedback/logger"
	"github.com/kbukum/feedback/server"
)

const testSecret = "feedbackd-test-secret-0123456789"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig() *Config {
	cfg := &Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Database.DSN = ":memory:"
	cfg.Database.LogLevel = "silent"
	cfg.Auth.JWT.Secret = testSecret
	cfg.Auth.Password.Argon2Memory = 64
	cfg.Auth.Password.Argon2Time = 1
	return cfg
}

func TestNewAppRequiresSecret(t *testing.T) {
	path := writeConfig(t, "name: feedbackd\n")
	cfg, err := loadConfig(path, "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	_, err = newApp(context.Background(), cfg, bootstrap.WithLogger(logger.Nop()))
	if err == nil || !strings.Contains(err.Error(), "secret is required") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
name: feedbackd
server:
  port: 9000
database:
  driver: postgres
  dsn: postgres://app:pw@db:5432/feedback
`)
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("SERVER_LOGIN_RATE_LIMIT", "5")

	cfg, err := loadConfig(path, "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Auth.JWT.Secret != testSecret {
		t.Errorf("expected secret from env")
	}
	if cfg.Server.Port != 9000 || cfg.Server.LoginRateLimit != 5 {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %q", cfg.Database.Driver)
	}
}

func TestServeEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = freePort(t)
	app, err := newApp(context.Background(), cfg, bootstrap.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		srv, ok := app.Components.Get(server.ComponentName).(component.Describable)
		if !ok {
			t.Fatal("http server component not registered")
		}
		base := "http://" + srv.Describe().Details
		client := &http.Client{Timeout: 5 * time.Second}

		status, _ := call(t, client, http.MethodGet, base+"/health", "", "")
		if status != http.StatusOK {
			t.Errorf("GET /health = %d", status)
		}

		status, _ = call(t, client, http.MethodPost, base+"/register", "",
			`{"username":"alice","password":"pw1","role":"student"}`)
		if status != http.StatusCreated {
			t.Fatalf("POST /register = %d", status)
		}

		status, body := call(t, client, http.MethodPost, base+"/login", "",
			`{"username":"alice","password":"pw1"}`)
		if status != http.StatusOK {
			t.Fatalf("POST /login = %d", status)
		}
		var token string
		if err := json.Unmarshal(body, &token); err != nil {
			t.Fatalf("login body %q: %v", body, err)
		}

		status, body = call(t, client, http.MethodGet, base+"/user", token, "")
		if status != http.StatusOK || !strings.Contains(string(body), `"username":"alice"`) {
			t.Errorf("GET /user = %d %s", status, body)
		}

		status, _ = call(t, client, http.MethodGet, base+"/users", "", "")
		if status != http.StatusUnauthorized {
			t.Errorf("GET /users without token = %d", status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
}

func call(t *testing.T, client *http.Client, method, url, token, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return res.StatusCode, b
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newCLI()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{serviceName}, args...))
	return strings.TrimSpace(out.String()), err
}

func TestGenerateSecretCommand(t *testing.T) {
	out, err := runCLI(t, "", "generate-secret")
	if err != nil {
		t.Fatal(err)
	}
	if b, err := hex.DecodeString(out); err != nil || len(b) != 32 {
		t.Errorf("expected 32 hex-encoded bytes, got %q", out)
	}
	if _, err := runCLI(t, "", "generate-secret", "--bytes", "8"); err == nil {
		t.Error("expected short secrets to be refused")
	}
}

func TestHashPasswordCommand(t *testing.T) {
	path := writeConfig(t, "auth:\n  password:\n    argon2_memory: 64\n    argon2_time: 1\n")
	out, err := runCLI(t, "hunter2\n", "hash-password", "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "$argon2id$") || strings.Contains(out, "hunter2") {
		t.Errorf("unexpected digest %q", out)
	}

	if _, err := runCLI(t, "", "hash-password", "--config", path); err == nil {
		t.Error("expected error for empty stdin")
	}
}

func TestIssueTokenCommand(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt:\n    secret: "+testSecret+"\n")
	out, err := runCLI(t, "", "issue-token", "--config", path,
		"--id", "7", "--username", "tess", "--role", "teacher", "--ttl", "10m")
	if err != nil {
		t.Fatal(err)
	}

	codec, err := identity.NewCodec(testConfig().Auth.JWT)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := codec.Validate(out)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if id := claims.Identity(); id.ID != 7 || id.Username != "tess" || id.Role != identity.RoleTeacher {
		t.Errorf("unexpected identity %+v", id)
	}

	if _, err := runCLI(t, "", "issue-token", "--config", path,
		"--id", "7", "--username", "tess", "--role", "superuser"); err == nil {
		t.Error("expected unknown role to be refused")
	}
}

func TestMigrateCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "feedback.db")
	path := writeConfig(t, "database:\n  driver: sqlite\n  dsn: "+dsn+"\n  log_level: silent\n")

	out, err := runCLI(t, "", "migrate", "--config", path, "version")
	if err != nil || out != "0" {
		t.Fatalf("version before up: %q, %v", out, err)
	}
	out, err = runCLI(t, "", "migrate", "--config", path, "up")
	if err != nil || out != "1" {
		t.Fatalf("up: %q, %v", out, err)
	}
	out, err = runCLI(t, "", "migrate", "--config", path, "down", "--steps", "1")
	if err != nil || out != "0" {
		t.Fatalf("down: %q, %v", out, err)
	}
}
