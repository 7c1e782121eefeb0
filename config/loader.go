// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment, in increasing precedence.
//
// Environment variables map onto nested keys by splitting on underscores,
// so AUTH_JWT_SECRET sets auth.jwt.secret. Only variables whose first
// segment names a top-level section of the target struct are bound.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file lookups for testing.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the OS.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment. Variables already set
// are not overridden.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, searching the
// standard locations for any that is empty.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../../cmd/%s/config.yml", serviceName),
		"./config/config.yml",
		"./config.yml",
	}
}

func envCandidates(serviceName string) []string {
	var out []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		out = append(out,
			fmt.Sprintf("./cmd/%s/%s", serviceName, name),
			fmt.Sprintf("../cmd/%s/%s", serviceName, name),
			"./"+name,
			"../"+name,
		)
	}
	return out
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for serviceName into cfg, a pointer to a
// struct with mapstructure tags. A missing config file is not an error; an
// unreadable one is.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)
	v := viper.New()

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", files.EnvFile, err)
		}
	}

	bindEnv(v, sections(cfg), os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every key variant of the environment variables that belong
// to one of the known top-level sections.
func bindEnv(v *viper.Viper, known map[string]bool, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		section, _, _ := strings.Cut(strings.ToLower(key), "_")
		if !known[section] {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants returns the nested keys an environment variable may
// address, since segment names may themselves contain underscores:
//
//	AUTH_JWT_SECRET -> auth_jwt_secret, auth.jwt.secret, auth.jwt_secret
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}

	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		// Nest the first i segments, keep the rest as one key.
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return out
}

// sections returns the top-level mapstructure keys of the struct cfg
// points to, descending into squashed embedded structs.
func sections(cfg any) map[string]bool {
	out := make(map[string]bool)
	t := reflect.TypeOf(cfg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return out
	}
	collectSections(t, out)
	return out
}

func collectSections(t reflect.Type, out map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if strings.Contains(opts, "squash") && f.Type.Kind() == reflect.Struct {
			collectSections(f.Type, out)
			continue
		}
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		// A section name with an underscore is addressed by its first segment.
		first, _, _ := strings.Cut(name, "_")
		out[first] = true
	}
}
