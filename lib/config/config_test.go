// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inferex.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvConfig, EnvAPI, EnvAPIVersion, EnvToken, EnvUsername, EnvPassword, EnvLogLevel, EnvTimeout} {
		t.Setenv(name, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.URL != "https://api.inferex.com" {
		t.Errorf("expected api.url=https://api.inferex.com, got %s", cfg.API.URL)
	}
	if cfg.Deploy.Compression != "xz" {
		t.Errorf("expected deploy.compression=xz, got %s", cfg.Deploy.Compression)
	}
	if cfg.Deploy.SizeWarningBytes != 100_000_000 {
		t.Errorf("expected deploy.size_warning_bytes=100000000, got %d", cfg.Deploy.SizeWarningBytes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	clearEnvironment(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.API.URL != Default().API.URL {
		t.Errorf("expected default api.url, got %s", cfg.API.URL)
	}
}

func TestLoad_FromEnvironmentVariable(t *testing.T) {
	clearEnvironment(t)
	path := writeConfig(t, `
api:
  url: https://staging.inferex.dev
  version: v2
deploy:
  compression: zstd
`)
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.API.URL != "https://staging.inferex.dev" || cfg.API.Version != "v2" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Deploy.Compression != "zstd" {
		t.Errorf("expected compression=zstd, got %s", cfg.Deploy.Compression)
	}
	// Unset fields keep their defaults.
	if cfg.API.Timeout != "10m" {
		t.Errorf("expected default timeout, got %s", cfg.API.Timeout)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnvironment(t)
	path := writeConfig(t, `
api:
  url: https://file.example.com
auth:
  token: from-file
  username: file-user
`)
	t.Setenv(EnvAPI, "http://localhost:8000")
	t.Setenv(EnvToken, "from-env")
	t.Setenv(EnvPassword, "secret")
	t.Setenv(EnvTimeout, "30s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.API.URL != "http://localhost:8000" {
		t.Errorf("expected env api.url, got %s", cfg.API.URL)
	}
	if cfg.Auth.Token != "from-env" {
		t.Errorf("expected env token, got %s", cfg.Auth.Token)
	}
	if cfg.Auth.Username != "file-user" || cfg.Auth.Password != "secret" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil || timeout != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, %v", timeout, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnvironment(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestApplyEnvironment_IgnoresEmpty(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnvironment(func(name string) (string, bool) {
		return "", true
	})
	if cfg.API.URL != Default().API.URL {
		t.Errorf("empty variable overrode api.url: %s", cfg.API.URL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"bad url", func(c *Config) { c.API.URL = "api.inferex.com" }, "api.url"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, "api.timeout"},
		{"negative timeout", func(c *Config) { c.API.Timeout = "-1s" }, "must not be negative"},
		{"bad codec", func(c *Config) { c.Deploy.Compression = "rar" }, "deploy.compression"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, test.want)
			}
		})
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/ada")
	cfg := Default()
	cfg.Auth.SessionFile = "${HOME}/.inferex/token.json"
	cfg.expandVariables()
	if cfg.Auth.SessionFile != "/home/ada/.inferex/token.json" {
		t.Errorf("SessionFile = %s", cfg.Auth.SessionFile)
	}

	cfg.Auth.SessionFile = "${INFEREX_TEST_UNSET_DIR:-/tmp}/token.json"
	cfg.expandVariables()
	if cfg.Auth.SessionFile != "/tmp/token.json" {
		t.Errorf("SessionFile = %s", cfg.Auth.SessionFile)
	}
}
