// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), perm))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Client.Host)
	assert.Equal(t, DefaultCustomer, cfg.Client.Customer)
	assert.Empty(t, cfg.Client.User)
	assert.Empty(t, cfg.Client.Password)
	assert.Equal(t, DefaultLocalHost, cfg.Local.Host)
	assert.Equal(t, DefaultPageSize, cfg.Transport.PageSize)
	assert.Equal(t, "auto", cfg.Console.Color)
}

func TestLoad_TOMLFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, ".riskapi", "config.toml")
	writeFile(t, path, `
[client]
host = "risk.example.com"
user = "jdoe"
password = "s3cret"

[transport]
requests_per_second = 2.5
`, 0644)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "risk.example.com", cfg.Client.Host)
	assert.Equal(t, DefaultCustomer, cfg.Client.Customer, "missing keys fall back to defaults")
	assert.Equal(t, "jdoe", cfg.Client.User)
	assert.Equal(t, "s3cret", cfg.Client.Password)
	assert.InDelta(t, 2.5, cfg.Transport.RequestsPerSecond, 0.0001)
	assert.Equal(t, DefaultTimeoutSecs, cfg.Transport.TimeoutSecs)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoad_JSONFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".riskapi", "config.json"),
		`{"client": {"customer": "acme"}, "local": {"host": "127.0.0.1:9000"}}`, 0600)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Client.Customer)
	assert.Equal(t, "127.0.0.1:9000", cfg.Local.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".riskapi", "config.toml"), "[client]\nhost = \"file.example.com\"\n", 0600)
	t.Setenv("RISKAPI_HOST", "env.example.com")
	t.Setenv("RISKAPI_USER", "envuser")
	t.Setenv("RISKAPI_LOCAL_HOST", "localhost:9999")
	t.Setenv("RISKAPI_PAGE_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env.example.com", cfg.Client.Host)
	assert.Equal(t, "envuser", cfg.Client.User)
	assert.Equal(t, "localhost:9999", cfg.Local.Host)
	assert.Equal(t, 50, cfg.Transport.PageSize)
}

func TestLoadFromPath_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	writeFile(t, path, "[client\nhost=", 0600)

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.toml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"scheme in host", func(c *Config) { c.Client.Host = "https://x" }, "client.host"},
		{"empty local host", func(c *Config) { c.Local.Host = " " }, "local.host"},
		{"negative timeout", func(c *Config) { c.Transport.TimeoutSecs = -1 }, "transport.timeout_secs"},
		{"negative rate", func(c *Config) { c.Transport.RequestsPerSecond = -3 }, "transport.requests_per_second"},
		{"zero page size", func(c *Config) { c.Transport.PageSize = 0 }, "transport.page_size"},
		{"bad log level", func(c *Config) { c.Console.LogLevel = "loud" }, "console.log_level"},
		{"bad color", func(c *Config) { c.Console.Color = "sometimes" }, "console.color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfigString_MasksPassword(t *testing.T) {
	cfg := Default()
	cfg.Client.Password = "hunter2"

	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "********")
	assert.Equal(t, "hunter2", cfg.Client.Password, "String must not mutate the receiver")
}
