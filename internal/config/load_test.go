package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test.
// An empty value clears the variable.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
		if value == "" {
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"TASKROUTER_VAULT_URL":   "http://127.0.0.1:8200",
		"TASKROUTER_VAULT_TOKEN": "hvs.test-token",
		"TASKROUTER_REDIS_URL":   "redis://localhost:6379/0",
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoadDefaults verifies the defaults applied when only required values are set.
func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	env := requiredEnv()
	env["TASKROUTER_SERVER_PORT"] = ""
	env["TASKROUTER_SERVER_LOG_LEVEL"] = ""
	setupEnv(t, env)

	cfg, err := LoadFiles("", "")

	require.NoError(t, err, "LoadFiles should succeed with defaults")
	require.NotNil(t, cfg)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "auth/jwt", cfg.Vault.JWTAuthPath)
	assert.Equal(t, "dynamic", cfg.Vault.JWTRole)
	assert.Equal(t, "auth/userpass", cfg.Vault.UserpassAuthPath)
	assert.Equal(t, 3600, cfg.Task.TTLSeconds)
	assert.Equal(t, time.Hour, cfg.Task.TTL())
	assert.Empty(t, cfg.Redis.Password)
}

// TestLoadFromEnv verifies that environment variables are read.
func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	env := requiredEnv()
	env["TASKROUTER_SERVER_PORT"] = "9090"
	env["TASKROUTER_SERVER_LOG_LEVEL"] = "debug"
	env["TASKROUTER_REDIS_PASSWORD"] = "s3cret"
	env["TASKROUTER_TASK_TTL_SECONDS"] = "60"
	setupEnv(t, env)

	cfg, err := LoadFiles("", "")

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "http://127.0.0.1:8200", cfg.Vault.URL)
	assert.Equal(t, "hvs.test-token", cfg.Vault.Token)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.Equal(t, time.Minute, cfg.Task.TTL())
}

// TestLoadFilesMergesSecrets checks that the secrets file is layered on top of
// the config file and that the environment wins over both.
func TestLoadFilesMergesSecrets(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setupEnv(t, map[string]string{
		"TASKROUTER_VAULT_URL":        "",
		"TASKROUTER_VAULT_TOKEN":      "",
		"TASKROUTER_REDIS_URL":        "",
		"TASKROUTER_REDIS_PASSWORD":   "",
		"TASKROUTER_SERVER_LOG_LEVEL": "warn",
	})

	configPath := writeFile(t, dir, "router.yaml", `
server:
  port: 8100
  log_level: debug
vault:
  url: http://vault.internal:8200
  token: placeholder
redis:
  url: redis://redis.internal:6379/2
task:
  ttl_seconds: 120
`)
	secretsPath := writeFile(t, dir, "secrets.json", `{"vault": {"token": "hvs.real"}, "redis": {"password": "pw"}}`)

	cfg, err := LoadFiles(configPath, secretsPath)

	require.NoError(t, err)
	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Server.LogLevel, "environment should override files")
	assert.Equal(t, "http://vault.internal:8200", cfg.Vault.URL)
	assert.Equal(t, "hvs.real", cfg.Vault.Token, "secrets file should override config file")
	assert.Equal(t, "pw", cfg.Redis.Password)
	assert.Equal(t, "auth/jwt", cfg.Vault.JWTAuthPath, "defaults still apply")
	assert.Equal(t, 120, cfg.Task.TTLSeconds)
}

// TestLoadDefaultFiles checks that config.yaml and .secrets.yaml in the
// working directory are picked up without explicit paths.
func TestLoadDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setupEnv(t, map[string]string{
		"TASKROUTER_VAULT_URL":   "",
		"TASKROUTER_VAULT_TOKEN": "",
		"TASKROUTER_REDIS_URL":   "",
		ConfigFileEnv:            "",
		SecretsFileEnv:           "",
	})

	writeFile(t, dir, DefaultConfigFile, "vault:\n  url: http://localhost:8200\nredis:\n  url: redis://localhost:6379\n")
	writeFile(t, dir, DefaultSecretsFile, "vault:\n  token: hvs.from-default\n")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "hvs.from-default", cfg.Vault.Token)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	setupEnv(t, requiredEnv())

	_, err := LoadFiles(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = LoadFiles("", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// TestLoadValidationErrors verifies that invalid values are rejected.
func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{name: "missing vault url", envVar: "TASKROUTER_VAULT_URL", value: ""},
		{name: "missing vault token", envVar: "TASKROUTER_VAULT_TOKEN", value: ""},
		{name: "missing redis url", envVar: "TASKROUTER_REDIS_URL", value: ""},
		{name: "invalid vault url", envVar: "TASKROUTER_VAULT_URL", value: "not a url"},
		{name: "port too large", envVar: "TASKROUTER_SERVER_PORT", value: "70000"},
		{name: "unknown log level", envVar: "TASKROUTER_SERVER_LOG_LEVEL", value: "verbose"},
		{name: "negative ttl", envVar: "TASKROUTER_TASK_TTL_SECONDS", value: "-5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			env := requiredEnv()
			env[tc.envVar] = tc.value
			setupEnv(t, env)

			cfg, err := LoadFiles("", "")

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}
