package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Environment variables naming the configuration files.
const (
	EnvPrefix      = "TASKROUTER"
	ConfigFileEnv  = "TASKROUTER_CONFIG_FILE"
	SecretsFileEnv = "TASKROUTER_SECRETS_FILE"
)

// Files looked up in the working directory when no path is given.
const (
	DefaultConfigFile  = "config.yaml"
	DefaultSecretsFile = ".secrets.yaml"
)

var defaults = map[string]interface{}{
	"server.port":              8000,
	"server.log_level":         "info",
	"vault.jwt_auth_path":      "auth/jwt",
	"vault.jwt_role":           "dynamic",
	"vault.userpass_auth_path": "auth/userpass",
	"task.ttl_seconds":         3600,
}

// keys lists every setting so AutomaticEnv can see keys that have no default.
var keys = []string{
	"server.port",
	"server.log_level",
	"vault.url",
	"vault.token",
	"vault.jwt_auth_path",
	"vault.jwt_role",
	"vault.userpass_auth_path",
	"redis.url",
	"redis.password",
	"task.ttl_seconds",
}

// Load reads configuration using the file paths named by TASKROUTER_CONFIG_FILE
// and TASKROUTER_SECRETS_FILE. Environment variables take precedence over
// both files, and the secrets file takes precedence over the config file.
func Load() (*Config, error) {
	return LoadFiles(os.Getenv(ConfigFileEnv), os.Getenv(SecretsFileEnv))
}

// LoadFiles is Load with explicit file paths. An empty path falls back to the
// default file name, which is skipped if absent. A named file that does not
// exist is an error.
func LoadFiles(configPath, secretsPath string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := readFile(v, configPath, DefaultConfigFile, false); err != nil {
		return nil, err
	}
	if err := readFile(v, secretsPath, DefaultSecretsFile, true); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func readFile(v *viper.Viper, path, fallback string, merge bool) error {
	explicit := path != ""
	if !explicit {
		path = fallback
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(path)

	var err error
	if merge {
		err = v.MergeInConfig()
	} else {
		err = v.ReadInConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}
