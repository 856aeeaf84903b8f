package config

import "time"

// Config holds all application configuration.
// It is loaded once at startup and passed by pointer to constructors; nothing
// mutates it afterwards.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Vault  VaultConfig  `mapstructure:"vault" validate:"required"`
	Redis  RedisConfig  `mapstructure:"redis" validate:"required"`
	Task   TaskConfig   `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// VaultConfig describes how to reach the identity provider.
type VaultConfig struct {
	URL   string `mapstructure:"url" validate:"required,url"`
	Token string `mapstructure:"token" validate:"required"`
	// Mount paths of the two auth methods, without the "v1/" prefix.
	JWTAuthPath      string `mapstructure:"jwt_auth_path" validate:"required"`
	JWTRole          string `mapstructure:"jwt_role" validate:"required"`
	UserpassAuthPath string `mapstructure:"userpass_auth_path" validate:"required"`
}

// RedisConfig contains the task store connection settings.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
	// Password overrides any password embedded in URL when non-empty.
	Password string `mapstructure:"password"`
}

// TaskConfig holds task record settings.
type TaskConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"required,gt=0"`
}

// TTL returns the record lifetime as a duration.
func (c TaskConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
