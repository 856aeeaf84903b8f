// Package main implements the task router server: an HTTP gateway that
// authenticates callers against Vault, stores submitted tasks in Redis and
// queues them for workers.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/ctlabs/taskrouter/internal/config"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
)

func main() {
	cfg, logr, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logr)
	if err != nil {
		logr.Error("Failed to start application", "error", err)
		log.Fatalf("Failed to start application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		logr.Error("Application stopped with error", "error", err)
		log.Fatalf("Application error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logr, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	logr.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"task_ttl_seconds", cfg.Task.TTLSeconds)
	logr.Debug("Vault configuration",
		"jwt_auth_path", cfg.Vault.JWTAuthPath,
		"jwt_role", cfg.Vault.JWTRole,
		"userpass_auth_path", cfg.Vault.UserpassAuthPath,
		"token_present", cfg.Vault.Token != "")

	return cfg, logr, nil
}
