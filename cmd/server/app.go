package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ctlabs/taskrouter/internal/config"
	"github.com/ctlabs/taskrouter/internal/platform/redis"
	"github.com/ctlabs/taskrouter/internal/platform/vault"
	"github.com/ctlabs/taskrouter/internal/service"
	"github.com/ctlabs/taskrouter/internal/service/auth"
	"github.com/ctlabs/taskrouter/internal/store"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	redisClient goredis.UniversalClient
	taskStore   store.TaskStore

	gate        *auth.Gate
	taskService service.TaskService
}

// newApplication connects to Redis and Vault and builds the services. Both
// backends are checked before the server accepts traffic.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Redis connection established")

	vaultClient, err := vault.NewClient(cfg.Vault)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if err := vaultClient.CheckToken(ctx); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to verify vault token: %w", err)
	}
	logger.Info("Vault client initialized", "url", cfg.Vault.URL)

	return newApplicationWithDeps(cfg, logger, redisClient, vaultClient)
}

// newApplicationWithDeps wires the services around already-connected
// backends.
func newApplicationWithDeps(
	cfg *config.Config,
	logger *slog.Logger,
	redisClient goredis.UniversalClient,
	provider auth.IdentityProvider,
) (*application, error) {
	app := &application{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
		taskStore:   redis.NewTaskStore(redisClient, cfg.Task.TTL()),
		gate:        auth.NewGate(auth.NewVerifier(provider)),
	}

	var err error
	app.taskService, err = service.NewTaskService(app.taskStore, cfg.Task.TTL(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases backend connections.
func (app *application) cleanup() {
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
