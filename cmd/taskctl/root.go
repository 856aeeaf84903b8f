package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctlabs/taskrouter/internal/config"
	"github.com/ctlabs/taskrouter/internal/platform/redis"
	"github.com/ctlabs/taskrouter/internal/service"
)

// serviceOpener builds a TaskService from loaded configuration. The returned
// func releases its connections.
type serviceOpener func(ctx context.Context, cfg *config.Config) (service.TaskService, func(), error)

// cli carries the state shared by all subcommands.
type cli struct {
	configPath  string
	secretsPath string
	open        serviceOpener
}

func newRootCmd(open serviceOpener) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:   "taskctl",
		Short: "Operate the task router",
		Long: `taskctl inspects and drives the task router's Redis store.
It uses the server's configuration files, so it sees the same records and
queues the gateway writes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "",
		"config file (default $"+config.ConfigFileEnv+" or "+config.DefaultConfigFile+")")
	root.PersistentFlags().StringVar(&c.secretsPath, "secrets", "",
		"secrets file (default $"+config.SecretsFileEnv+" or "+config.DefaultSecretsFile+")")

	root.AddCommand(c.configCmd())
	root.AddCommand(c.taskCmd())
	root.AddCommand(c.queueCmd())
	root.AddCommand(policyCmd())

	return root
}

// loadConfig reads configuration, letting flags override the environment.
func (c *cli) loadConfig() (*config.Config, error) {
	configPath, secretsPath := c.configPath, c.secretsPath
	if configPath == "" {
		configPath = os.Getenv(config.ConfigFileEnv)
	}
	if secretsPath == "" {
		secretsPath = os.Getenv(config.SecretsFileEnv)
	}
	return config.LoadFiles(configPath, secretsPath)
}

// withService runs fn against a TaskService built from configuration.
func (c *cli) withService(cmd *cobra.Command, fn func(ctx context.Context, svc service.TaskService) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, closeFn, err := c.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(ctx, svc)
}

// openTaskService connects to Redis and returns a service over it. Log output
// is discarded below warn so command output stays readable.
func openTaskService(ctx context.Context, cfg *config.Config) (service.TaskService, func(), error) {
	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc, err := service.NewTaskService(redis.NewTaskStore(client, cfg.Task.TTL()), cfg.Task.TTL(), log)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return svc, func() { _ = client.Close() }, nil
}
