package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ctlabs/taskrouter/internal/config"
)

// NewClient builds a client from cfg.URL. A non-empty cfg.Password replaces
// any password carried in the URL. The connection is not checked; call Ping.
func NewClient(cfg config.RedisConfig) (goredis.UniversalClient, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	// Retries would hide a failed write from the caller.
	opts.MaxRetries = -1

	return goredis.NewClient(opts), nil
}

// Connect is NewClient followed by a PING. The client is closed on failure.
func Connect(ctx context.Context, cfg config.RedisConfig) (goredis.UniversalClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
