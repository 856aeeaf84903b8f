package testutils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ctlabs/taskrouter/internal/config"
	"github.com/ctlabs/taskrouter/internal/platform/redis"
)

// NewMiniRedis starts an in-memory Redis server that stops when the test ends,
// and returns it with a client connected to it.
func NewMiniRedis(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redis.NewClient(config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

// NewTestTaskStore returns a Redis task store backed by miniredis.
func NewTestTaskStore(t *testing.T, ttl time.Duration) (*redis.TaskStore, *miniredis.Miniredis) {
	t.Helper()

	mr, client := NewMiniRedis(t)
	return redis.NewTaskStore(client, ttl), mr
}
