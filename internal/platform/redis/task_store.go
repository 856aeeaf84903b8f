package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
	"github.com/ctlabs/taskrouter/internal/store"
)

// DefaultTTL is used when neither the caller nor the store specifies one.
const DefaultTTL = time.Hour

// TaskStore implements store.TaskStore using Redis hashes and lists.
type TaskStore struct {
	client     goredis.UniversalClient
	defaultTTL time.Duration
}

// Compile-time check that TaskStore satisfies the interface.
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore. A defaultTTL <= 0 selects DefaultTTL.
func NewTaskStore(client goredis.UniversalClient, defaultTTL time.Duration) *TaskStore {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &TaskStore{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

// Create writes the full record and its TTL in one MULTI/EXEC transaction so
// a record never exists without an expiry.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task, ttl time.Duration) error {
	log := logger.FromContext(ctx)

	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	fields, err := encodeTask(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	key := taskKey(task.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		log.Error("failed to create task record",
			"task_id", task.ID,
			"task_type", task.Type,
			"error", err)
		return store.NewStoreError("task", "create", "failed to write task record", err)
	}

	log.Debug("task record created", "task_id", task.ID, "ttl", ttl)
	return nil
}

// Get reads the record for id.
func (s *TaskStore) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	fields, err := s.client.HGetAll(ctx, taskKey(id)).Result()
	if err != nil {
		log.Error("failed to read task record", "task_id", id, "error", err)
		return nil, store.NewStoreError("task", "get", "failed to read task record", err)
	}
	if len(fields) == 0 {
		return nil, store.ErrTaskNotFound
	}

	task, err := decodeTask(id, fields)
	if err != nil {
		log.Warn("stored task record is malformed", "task_id", id, "error", err)
		return nil, err
	}
	return task, nil
}

// Update writes only the fields set in update. The key's TTL is preserved
// because HSET on an existing hash does not touch it.
func (s *TaskStore) Update(ctx context.Context, id uuid.UUID, update domain.TaskUpdate) error {
	log := logger.FromContext(ctx)

	if update.Empty() {
		return nil
	}

	fields, err := encodeUpdate(update)
	if err != nil {
		return fmt.Errorf("failed to encode task update: %w", err)
	}

	if err := s.client.HSet(ctx, taskKey(id), fields).Err(); err != nil {
		log.Error("failed to update task record", "task_id", id, "error", err)
		return store.NewStoreError("task", "update", "failed to update task record", err)
	}
	return nil
}

// Enqueue pushes id onto the head of queue.
func (s *TaskStore) Enqueue(ctx context.Context, queue string, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	if err := s.client.LPush(ctx, queue, id.String()).Err(); err != nil {
		log.Error("failed to enqueue task", "task_id", id, "queue", queue, "error", err)
		return store.NewStoreError("queue", "enqueue", "failed to push task id", err)
	}

	log.Debug("task enqueued", "task_id", id, "queue", queue)
	return nil
}

// Dequeue pops from the tail of queue, blocking up to timeout.
func (s *TaskStore) Dequeue(ctx context.Context, queue string, timeout time.Duration) (string, bool, error) {
	if timeout < 0 {
		timeout = 0
	}

	res, err := s.client.BRPop(ctx, timeout, queue).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to dequeue task", "queue", queue, "error", err)
		return "", false, store.NewStoreError("queue", "dequeue", "failed to pop task id", err)
	}

	// BRPOP replies with [queue, value].
	if len(res) != 2 {
		return "", false, store.NewStoreError("queue", "dequeue", "unexpected reply", fmt.Errorf("got %d elements", len(res)))
	}
	return res[1], true, nil
}

// Ping checks that Redis is reachable.
func (s *TaskStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return store.NewStoreError("redis", "ping", "redis is unreachable", err)
	}
	return nil
}
