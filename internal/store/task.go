package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ctlabs/taskrouter/internal/domain"
)

// TaskStore defines persistence for task records and the named FIFO queues
// that carry task ids to workers. Implementations must be safe for concurrent use.
type TaskStore interface {
	// Create writes every field of task as a single record and sets its TTL.
	// A ttl <= 0 selects the store's configured default.
	Create(ctx context.Context, task *domain.Task, ttl time.Duration) error

	// Get reconstructs the record stored for id.
	// Returns ErrTaskNotFound if no record exists (including after TTL expiry)
	// and an error wrapping ErrMalformedRecord if the stored fields no longer
	// form a valid task.
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update merges the set fields of update into the record for id.
	// The TTL is left untouched and the record is not required to exist.
	Update(ctx context.Context, id uuid.UUID, update domain.TaskUpdate) error

	// Enqueue pushes id onto the named queue, creating the queue on first use.
	Enqueue(ctx context.Context, queue string, id uuid.UUID) error

	// Dequeue pops the oldest id from the named queue, waiting at most timeout.
	// A zero timeout waits indefinitely. On expiry it returns ok == false and
	// a nil error.
	Dequeue(ctx context.Context, queue string, timeout time.Duration) (id string, ok bool, err error)

	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error
}
