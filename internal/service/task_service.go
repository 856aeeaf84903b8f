package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
	"github.com/ctlabs/taskrouter/internal/store"
)

// SubmitTaskInput carries a validated submission.
type SubmitTaskInput struct {
	Type       domain.TaskType
	ExternalID *string
	Upload     map[string]any
}

// FinishTaskInput carries a worker's outcome for a task.
type FinishTaskInput struct {
	Status  domain.TaskStatus
	Code    *int
	Message *string
	Result  map[string]any
}

// TaskService provides task operations for the gateway and for workers.
type TaskService interface {
	// Submit creates a record for the task and pushes its id onto the queue
	// for its type. The record is written before the id is enqueued.
	Submit(ctx context.Context, input SubmitTaskInput) (*domain.Task, error)

	// Get returns the stored record for id.
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Finish moves a task forward and records its outcome. Terminal statuses
	// also stamp the processing time.
	Finish(ctx context.Context, id uuid.UUID, input FinishTaskInput) (*domain.Task, error)

	// Next pops the oldest task id waiting on the queue for taskType.
	// Returns ok == false if nothing arrived within timeout.
	Next(ctx context.Context, taskType domain.TaskType, timeout time.Duration) (id uuid.UUID, ok bool, err error)
}

type taskServiceImpl struct {
	store  store.TaskStore
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService creates a TaskService. ttl is the lifetime of new records;
// a ttl <= 0 defers to the store's default.
func NewTaskService(taskStore store.TaskStore, ttl time.Duration, logger *slog.Logger) (TaskService, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		store:  taskStore,
		ttl:    ttl,
		logger: logger.With("component", "task_service"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *taskServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Submit persists then enqueues. If the enqueue fails the record stays
// behind until its TTL expires; nothing is rolled back.
func (s *taskServiceImpl) Submit(ctx context.Context, input SubmitTaskInput) (*domain.Task, error) {
	log := s.log(ctx)

	task, err := domain.NewTask(input.Type, input.Upload, input.ExternalID)
	if err != nil {
		log.Debug("rejected task submission", "task_type", input.Type, "error", err)
		return nil, err
	}

	if err := s.store.Create(ctx, task, s.ttl); err != nil {
		return nil, NewTaskServiceError("submit", "failed to persist task", err)
	}

	queue := task.Type.QueueName()
	if err := s.store.Enqueue(ctx, queue, task.ID); err != nil {
		log.Error("task persisted but not enqueued",
			"task_id", task.ID,
			"queue", queue,
			"error", err)
		return nil, NewTaskServiceError("submit", "failed to enqueue task", err)
	}

	log.Info("task submitted",
		"task_id", task.ID,
		"task_type", task.Type,
		"queue", queue)
	return task, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("get", "failed to read task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Finish(ctx context.Context, id uuid.UUID, input FinishTaskInput) (*domain.Task, error) {
	log := s.log(ctx)

	if !input.Status.Valid() {
		return nil, domain.NewValidationError("status", "is not a known status", domain.ErrInvalidTaskStatus)
	}

	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("finish", "failed to read task", err)
	}

	if task.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: task %s is %s", ErrTaskFinished, id, task.Status)
	}
	if !task.Status.CanTransitionTo(input.Status) {
		return nil, domain.NewValidationError("status",
			fmt.Sprintf("cannot move from %s to %s", task.Status, input.Status),
			domain.ErrInvalidTransition)
	}

	update := domain.TaskUpdate{
		Status:        &input.Status,
		ResultCode:    input.Code,
		ResultMessage: input.Message,
		Result:        input.Result,
	}
	if input.Status.IsTerminal() {
		processed := s.now()
		update.ProcessedAt = &processed
	}

	if err := s.store.Update(ctx, id, update); err != nil {
		return nil, NewTaskServiceError("finish", "failed to update task", err)
	}

	task.Status = input.Status
	task.ProcessedAt = update.ProcessedAt
	if input.Code != nil {
		task.ResultCode = input.Code
	}
	if input.Message != nil {
		task.ResultMessage = input.Message
	}
	if input.Result != nil {
		task.Result = input.Result
	}

	log.Info("task status changed", "task_id", id, "status", input.Status)
	return task, nil
}

func (s *taskServiceImpl) Next(ctx context.Context, taskType domain.TaskType, timeout time.Duration) (uuid.UUID, bool, error) {
	if !taskType.Valid() {
		return uuid.Nil, false, domain.NewValidationError("type", "is not a supported task type", domain.ErrInvalidTaskType)
	}

	raw, ok, err := s.store.Dequeue(ctx, taskType.QueueName(), timeout)
	if err != nil {
		return uuid.Nil, false, NewTaskServiceError("next", "failed to dequeue task", err)
	}
	if !ok {
		return uuid.Nil, false, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		s.log(ctx).Warn("discarding malformed queue entry", "queue", taskType.QueueName(), "entry", raw)
		return uuid.Nil, false, fmt.Errorf("%w: queue entry %q", domain.ErrInvalidID, raw)
	}
	return id, true, nil
}
