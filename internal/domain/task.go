package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskType names a kind of work. Each type has its own input queue.
type TaskType string

// Supported task types. Adding a type here makes it submittable and gives it
// a queue; removing one makes stored records of that type unreadable.
const (
	TaskTypeCalcHash    TaskType = "calc_hash"
	TaskTypeResizeImage TaskType = "resize_image"
	TaskTypeWaterMarks  TaskType = "water_marks"
)

// queueSuffix is appended to the task type to form its input queue name.
const queueSuffix = "_INPUT"

// TaskTypes returns every supported task type in a stable order.
func TaskTypes() []TaskType {
	return []TaskType{TaskTypeCalcHash, TaskTypeResizeImage, TaskTypeWaterMarks}
}

// ParseTaskType converts s to a TaskType.
// Returns ErrInvalidTaskType if s is not a supported type.
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(s)
	if !t.Valid() {
		return "", ErrInvalidTaskType
	}
	return t, nil
}

// Valid reports whether t is a supported task type.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeCalcHash, TaskTypeResizeImage, TaskTypeWaterMarks:
		return true
	default:
		return false
	}
}

// QueueName returns the name of the queue that receives tasks of this type.
func (t TaskType) QueueName() string {
	return string(t) + queueSuffix
}

// TaskStatus represents the processing state of a task.
type TaskStatus string

// Possible task status values. The router only ever writes TaskStatusCreated;
// workers move tasks forward from there.
const (
	TaskStatusCreated TaskStatus = "created"
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusError   TaskStatus = "error"
)

// ParseTaskStatus converts s to a TaskStatus.
// Returns ErrInvalidTaskStatus if s is not a known status.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if !st.Valid() {
		return "", ErrInvalidTaskStatus
	}
	return st, nil
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusCreated, TaskStatusPending, TaskStatusDone, TaskStatusError:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusError
}

// CanTransitionTo reports whether a task in status s may move to next.
// Progression is forward-only: created -> pending -> done|error, and
// created may jump straight to done|error.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusCreated:
		return next == TaskStatusPending || next == TaskStatusDone || next == TaskStatusError
	case TaskStatusPending:
		return next == TaskStatusDone || next == TaskStatusError
	default:
		return false
	}
}

// Task is a unit of work tracked by the router. Once persisted, the store owns
// the canonical copy; handlers only hold a transient one.
type Task struct {
	ID         uuid.UUID
	ExternalID *string
	Type       TaskType
	Status     TaskStatus
	CreatedAt  time.Time

	// Set by workers once the task reaches a terminal status.
	ProcessedAt   *time.Time
	ResultCode    *int
	ResultMessage *string

	// Upload is the caller-supplied input; Result is the worker output.
	Upload map[string]any
	Result map[string]any
}

// NewTask creates a new Task of the given type with a fresh UUID, status
// created and a UTC creation timestamp.
// Returns an error if validation fails.
func NewTask(taskType TaskType, upload map[string]any, externalID *string) (*Task, error) {
	task := &Task{
		ID:         uuid.New(),
		ExternalID: externalID,
		Type:       taskType,
		Status:     TaskStatusCreated,
		CreatedAt:  time.Now().UTC(),
		Upload:     upload,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("uuid", "is required", ErrInvalidID)
	}
	if !t.Type.Valid() {
		return NewValidationError("type", "is not a supported task type", ErrInvalidTaskType)
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "is not a known status", ErrInvalidTaskStatus)
	}
	if t.Upload == nil {
		return NewValidationError("upload", "is required", ErrMissingUpload)
	}
	return nil
}

// TaskUpdate is a partial set of task fields. Nil fields are left untouched.
type TaskUpdate struct {
	Status        *TaskStatus
	ProcessedAt   *time.Time
	ResultCode    *int
	ResultMessage *string
	Result        map[string]any
}

// Empty reports whether the update carries no fields.
func (u TaskUpdate) Empty() bool {
	return u.Status == nil && u.ProcessedAt == nil && u.ResultCode == nil &&
		u.ResultMessage == nil && u.Result == nil
}
