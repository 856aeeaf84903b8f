package redis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/store"
)

// Hash field names of a task record.
const (
	fieldUUID       = "uuid"
	fieldType       = "type"
	fieldStatus     = "status"
	fieldCreated    = "created"
	fieldExternalID = "external_id"
	fieldUpload     = "upload"
	fieldProcessed  = "processed"
	fieldCode       = "code"
	fieldMessage    = "message"
	fieldResult     = "result"
)

const keyPrefix = "task:"

func taskKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// encodeTask renders every field of t as a JSON value. Unset optionals are
// written as null so a fresh record always has the full field set.
func encodeTask(t *domain.Task) (map[string]any, error) {
	values := map[string]any{
		fieldUUID:       t.ID.String(),
		fieldType:       string(t.Type),
		fieldStatus:     string(t.Status),
		fieldCreated:    t.CreatedAt,
		fieldExternalID: t.ExternalID,
		fieldUpload:     t.Upload,
		fieldProcessed:  t.ProcessedAt,
		fieldCode:       t.ResultCode,
		fieldMessage:    t.ResultMessage,
		fieldResult:     t.Result,
	}
	return encodeFields(values)
}

// encodeUpdate renders only the fields set in u.
func encodeUpdate(u domain.TaskUpdate) (map[string]any, error) {
	values := make(map[string]any)
	if u.Status != nil {
		values[fieldStatus] = string(*u.Status)
	}
	if u.ProcessedAt != nil {
		values[fieldProcessed] = u.ProcessedAt.UTC()
	}
	if u.ResultCode != nil {
		values[fieldCode] = *u.ResultCode
	}
	if u.ResultMessage != nil {
		values[fieldMessage] = *u.ResultMessage
	}
	if u.Result != nil {
		values[fieldResult] = u.Result
	}
	return encodeFields(values)
}

func encodeFields(values map[string]any) (map[string]any, error) {
	fields := make(map[string]any, len(values))
	for name, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", name, err)
		}
		fields[name] = string(raw)
	}
	return fields, nil
}

// decodeTask rebuilds a task from the raw hash fields read for id.
// Type and status are required and must be known values; every other field
// is optional. Any failure wraps store.ErrMalformedRecord.
func decodeTask(id uuid.UUID, fields map[string]string) (*domain.Task, error) {
	typeName, err := decodeField[string](fields, fieldType)
	if err != nil {
		return nil, err
	}
	if typeName == nil {
		return nil, malformed(fieldType, domain.ErrInvalidTaskType)
	}
	taskType, err := domain.ParseTaskType(*typeName)
	if err != nil {
		return nil, malformed(fieldType, err)
	}

	statusName, err := decodeField[string](fields, fieldStatus)
	if err != nil {
		return nil, err
	}
	if statusName == nil {
		return nil, malformed(fieldStatus, domain.ErrInvalidTaskStatus)
	}
	status, err := domain.ParseTaskStatus(*statusName)
	if err != nil {
		return nil, malformed(fieldStatus, err)
	}

	task := &domain.Task{ID: id, Type: taskType, Status: status}

	if raw, err := decodeField[string](fields, fieldUUID); err != nil {
		return nil, err
	} else if raw != nil {
		parsed, err := uuid.Parse(*raw)
		if err != nil || parsed != id {
			return nil, malformed(fieldUUID, domain.ErrInvalidID)
		}
	}

	created, err := decodeField[time.Time](fields, fieldCreated)
	if err != nil {
		return nil, err
	}
	if created != nil {
		task.CreatedAt = created.UTC()
	}

	if task.ExternalID, err = decodeField[string](fields, fieldExternalID); err != nil {
		return nil, err
	}
	if task.ProcessedAt, err = decodeField[time.Time](fields, fieldProcessed); err != nil {
		return nil, err
	}
	if task.ResultCode, err = decodeField[int](fields, fieldCode); err != nil {
		return nil, err
	}
	if task.ResultMessage, err = decodeField[string](fields, fieldMessage); err != nil {
		return nil, err
	}

	upload, err := decodeField[map[string]any](fields, fieldUpload)
	if err != nil {
		return nil, err
	}
	if upload != nil {
		task.Upload = *upload
	}
	result, err := decodeField[map[string]any](fields, fieldResult)
	if err != nil {
		return nil, err
	}
	if result != nil {
		task.Result = *result
	}

	return task, nil
}

// decodeField unmarshals one JSON-encoded hash field. A missing field or a
// JSON null yields nil.
func decodeField[T any](fields map[string]string, name string) (*T, error) {
	raw, ok := fields[name]
	if !ok || raw == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, malformed(name, err)
	}
	return &v, nil
}

func malformed(field string, err error) error {
	return fmt.Errorf("%w: field %s: %w", store.ErrMalformedRecord, field, err)
}
