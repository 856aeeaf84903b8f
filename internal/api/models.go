package api

import (
	"time"

	"github.com/ctlabs/taskrouter/internal/domain"
)

// SubmitTaskRequest is the body of POST /submit.
type SubmitTaskRequest struct {
	ExternalID *string        `json:"external_id,omitempty" validate:"omitempty,max=256"`
	Type       string         `json:"type"                  validate:"required,oneof=calc_hash resize_image water_marks"`
	Upload     map[string]any `json:"upload"                validate:"required"`
}

// TypedSubmitRequest is the body of POST /submit/{type}. Type may be omitted;
// if present it must match the path.
type TypedSubmitRequest struct {
	ExternalID *string        `json:"external_id,omitempty" validate:"omitempty,max=256"`
	Type       string         `json:"type,omitempty"        validate:"omitempty,oneof=calc_hash resize_image water_marks"`
	Upload     map[string]any `json:"upload"                validate:"required"`
}

// TaskReceipt is returned after a successful submission.
type TaskReceipt struct {
	ExternalID *string `json:"external_id,omitempty"`
	Type       string  `json:"type"`
	UUID       string  `json:"uuid"`
	Created    string  `json:"created"`
}

// TaskInfoResponse is the body of GET /taskinfo. Unset values are rendered as
// null rather than omitted.
type TaskInfoResponse struct {
	ExternalID *string        `json:"external_id"`
	Type       string         `json:"type"`
	UUID       string         `json:"uuid"`
	Status     string         `json:"status"`
	Created    *string        `json:"created"`
	Processed  *string        `json:"processed"`
	Code       *int           `json:"code"`
	Message    *string        `json:"message"`
	Result     map[string]any `json:"result"`
}

// HealthResponse is the body of POST /health.
type HealthResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func receiptFromTask(task *domain.Task) TaskReceipt {
	return TaskReceipt{
		ExternalID: task.ExternalID,
		Type:       string(task.Type),
		UUID:       task.ID.String(),
		Created:    formatTime(task.CreatedAt),
	}
}

// NewTaskInfoResponse projects a stored task into its status representation.
func NewTaskInfoResponse(task *domain.Task) TaskInfoResponse {
	resp := TaskInfoResponse{
		ExternalID: task.ExternalID,
		Type:       string(task.Type),
		UUID:       task.ID.String(),
		Status:     string(task.Status),
		Code:       task.ResultCode,
		Message:    task.ResultMessage,
		Result:     task.Result,
	}
	if !task.CreatedAt.IsZero() {
		created := formatTime(task.CreatedAt)
		resp.Created = &created
	}
	if task.ProcessedAt != nil {
		processed := formatTime(*task.ProcessedAt)
		resp.Processed = &processed
	}
	return resp
}
