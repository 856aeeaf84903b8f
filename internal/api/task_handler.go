package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ctlabs/taskrouter/internal/api/shared"
	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
	"github.com/ctlabs/taskrouter/internal/service"
)

// TaskHandler serves the task endpoints. Callers are authenticated and
// authorized by middleware before these handlers run.
type TaskHandler struct {
	tasks service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Submit handles POST /submit.
func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.submit(w, r, service.SubmitTaskInput{
		Type:       domain.TaskType(req.Type),
		ExternalID: req.ExternalID,
		Upload:     req.Upload,
	})
}

// SubmitTyped returns the handler for POST /submit/{taskType}.
func (h *TaskHandler) SubmitTyped(taskType domain.TaskType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TypedSubmitRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		if req.Type != "" && domain.TaskType(req.Type) != taskType {
			err := domain.NewValidationError("type", "does not match the endpoint", domain.ErrInvalidTaskType)
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
			return
		}

		h.submit(w, r, service.SubmitTaskInput{
			Type:       taskType,
			ExternalID: req.ExternalID,
			Upload:     req.Upload,
		})
	}
}

func (h *TaskHandler) submit(w http.ResponseWriter, r *http.Request, input service.SubmitTaskInput) {
	task, err := h.tasks.Submit(r.Context(), input)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, receiptFromTask(task))
}

// TaskInfo handles GET /taskinfo?taskid=<uuid>.
func (h *TaskHandler) TaskInfo(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("taskid")
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidTaskID,
			domain.NewValidationError("taskid", "is not a valid UUID", domain.ErrInvalidID))
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Debug("task status requested",
		"task_id", task.ID,
		"status", task.Status)

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskInfoResponse(task))
}

// Health handles POST /health. It reports liveness only.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Code: 1, Message: "All right"})
}

// HandleAPIError writes the status code and safe message for err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}

// decodeAndValidate reads the JSON body into v and validates it. It writes a
// 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		verr := domain.NewValidationError("", "request validation failed", err)
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(verr), verr)
		return false
	}
	return true
}
