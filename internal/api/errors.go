package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/service"
	"github.com/ctlabs/taskrouter/internal/service/auth"
	"github.com/ctlabs/taskrouter/internal/store"
)

// Safe messages returned to clients.
const (
	MsgMissingCredentials = "Missing credentials"
	MsgAuthFailed         = "Authentication failed"
	MsgMetadataMissing    = "Client ID or Role not found in identity metadata"
	MsgNotAllowed         = "Not allowed"
	MsgInvalidTaskID      = "Invalid task ID"
	MsgInvalidTaskType    = "Invalid task type"
	MsgInvalidRequest     = "Invalid request format"
	MsgTaskFinished       = "Task already finished"
	MsgInternal           = "Internal server error"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Anything
// not recognized is a 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrAuthenticationFailed):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrNotPermitted):
		return http.StatusForbidden

	case errors.Is(err, auth.ErrMetadataMissing),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrMalformedRecord),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrTaskFinished):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgInternal
	}

	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return MsgMissingCredentials
	case errors.Is(err, auth.ErrAuthenticationFailed):
		return MsgAuthFailed
	case errors.Is(err, auth.ErrMetadataMissing):
		return MsgMetadataMissing
	case errors.Is(err, auth.ErrNotPermitted):
		return MsgNotAllowed
	case errors.Is(err, store.ErrTaskNotFound):
		return MsgInvalidTaskID
	// A stored record whose type or status is no longer known.
	case errors.Is(err, store.ErrMalformedRecord):
		return MsgInvalidTaskType
	case errors.Is(err, service.ErrTaskFinished):
		return MsgTaskFinished
	case errors.Is(err, domain.ErrValidation):
		return SanitizeValidationError(err)
	default:
		return MsgInternal
	}
}

// SanitizeValidationError turns a validation failure into a short message
// naming the field, without echoing submitted values.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", jsonFieldName(fe.Field()), getValidationTagMessage(fe.Tag()))
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
	}

	return "Validation error"
}

func jsonFieldName(field string) string {
	switch field {
	case "ExternalID":
		return "external_id"
	default:
		return strings.ToLower(field)
	}
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "oneof":
		return "invalid value"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
