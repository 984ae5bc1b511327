package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/generation"
	"github.com/phrazzld/focal-api/internal/scheduler"
	"github.com/phrazzld/focal-api/internal/service/auth"
	"github.com/phrazzld/focal-api/internal/service/comparison"
	"github.com/phrazzld/focal-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case store.IsNotFoundError(err),
		errors.Is(err, scheduler.ErrUnknownJob):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, domain.ErrCircularDependency),
		errors.Is(err, domain.ErrInterventionRequired),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, store.ErrStaleState),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrSelfDependency),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, comparison.ErrSameTask):
		return http.StatusBadRequest

	// Upstream model failures
	case errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrPostponeRecordNotFound):
		return "Postpone record not found"

	case errors.Is(err, scheduler.ErrUnknownJob):
		return "Unknown scheduler job"

	case store.IsNotFoundError(err):
		return "Resource not found"

	case errors.Is(err, domain.ErrSelfDependency):
		return "A task cannot depend on itself"

	case errors.Is(err, domain.ErrCircularDependency):
		return "Dependency would create a cycle"

	case errors.Is(err, domain.ErrInterventionRequired):
		return "Postponement intervention required before this task can be deferred again"

	case errors.Is(err, domain.ErrInvalidTransition):
		return "Invalid state transition"

	case errors.Is(err, store.ErrStaleState):
		return "Task was modified concurrently, retry the request"

	case errors.Is(err, comparison.ErrSameTask):
		return "Cannot compare a task against itself"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"

	case errors.Is(err, generation.ErrContentBlocked):
		return "Suggestion request was blocked by content filters"

	case errors.Is(err, generation.ErrTransientFailure):
		return "Suggestion service temporarily unavailable"

	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return "Failed to generate suggestions"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for a service error, deriving the status
// code and safe message from the error type. An explicit userMessage, when
// non-empty, overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}
