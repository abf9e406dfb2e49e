package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/redact"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// internalErrorMessage is the only message clients see for uncategorized failures.
const internalErrorMessage = "Something went wrong"

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the client-facing message for err.
// Validation and not-found messages are written for clients already; every
// other error gets a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return internalErrorMessage
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}

	var nfErr *domain.NotFoundError
	if errors.As(err, &nfErr) {
		return nfErr.Error()
	}

	switch MapErrorToStatusCode(err) {
	case http.StatusBadRequest:
		return "Validation failed"
	case http.StatusNotFound:
		return "Resource not found"
	default:
		return internalErrorMessage
	}
}

// HandleAPIError writes the error envelope for err. Only uncategorized
// failures carry details, and those are redacted first.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	details := ""
	if status == http.StatusInternalServerError {
		details = redact.Error(err)
	}

	shared.RespondWithError(w, r, status, shared.GetRequestID(r.Context()), GetSafeErrorMessage(err), details)
}

// NotFoundHandler answers requests for unknown routes with a 404 envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, shared.GetRequestID(r.Context()),
		"No handler found for "+r.Method+" "+r.URL.Path, "")
}

// MethodNotAllowedHandler answers requests using an unsupported method on a known route.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusMethodNotAllowed, shared.GetRequestID(r.Context()),
		"Request method '"+r.Method+"' is not supported", "")
}
