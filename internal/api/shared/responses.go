package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
)

// Envelope is the uniform wrapper around every response body.
// On success Error and Details are null; on failure Data is null.
type Envelope struct {
	Timestamp string  `json:"timestamp"`
	Status    int     `json:"status"`
	Message   string  `json:"message"`
	Error     *string `json:"error"`
	Data      any     `json:"data"`
	Path      string  `json:"path"`
	RequestID string  `json:"requestId"`
	Details   *string `json:"details"`
}

// nowFunc is replaced in tests.
var nowFunc = time.Now

// ErrorLabel returns the stable error label for an HTTP status.
func ErrorLabel(status int) string {
	if status == http.StatusBadRequest {
		return "Validation Error"
	}
	return http.StatusText(status)
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// RespondWithSuccess writes a success envelope carrying data.
func RespondWithSuccess(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	requestID string,
	message string,
	data any,
) {
	RespondWithJSON(w, r, status, Envelope{
		Timestamp: nowFunc().UTC().Format(time.RFC3339),
		Status:    status,
		Message:   message,
		Data:      data,
		Path:      r.URL.Path,
		RequestID: requestID,
	})
}

// RespondWithError writes an error envelope. An empty details string is sent as null.
//
// Log level strategy:
// - 5xx errors: logged at ERROR level
// - 4xx errors: logged at DEBUG level
func RespondWithError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	requestID string,
	message string,
	details string,
) {
	label := ErrorLabel(status)
	envelope := Envelope{
		Timestamp: nowFunc().UTC().Format(time.RFC3339),
		Status:    status,
		Message:   message,
		Error:     &label,
		Path:      r.URL.Path,
		RequestID: requestID,
	}
	if details != "" {
		envelope.Details = &details
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), logLevel, "API error response",
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("message", message),
		slog.String("details", details))

	RespondWithJSON(w, r, status, envelope)
}
