package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/redact"
)

// Recoverer turns a panic in a downstream handler into a 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				// ALLOW-PANIC: net/http relies on this sentinel to abort the response
				panic(rec)
			}

			logger.FromContext(r.Context()).Error("recovered from panic",
				slog.String("panic", redact.String(fmt.Sprint(rec))),
				slog.String("stack", string(debug.Stack())))

			shared.RespondWithError(w, r, http.StatusInternalServerError,
				shared.GetRequestID(r.Context()),
				"Something went wrong",
				redact.String(fmt.Sprint(rec)))
		}()

		next.ServeHTTP(w, r)
	})
}
