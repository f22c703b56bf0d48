package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic recovered",
					slog.String("request_id", RequestIDFrom(r)),
					slog.Any("error", err),
					slog.String("stack", string(debug.Stack())),
				)

				var wroteHeader bool
				if rw, ok := w.(*responseWriter); ok {
					wroteHeader = rw.wroteHeader()
				}

				if !wroteHeader {
					WriteError(w, r, http.StatusInternalServerError, titleInternal, "An internal error occurred", nil)
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
