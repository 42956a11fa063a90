package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the response for a request whose handler panicked
type PanicHandler func(w http.ResponseWriter, r *http.Request, recovered any)

// Recovery turns handler panics into logged errors. onPanic runs only while
// the response is still uncommitted; a nil onPanic leaves the response as the
// handler left it. http.ErrAbortHandler is passed through so the server can
// abort the connection quietly.
func Recovery(logger *slog.Logger, onPanic PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := Wrap(w)

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				committed := rw.Committed()
				logger.Error("panic recovered",
					slog.Any("error", recovered),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("committed", committed),
				)
				if !committed && onPanic != nil {
					onPanic(rw, r, recovered)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
