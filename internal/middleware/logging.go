package middleware

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ResponseWriter wraps http.ResponseWriter to record what has been sent
type ResponseWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
	hijacked    bool
}

// Wrap returns w as a *ResponseWriter, reusing it when it already is one so
// stacked middleware share a single record
func Wrap(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader captures the status code
func (rw *ResponseWriter) WriteHeader(status int) {
	rw.status = status
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(status)
}

// Write captures the response size
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Status returns the captured status code
func (rw *ResponseWriter) Status() int {
	return rw.status
}

// Size returns the captured response size
func (rw *ResponseWriter) Size() int {
	return rw.size
}

// Hijacked reports whether the connection was taken over, e.g. by a
// websocket upgrade
func (rw *ResponseWriter) Hijacked() bool {
	return rw.hijacked
}

// Committed reports whether anything has reached the client, after which
// no error response can be written
func (rw *ResponseWriter) Committed() bool {
	return rw.wroteHeader || rw.hijacked
}

// Flush implements http.Flusher
func (rw *ResponseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack implements http.Hijacker so websocket upgrades pass through
func (rw *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	conn, buf, err := hijacker.Hijack()
	if err == nil {
		rw.hijacked = true
		rw.status = http.StatusSwitchingProtocols
	}
	return conn, buf, err
}

// Logging creates logging middleware that logs HTTP requests. Upgraded
// connections are logged once they close, with their whole lifetime as the
// duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := Wrap(w)

			next.ServeHTTP(wrapped, r)

			msg := "http request"
			if wrapped.hijacked {
				msg = "connection closed"
			}

			logger.LogAttrs(context.Background(), levelFor(wrapped.status), msg,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Int("status", wrapped.status),
				slog.Int("size", wrapped.size),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
