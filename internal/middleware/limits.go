package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultMaxBodySize is the global request-body cap. It must stay
	// above the proof-upload route limit, which is the tighter bound.
	DefaultMaxBodySize int64 = 10 << 20

	// DefaultTimeout bounds end-to-end request handling.
	DefaultTimeout = 30 * time.Second
)

// MaxBodySize rejects requests whose body exceeds maxBytes with a 413.
// A declared Content-Length over the limit is refused up front; chunked
// bodies are cut off by MaxBytesReader mid-read.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondTooLarge(w, r, "Request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout cancels the request context after d and answers 503 if the
// handler has not started writing yet. A response already in flight is
// left to truncate; there is nothing useful to send at that point.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			done := make(chan struct{})
			dw := &deadlineWriter{ResponseWriter: w}

			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				dw.timeout()
			}
		})
	}
}

// deadlineWriter serializes writes between the handler goroutine and the
// timeout path, and drops handler output that arrives after the deadline
// response went out.
type deadlineWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	wrote    bool
	timedOut bool
}

// timeout sends the 503 unless the handler already started responding,
// and marks the writer so late handler output is discarded either way.
func (d *deadlineWriter) timeout() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.wrote {
		d.wrote = true
		d.ResponseWriter.WriteHeader(http.StatusServiceUnavailable)
		d.ResponseWriter.Write([]byte("Request timeout"))
	}
	d.timedOut = true
}

func (d *deadlineWriter) WriteHeader(code int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timedOut || d.wrote {
		return
	}
	d.wrote = true
	d.ResponseWriter.WriteHeader(code)
}

func (d *deadlineWriter) Write(b []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timedOut {
		return 0, context.DeadlineExceeded
	}
	if !d.wrote {
		d.wrote = true
		d.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return d.ResponseWriter.Write(b)
}
