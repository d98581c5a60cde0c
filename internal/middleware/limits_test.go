package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutDiscardsLateHandlerOutput(t *testing.T) {
	release := make(chan struct{})
	var handlerDone sync.WaitGroup
	handlerDone.Add(1)

	h := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer handlerDone.Done()
		<-release
		w.Write([]byte(`{"late":"handler output"}`))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))

	// Let the handler finish after the deadline response went out.
	close(release)
	handlerDone.Wait()

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Request timeout", rec.Body.String())
}

func TestTimeoutLeavesFastHandlerAlone(t *testing.T) {
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fast", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTimeoutKeepsStartedResponse(t *testing.T) {
	release := make(chan struct{})
	var handlerDone sync.WaitGroup
	handlerDone.Add(1)

	h := Timeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer handlerDone.Done()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		<-release
		w.Write([]byte(" more"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/started", nil))
	close(release)
	handlerDone.Wait()

	// No 503 on top of a response in flight, and nothing appended after
	// the deadline.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestMaxBodySizeRejectsDeclaredOversize(t *testing.T) {
	h := MaxBodySize(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for an oversized body")
	}))

	req := httptest.NewRequest(http.MethodPost, "/cart/lines", strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMaxBodySizePassesSmallBody(t *testing.T) {
	var got string
	h := MaxBodySize(64)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, 64)
		n, _ := r.Body.Read(b)
		got = string(b[:n])
	}))

	req := httptest.NewRequest(http.MethodPost, "/cart/lines", strings.NewReader("small"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "small", got)
}
