package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(name string, order *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name+":in")
			next.ServeHTTP(w, r)
			*order = append(*order, name+":out")
		})
	}
}

func TestRouterMethodRouting(t *testing.T) {
	r := New()
	r.Get("/dishes/{slug}", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(req.PathValue("slug")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dishes/burger-combo", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "burger-combo", rec.Body.String())

	// Same pattern, wrong method.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dishes/burger-combo", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterMiddlewareOrder(t *testing.T) {
	var order []string

	r := New(tag("global", &order))
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
	}, tag("route", &order))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, []string{"global:in", "route:in", "handler", "route:out", "global:out"}, order)
}

func TestRouterGroupExtendsChain(t *testing.T) {
	var order []string

	r := New(tag("global", &order))
	r.Get("/public", func(http.ResponseWriter, *http.Request) {})

	g := r.Group(tag("group", &order))
	g.Get("/guarded", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/guarded", nil))
	assert.Equal(t, []string{"global:in", "group:in", "group:out", "global:out"}, order)

	// The group chain must not leak back onto parent routes.
	order = nil
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, []string{"global:in", "global:out"}, order)
}

func TestCORSPreflight(t *testing.T) {
	r := New(CORS([]string{"https://app.example.com"}))
	r.Get("/menu", func(http.ResponseWriter, *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/menu", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	r := New(CORS([]string{"https://app.example.com"}))
	r.Get("/menu", func(http.ResponseWriter, *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/menu", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
