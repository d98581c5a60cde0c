// Package router is a thin layer over http.ServeMux that adds middleware
// chaining and route groups. Patterns use the 1.22 mux syntax, so path
// values like {id} are read with r.PathValue.
package router

import (
	"net/http"
	"slices"
	"strings"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Router registers method-qualified patterns on a shared ServeMux. Groups
// share the mux and extend the chain, so a group route still runs the
// parent's middleware first.
type Router struct {
	mux   *http.ServeMux
	chain []Middleware
}

func New(chain ...Middleware) *Router {
	return &Router{mux: http.NewServeMux(), chain: chain}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Group returns a router on the same mux whose routes run the given
// middleware after the parent chain.
func (r *Router) Group(chain ...Middleware) *Router {
	return &Router{
		mux:   r.mux,
		chain: append(slices.Clone(r.chain), chain...),
	}
}

func (r *Router) Get(pattern string, h http.HandlerFunc, chain ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, chain...)
}

func (r *Router) Post(pattern string, h http.HandlerFunc, chain ...Middleware) {
	r.Handle(http.MethodPost, pattern, h, chain...)
}

func (r *Router) Put(pattern string, h http.HandlerFunc, chain ...Middleware) {
	r.Handle(http.MethodPut, pattern, h, chain...)
}

func (r *Router) Patch(pattern string, h http.HandlerFunc, chain ...Middleware) {
	r.Handle(http.MethodPatch, pattern, h, chain...)
}

func (r *Router) Delete(pattern string, h http.HandlerFunc, chain ...Middleware) {
	r.Handle(http.MethodDelete, pattern, h, chain...)
}

// Handle registers a handler for an explicit method, wrapping it in the
// router chain plus any route-specific middleware.
func (r *Router) Handle(method, pattern string, h http.Handler, chain ...Middleware) {
	r.mux.Handle(method+" "+pattern, r.wrap(h, chain))
}

// Static serves the files in dir under the given URL prefix.
func (r *Router) Static(prefix, dir string) {
	prefix = strings.TrimSuffix(prefix, "/")
	h := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.mux.Handle("GET "+prefix+"/{file...}", r.wrap(h, nil))
}

// wrap layers middleware so the first element of the chain sees the request
// first.
func (r *Router) wrap(h http.Handler, extra []Middleware) http.Handler {
	all := append(slices.Clone(r.chain), extra...)
	for i := len(all) - 1; i >= 0; i-- {
		h = all[i](h)
	}
	return h
}
