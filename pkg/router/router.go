// Package router is a thin layer over chi that names every route it
// mounts. The name table feeds the `routes` CLI command, which prints
// the storefront's endpoint map without booting the server.
package router

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Middleware wraps a handler. Group middlewares run before per-route ones.
type Middleware func(http.Handler) http.Handler

// Router mounts named routes onto a chi mux.
type Router struct {
	mux   chi.Router
	mu    sync.RWMutex
	names map[string]string
}

func New() *Router {
	return &Router{
		mux:   chi.NewRouter(),
		names: make(map[string]string),
	}
}

// Handler exposes the underlying mux for http.Server.
func (r *Router) Handler() http.Handler { return r.mux }

// Use registers global middleware. Must be called before any route is
// mounted; chi enforces that ordering.
func (r *Router) Use(middlewares ...Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

func (r *Router) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.register(http.MethodGet, clean(path), name, handler, middlewares)
}

func (r *Router) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.register(http.MethodPost, clean(path), name, handler, middlewares)
}

// Group returns a registrar that prefixes every route with prefix and
// runs middlewares ahead of each route's own.
func (r *Router) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      r,
		prefix:      clean(prefix),
		middlewares: append([]Middleware(nil), middlewares...),
	}
}

// Routes returns a snapshot of the name table (route name to path).
func (r *Router) Routes() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]string, len(r.names))
	for name, path := range r.names {
		snapshot[name] = path
	}
	return snapshot
}

func (r *Router) register(method, path, name string, handler http.HandlerFunc, middlewares []Middleware) {
	var h http.Handler = handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	r.mux.Method(method, path, h)

	if name == "" {
		return
	}
	r.mu.Lock()
	r.names[name] = path
	r.mu.Unlock()
}

// Group registers routes under a shared prefix and middleware stack.
type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

func (g *Group) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.router.register(http.MethodGet, g.join(path), name, handler, g.combine(middlewares))
}

func (g *Group) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.router.register(http.MethodPost, g.join(path), name, handler, g.combine(middlewares))
}

// Group nests a sub-group; its prefix and middlewares stack on the parent's.
func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      g.router,
		prefix:      g.join(prefix),
		middlewares: g.combine(middlewares),
	}
}

func (g *Group) join(path string) string {
	return clean(strings.TrimSuffix(g.prefix, "/") + clean(path))
}

func (g *Group) combine(middlewares []Middleware) []Middleware {
	return append(append([]Middleware(nil), g.middlewares...), middlewares...)
}

// clean collapses a path to "/"-rooted form with no trailing slash.
func clean(path string) string {
	var b strings.Builder
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(segment)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
