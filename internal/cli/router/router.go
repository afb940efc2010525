package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrDuplicateName = errors.New("duplicate route name")
)

// Match is a route resolved from a concrete path
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Param returns a path parameter, or "" if absent
func (m *Match) Param(key string) string {
	return m.Params[key]
}

// Router resolves paths against the route table and runs the guard before
// every navigation. It also holds the redirect requested by the HTTP
// pipeline when the backend rejects the session.
type Router struct {
	mux       *chi.Mux
	byPattern map[string]Route
	byName    map[string]Route
	guard     *Guard
	logger    zerolog.Logger

	mu      sync.Mutex
	current *Match
	pending string
}

// New builds a router over routes. Route names must be unique.
func New(routes []Route, guard *Guard, logger zerolog.Logger) (*Router, error) {
	r := &Router{
		mux:       chi.NewRouter(),
		byPattern: make(map[string]Route, len(routes)),
		byName:    make(map[string]Route, len(routes)),
		guard:     guard,
		logger:    logger,
	}

	// Handlers are never served; chi is only used for pattern matching
	noop := func(http.ResponseWriter, *http.Request) {}

	for _, route := range routes {
		if _, exists := r.byName[route.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, route.Name)
		}
		r.byName[route.Name] = route
		r.byPattern[route.Path] = route
		r.mux.Get(route.Path, noop)
	}

	return r, nil
}

// Resolve finds the route matching path without guarding it
func (r *Router) Resolve(path string) (*Match, error) {
	path = normalizePath(path)

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}

	route, ok := r.byPattern[rctx.RoutePattern()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}

	return &Match{Route: route, Path: path, Params: params}, nil
}

// Navigate resolves path and runs the guard. On Proceed the match becomes the
// current route; otherwise the current route is left unchanged.
func (r *Router) Navigate(path string) (Outcome, *Match, error) {
	match, err := r.Resolve(path)
	if err != nil {
		return Proceed, nil, err
	}

	outcome := r.guard.Resolve(match.Route)
	r.logger.Debug().
		Str("path", match.Path).
		Str("route", match.Route.Name).
		Str("outcome", outcome.String()).
		Msg("Navigation guarded")

	if outcome == Proceed {
		r.mu.Lock()
		r.current = match
		r.mu.Unlock()
	}

	return outcome, match, nil
}

// Current returns the last route navigation proceeded to, or nil
func (r *Router) Current() *Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Lookup returns the route with the given name
func (r *Router) Lookup(name string) (Route, bool) {
	route, ok := r.byName[name]
	return route, ok
}

// Redirect records a redirect to the named route, replacing any earlier one.
// The command layer consumes it with PendingRedirect.
func (r *Router) Redirect(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = name
}

// PendingRedirect returns and clears the recorded redirect
func (r *Router) PendingRedirect() (Route, bool) {
	r.mu.Lock()
	name := r.pending
	r.pending = ""
	r.mu.Unlock()

	if name == "" {
		return Route{}, false
	}
	return r.Lookup(name)
}

// HasPendingRedirect reports a recorded redirect without consuming it
func (r *Router) HasPendingRedirect() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != ""
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
