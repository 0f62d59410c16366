package jsonapi

import (
	"fmt"
	"strings"
	"sync"
)

// RouteRegistry maps relation keys ("version", "historicalBrowser") to the
// namespace-relative route used to fetch them. Every parsed response writes
// to it and every relation fetch reads from it.
type RouteRegistry struct {
	mu     sync.RWMutex
	routes map[string]string
}

// NewRouteRegistry returns an empty registry.
func NewRouteRegistry() *RouteRegistry {
	return &RouteRegistry{routes: make(map[string]string)}
}

// Register stores the route for a relation key, replacing any previous one.
func (r *RouteRegistry) Register(key, route string) {
	r.mu.Lock()
	r.routes[key] = route
	r.mu.Unlock()
}

// Lookup returns the route registered for key.
func (r *RouteRegistry) Lookup(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[key]
	return route, ok
}

// Len returns the number of registered routes.
func (r *RouteRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// Routes returns a copy of the registry contents.
func (r *RouteRegistry) Routes() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.routes))
	for k, v := range r.routes {
		out[k] = v
	}
	return out
}

// Expand resolves the route for key and fills in id. Routes carry a URI
// template placeholder ("versions/{browsers.versions}"); a route without one
// gets the id appended as a path segment.
func (r *RouteRegistry) Expand(key, id string) (string, error) {
	route, ok := r.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnresolvedRoute, key)
	}

	open := strings.Index(route, "{")
	if open >= 0 {
		if end := strings.Index(route[open:], "}"); end >= 0 {
			return route[:open] + id + route[open+end+1:], nil
		}
	}
	return strings.TrimSuffix(route, "/") + "/" + id, nil
}
