package middleware

import (
	"net/http"
	"sort"
	"strings"
)

// PublicRoutes is the explicit allow-list of routes served without a
// bearer token. Entries are "METHOD /route/template" as registered on the
// router, e.g. "POST /login". Nothing outside the list is public.
type PublicRoutes struct {
	routes map[string]struct{}
}

// NewPublicRoutes builds an allow-list from "METHOD PATH" entries.
// Malformed entries are ignored.
func NewPublicRoutes(entries ...string) *PublicRoutes {
	p := &PublicRoutes{routes: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		method, path, ok := strings.Cut(strings.TrimSpace(e), " ")
		if !ok {
			continue
		}
		p.Add(method, strings.TrimSpace(path))
	}
	return p
}

// DefaultPublicRoutes lists the routes a client must reach before it holds
// a token, plus the probes.
func DefaultPublicRoutes() *PublicRoutes {
	return NewPublicRoutes(
		"POST /login",
		"POST /register",
		"GET /health",
		"GET /alive",
		"GET /ready",
		"GET /version",
	)
}

// Add allows method on path.
func (p *PublicRoutes) Add(method, path string) {
	if method == "" || path == "" {
		return
	}
	p.routes[key(method, path)] = struct{}{}
}

// Allows reports whether method on the route template path is public.
// HEAD is allowed wherever GET is.
func (p *PublicRoutes) Allows(method, path string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.routes[key(method, path)]; ok {
		return true
	}
	if method == http.MethodHead {
		_, ok := p.routes[key(http.MethodGet, path)]
		return ok
	}
	return false
}

// List returns the allow-list entries in sorted order.
func (p *PublicRoutes) List() []string {
	out := make([]string, 0, len(p.routes))
	for k := range p.routes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func key(method, path string) string {
	return strings.ToUpper(method) + " " + path
}
