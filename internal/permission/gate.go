// Package permission implements the permission gate: role and permission
// predicates evaluated against an identity's grant, and the affordance
// (visible, enabled, tooltip) a protected action should present.
//
// A Gate starts in the loading state, where every check is Indeterminate.
// Resolve moves it to resolved exactly once; it never returns to loading.
package permission

import (
	"context"
	"slices"
	"sync"
)

// Decision is the tri-state outcome of a permission check.
type Decision int

const (
	// Indeterminate means the grant has not resolved yet.
	Indeterminate Decision = iota
	Granted
	Denied
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "indeterminate"
	}
}

// MarshalText renders the decision as its name in JSON payloads.
func (d Decision) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func decide(ok bool) Decision {
	if ok {
		return Granted
	}
	return Denied
}

// Grant is the resolved role and permission set of one identity.
type Grant struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	Admin       bool     `json:"is_admin"`
}

// Loader resolves the grant of a user.
type Loader interface {
	Load(ctx context.Context, userID string) (Grant, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, userID string) (Grant, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, userID string) (Grant, error) { return f(ctx, userID) }

// Gate answers permission checks for one identity. Safe for concurrent use.
type Gate struct {
	mu       sync.RWMutex
	resolved bool
	grant    Grant
	perms    map[string]struct{}
}

// NewGate returns a gate in the loading state.
func NewGate() *Gate { return &Gate{} }

// Resolved returns a gate already resolved to g.
func Resolved(g Grant) *Gate {
	gate := NewGate()
	gate.Resolve(g)
	return gate
}

// Resolve fixes the grant. Only the first call has effect; it reports whether
// this call performed the transition.
func (g *Gate) Resolve(grant Grant) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolved {
		return false
	}
	g.grant = Grant{
		Roles:       slices.Clone(grant.Roles),
		Permissions: slices.Clone(grant.Permissions),
		Admin:       grant.Admin,
	}
	g.perms = make(map[string]struct{}, len(grant.Permissions))
	for _, p := range grant.Permissions {
		g.perms[p] = struct{}{}
	}
	g.resolved = true
	return true
}

// Loading reports whether the grant is still unresolved.
func (g *Gate) Loading() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.resolved
}

// Grant returns a copy of the resolved grant and whether it has resolved.
func (g *Gate) Grant() (Grant, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.resolved {
		return Grant{}, false
	}
	return Grant{
		Roles:       slices.Clone(g.grant.Roles),
		Permissions: slices.Clone(g.grant.Permissions),
		Admin:       g.grant.Admin,
	}, true
}

// HasPermission is Granted when the identity holds at least one of perms.
func (g *Gate) HasPermission(perms ...string) Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.resolved {
		return Indeterminate
	}
	for _, p := range perms {
		if _, ok := g.perms[p]; ok {
			return Granted
		}
	}
	return Denied
}

// HasAllPermissions is Granted when the identity holds every one of perms.
// An empty set is vacuously granted.
func (g *Gate) HasAllPermissions(perms ...string) Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.resolved {
		return Indeterminate
	}
	for _, p := range perms {
		if _, ok := g.perms[p]; !ok {
			return Denied
		}
	}
	return Granted
}

// IsAdmin reports the distinguished admin flag.
func (g *Gate) IsAdmin() Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.resolved {
		return Indeterminate
	}
	return decide(g.grant.Admin)
}

// Requirement combines the checks guarding one action. When Admin is set it
// decides alone and Any/All are not consulted.
type Requirement struct {
	Any   []string `json:"any,omitempty"`
	All   []string `json:"all,omitempty"`
	Admin bool     `json:"admin,omitempty"`
}

// Check evaluates req. Every non-empty clause must be granted.
func (g *Gate) Check(req Requirement) Decision {
	if req.Admin {
		return g.IsAdmin()
	}
	if g.Loading() {
		return Indeterminate
	}
	if len(req.Any) > 0 && g.HasPermission(req.Any...) != Granted {
		return Denied
	}
	if len(req.All) > 0 && g.HasAllPermissions(req.All...) != Granted {
		return Denied
	}
	return Granted
}
