package permission

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_IndeterminateWhileLoading(t *testing.T) {
	g := NewGate()
	assert.True(t, g.Loading())
	assert.Equal(t, Indeterminate, g.HasPermission("a", "b"))
	assert.Equal(t, Indeterminate, g.HasAllPermissions("a", "b"))
	assert.Equal(t, Indeterminate, g.IsAdmin())
	assert.Equal(t, Indeterminate, g.Check(Requirement{Any: []string{"a"}}))
	assert.Equal(t, Indeterminate, g.Check(Requirement{Admin: true}))
	_, ok := g.Grant()
	assert.False(t, ok)
}

func TestGate_AnyVersusAll(t *testing.T) {
	onlyA := Resolved(Grant{Permissions: []string{"a"}})
	both := Resolved(Grant{Permissions: []string{"a", "b"}})
	none := Resolved(Grant{})

	assert.Equal(t, Granted, onlyA.HasPermission("a", "b"))
	assert.Equal(t, Denied, onlyA.HasAllPermissions("a", "b"))
	assert.Equal(t, Granted, both.HasPermission("a", "b"))
	assert.Equal(t, Granted, both.HasAllPermissions("a", "b"))
	assert.Equal(t, Denied, none.HasPermission("a", "b"))
	assert.Equal(t, Denied, none.HasAllPermissions("a", "b"))

	assert.Equal(t, Denied, both.HasPermission())
	assert.Equal(t, Granted, none.HasAllPermissions())
}

func TestGate_ResolveOnce(t *testing.T) {
	g := NewGate()
	require.True(t, g.Resolve(Grant{Permissions: []string{"a"}}))
	assert.False(t, g.Resolve(Grant{Permissions: []string{"b"}, Admin: true}))

	assert.False(t, g.Loading())
	assert.Equal(t, Granted, g.HasPermission("a"))
	assert.Equal(t, Denied, g.HasPermission("b"))
	assert.Equal(t, Denied, g.IsAdmin())
}

func TestGate_ResolveCopiesInput(t *testing.T) {
	perms := []string{"a"}
	g := Resolved(Grant{Permissions: perms})
	perms[0] = "z"
	assert.Equal(t, Granted, g.HasPermission("a"))

	got, ok := g.Grant()
	require.True(t, ok)
	got.Permissions[0] = "mutated"
	assert.Equal(t, Granted, g.HasPermission("a"))
}

func TestGate_Check_AdminShortCircuits(t *testing.T) {
	admin := Resolved(Grant{Admin: true})
	user := Resolved(Grant{Permissions: []string{"cases:read", "cases:write"}})

	req := Requirement{Admin: true, All: []string{"never-held"}}
	assert.Equal(t, Granted, admin.Check(req))
	assert.Equal(t, Denied, user.Check(req))

	assert.Equal(t, Granted, user.Check(Requirement{Any: []string{"x", "cases:read"}, All: []string{"cases:write"}}))
	assert.Equal(t, Denied, user.Check(Requirement{Any: []string{"cases:read"}, All: []string{"cases:delete"}}))
	assert.Equal(t, Granted, user.Check(Requirement{}))
}

func TestGate_ConcurrentResolve(t *testing.T) {
	g := NewGate()
	var wg sync.WaitGroup
	wins := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- g.Resolve(Grant{Permissions: []string{"a"}})
			_ = g.HasPermission("a")
		}()
	}
	wg.Wait()
	close(wins)
	n := 0
	for w := range wins {
		if w {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestGuard(t *testing.T) {
	loading := Guard(Indeterminate, GuardOptions{HideWhenDenied: true})
	assert.Equal(t, Affordance{Decision: Indeterminate, Visible: true, Tooltip: LoadingMessage}, loading)

	assert.Equal(t, Affordance{Decision: Granted, Visible: true, Enabled: true}, Guard(Granted, GuardOptions{}))

	hidden := Guard(Denied, GuardOptions{HideWhenDenied: true})
	assert.False(t, hidden.Visible)
	assert.False(t, hidden.Enabled)

	disabled := Guard(Denied, GuardOptions{})
	assert.True(t, disabled.Visible)
	assert.False(t, disabled.Enabled)
	assert.Equal(t, DefaultDeniedMessage, disabled.Tooltip)

	custom := Guard(Denied, GuardOptions{DeniedMessage: "Only judges may delete"})
	assert.Equal(t, "Only judges may delete", custom.Tooltip)
}

func TestDecision_JSON(t *testing.T) {
	b, err := json.Marshal(Guard(Granted, GuardOptions{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"granted","visible":true,"enabled":true}`, string(b))
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	g := NewGate()
	assert.Same(t, g, FromContext(WithGate(context.Background(), g)))
}

func TestLoaderFunc(t *testing.T) {
	var l Loader = LoaderFunc(func(_ context.Context, id string) (Grant, error) {
		return Grant{Roles: []string{id}}, nil
	})
	g, err := l.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, g.Roles)
}
