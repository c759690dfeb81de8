package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func perms(names ...string) []Permission {
	out := make([]Permission, 0, len(names))
	for _, n := range names {
		out = append(out, Permission{Name: n})
	}
	return out
}

func TestEffectivePermissions_Union(t *testing.T) {
	u := User{
		Roles: []Role{
			{Name: "user", Permissions: perms("profile:read", "user:read")},
			{Name: "moderator", Permissions: perms("user:read", "user:list")},
		},
		DirectPermissions: perms("audit:read", "profile:read"),
	}

	require.ElementsMatch(t,
		[]string{"profile:read", "user:read", "user:list", "audit:read"},
		u.EffectivePermissions(),
	)
}

func TestEffectivePermissions_Empty(t *testing.T) {
	require.Empty(t, User{}.EffectivePermissions())
}

func TestEffectivePermissions_OrderIndependent(t *testing.T) {
	a := User{
		Roles:             []Role{{Permissions: perms("b:b", "a:a")}},
		DirectPermissions: perms("c:c"),
	}
	b := User{
		Roles:             []Role{{Permissions: perms("c:c")}},
		DirectPermissions: perms("a:a", "b:b"),
	}
	require.Equal(t, a.EffectivePermissions(), b.EffectivePermissions())
}

func TestNewIdentity(t *testing.T) {
	u := User{
		Roles:             []Role{{Name: "admin", Permissions: perms("user:delete")}},
		DirectPermissions: perms("x:y"),
	}
	id := NewIdentity(u)
	require.Equal(t, []string{"admin"}, id.Roles)
	require.True(t, id.HasPermission("user:delete"))
	require.True(t, id.HasPermission("x:y"))
	require.False(t, id.HasPermission("user:read"))
}
