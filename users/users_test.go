package users_test

import (
	"testing"

	"github.com/simaris-dev/simaris-auth/users"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := users.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3rSecret", hash)

	require.True(t, users.CheckPasswordHash("Sup3rSecret", hash))
	require.False(t, users.CheckPasswordHash("wrong", hash))
}

func TestRandomPasswordIsUnusable(t *testing.T) {
	p1 := users.RandomPassword()
	p2 := users.RandomPassword()

	require.NotEmpty(t, p1)
	require.NotEqual(t, p1, p2)
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "a@b.com", users.NormalizeEmail("  A@B.Com "))
}

func TestRoles(t *testing.T) {
	u := &users.User{Roles: []users.RoleType{users.RoleOwnerRisk}}
	require.True(t, u.HasRole(users.RoleOwnerRisk))
	require.False(t, u.HasRole(users.RolePimpinan))
	require.False(t, u.IsSuperAdmin())

	u.Roles = append(u.Roles, users.RoleSuperAdmin)
	require.True(t, u.IsSuperAdmin())
}
