package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_SetPassword(t *testing.T) {
	u := &User{}
	err := u.SetPassword("password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "password123", u.PasswordHash)
}

func TestUser_CheckPassword(t *testing.T) {
	u := &User{}
	_ = u.SetPassword("password123")

	assert.True(t, u.CheckPassword("password123"))
	assert.False(t, u.CheckPassword("wrongpassword"))
}

func TestUser_IsLocked(t *testing.T) {
	now := time.Now()
	u := &User{}
	assert.False(t, u.IsLocked(now))

	future := now.Add(time.Minute)
	u.LockedUntil = &future
	assert.True(t, u.IsLocked(now))

	past := now.Add(-time.Minute)
	u.LockedUntil = &past
	assert.False(t, u.IsLocked(now))
}

func TestUser_RoleNames(t *testing.T) {
	u := &User{Roles: []UserRole{{Rol: RoleEmpleado}, {Rol: RoleAdministrador}}}
	assert.Equal(t, []string{RoleEmpleado, RoleAdministrador}, u.RoleNames())
}

func TestHasAnyRole(t *testing.T) {
	assert.True(t, HasAnyRole([]string{RoleSuperadministrador}, RoleSuperadministrador))
	assert.True(t, HasAnyRole([]string{RoleAdministrador}, RoleAdministrador, RoleSuperadministrador))
	assert.False(t, HasAnyRole([]string{RoleEmpleado}, RoleSuperadministrador))
	assert.False(t, HasAnyRole([]string{"superadministrador"}, RoleSuperadministrador), "role match is case-sensitive")
	assert.False(t, HasAnyRole(nil, RoleEmpleado))
}

func TestIsKnownRole(t *testing.T) {
	assert.True(t, IsKnownRole(RoleEmpleado))
	assert.False(t, IsKnownRole("Cocinero"))
}
