package models

import (
	"time"
)

// Role names are compared exactly and case-sensitively.
const (
	RoleEmpleado           = "Empleado"
	RoleAdministrador      = "Administrador"
	RoleSuperadministrador = "Superadministrador"
)

// RoleInfo describes one of the built-in roles.
type RoleInfo struct {
	ID          int    `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

// KnownRoles lists the roles a user can be assigned, most privileged first.
var KnownRoles = []RoleInfo{
	{ID: 1, Nombre: RoleSuperadministrador, Descripcion: "Control total del sistema"},
	{ID: 2, Nombre: RoleAdministrador, Descripcion: "Gestión de usuarios y configuración"},
	{ID: 3, Nombre: RoleEmpleado, Descripcion: "Operaciones básicas"},
}

// IsKnownRole reports whether name is one of KnownRoles.
func IsKnownRole(name string) bool {
	for _, r := range KnownRoles {
		if r.Nombre == name {
			return true
		}
	}
	return false
}

// UserRole assigns one role to one user.
type UserRole struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"userId" gorm:"uniqueIndex:idx_user_rol;not null"`
	Rol         string    `json:"rol" gorm:"uniqueIndex:idx_user_rol;size:64;not null"`
	AsignadoPor *uint     `json:"asignadoPor,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
