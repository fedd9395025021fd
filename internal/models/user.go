package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is an account of the restaurant staff. Access is decided by the flat
// set of role names in Roles.
type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	UUID                string     `json:"uuid" gorm:"uniqueIndex;size:36"`
	Nombre              string     `json:"nombre" gorm:"size:191;not null"`
	Email               string     `json:"email" gorm:"uniqueIndex;size:191;not null"`
	PasswordHash        string     `json:"-"`
	Activo              bool       `json:"activo"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	UltimoAcceso        *time.Time `json:"ultimoAcceso,omitempty"`
	Roles               []UserRole `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	return nil
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the provided password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsLocked reports whether too many failed logins locked the account at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RoleNames returns the role names loaded in Roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Rol)
	}
	return names
}

// HasAnyRole reports whether roles contains at least one of required.
func HasAnyRole(roles []string, required ...string) bool {
	for _, want := range required {
		for _, have := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
