package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrAccountLocked      = errors.New("cuenta bloqueada temporalmente")
	ErrAccountInactive    = errors.New("cuenta desactivada")
	ErrEmailTaken         = errors.New("el email ya está registrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

type AuthService struct {
	db     *gorm.DB
	tokens *JWTManager
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, tokens *JWTManager) *AuthService {
	return &AuthService{db: db, tokens: tokens, now: time.Now}
}

// Register creates an active account with the Empleado role.
func (s *AuthService) Register(email, password, nombre string) (*models.User, error) {
	email = normalizeEmail(email)
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		UUID:   uuid.NewString(),
		Nombre: strings.TrimSpace(nombre),
		Email:  email,
		Activo: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		role := models.UserRole{UserID: user.ID, Rol: models.RoleEmpleado}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		user.Roles = []models.UserRole{role}
		return nil
	})
	if err != nil {
		if emailConflict(s.db, email, err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// emailConflict reports whether a failed user insert lost a race for email
// against a concurrent insert.
func emailConflict(db *gorm.DB, email string, err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var count int64
	if db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error != nil {
		return false
	}
	return count > 0
}

// Login checks the credentials and returns a signed token. Five consecutive
// failures lock the account for fifteen minutes.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	now := s.now()
	if user.IsLocked(now) {
		return "", nil, ErrAccountLocked
	}
	if user.LockedUntil != nil {
		// The lock ran out: the next failure starts a fresh count.
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
	}

	if !user.CheckPassword(password) {
		user.FailedLoginAttempts++
		updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts, "locked_until": nil}
		if user.FailedLoginAttempts >= maxFailedLogins {
			until := now.Add(lockoutDuration)
			updates["locked_until"] = until
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return "", nil, err
		}
		return "", nil, ErrInvalidCredentials
	}

	if !user.Activo {
		return "", nil, ErrAccountInactive
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.UltimoAcceso = &now
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"ultimo_acceso":         now,
	}).Error; err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// IssueToken signs a token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	token, _, err := s.tokens.Issue(user)
	return token, err
}

// GetUserByID loads a user with its roles.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ResetPassword sets a new password for email and clears any lock-out.
func (s *AuthService) ResetPassword(email, password string) error {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.Model(&user).Updates(map[string]interface{}{
		"password_hash":         user.PasswordHash,
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
