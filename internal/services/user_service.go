package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/websap/backend/internal/models"
)

var (
	ErrUnknownRole   = errors.New("rol desconocido")
	ErrRolesRequired = errors.New("se requiere al menos un rol")
	ErrUserFields    = errors.New("nombre, email y password son obligatorios")
)

// UserFilter narrows List. Zero values do not filter.
type UserFilter struct {
	Search string
	Role   string
	Activo *bool
}

// UserInput carries the fields of a user create or update. Nil pointers are
// left untouched on update.
type UserInput struct {
	Nombre   *string
	Email    *string
	Password *string
	Activo   *bool
	Roles    []string
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(f UserFilter) ([]models.User, error) {
	var users []models.User
	q := s.db.Preload("Roles").Order("nombre asc")
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(nombre) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if f.Role != "" {
		q = q.Where("id IN (?)", s.db.Model(&models.UserRole{}).Select("user_id").Where("rol = ?", f.Role))
	}
	if f.Activo != nil {
		q = q.Where("activo = ?", *f.Activo)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create adds a user. Without roles the user gets Empleado; Activo defaults to true.
func (s *UserService) Create(in UserInput, by *uint) (*models.User, error) {
	if in.Nombre == nil || strings.TrimSpace(*in.Nombre) == "" || in.Email == nil || in.Password == nil {
		return nil, ErrUserFields
	}
	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleEmpleado}
	}
	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	email := normalizeEmail(*in.Email)
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user := &models.User{Nombre: strings.TrimSpace(*in.Nombre), Email: email, Activo: true}
	if in.Activo != nil {
		user.Activo = *in.Activo
	}
	if err := user.SetPassword(*in.Password); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		assigned, err := replaceRoles(tx, user.ID, roles, by)
		if err != nil {
			return err
		}
		user.Roles = assigned
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

func (s *UserService) Update(id uint, in UserInput, by *uint) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Nombre != nil {
		updates["nombre"] = strings.TrimSpace(*in.Nombre)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != user.Email {
			var count int64
			if err := s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrEmailTaken
			}
		}
		updates["email"] = email
	}
	if in.Password != nil && *in.Password != "" {
		if err := user.SetPassword(*in.Password); err != nil {
			return nil, err
		}
		updates["password_hash"] = user.PasswordHash
	}
	if in.Activo != nil {
		updates["activo"] = *in.Activo
	}
	if in.Roles != nil {
		if err := validateRoles(in.Roles); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.Roles != nil {
			if _, err := replaceRoles(tx, id, in.Roles, by); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes the user and its role assignments.
func (s *UserService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// SetRoles replaces the role set of a user.
func (s *UserService) SetRoles(id uint, roles []string, by *uint) (*models.User, error) {
	if err := validateRoles(roles); err != nil {
		return nil, err
	}
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		_, err := replaceRoles(tx, id, roles, by)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func validateRoles(roles []string) error {
	if len(roles) == 0 {
		return ErrRolesRequired
	}
	for _, r := range roles {
		if !models.IsKnownRole(r) {
			return fmt.Errorf("%w: %q", ErrUnknownRole, r)
		}
	}
	return nil
}

func replaceRoles(tx *gorm.DB, userID uint, roles []string, by *uint) ([]models.UserRole, error) {
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(roles))
	out := make([]models.UserRole, 0, len(roles))
	for _, r := range roles {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, models.UserRole{UserID: userID, Rol: r, AsignadoPor: by})
	}
	if err := tx.Create(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
