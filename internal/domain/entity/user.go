package entity

import "time"

// Estados válidos para User.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// User representa una cuenta de acceso (staff o portal de cliente).
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string // bcrypt hash, nunca plano en dominio después de persistir
	RoleID           string
	Status           string // ACTIVE, INACTIVE
	Phone            string
	PhoneCountryCode string
	ImageURL         string
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Role se carga junto al usuario cuando el repositorio hace JOIN con roles.
	Role *Role
}

// IsActive indica si el usuario puede iniciar sesión.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// RoleCode devuelve el código del rol cargado o "" si no se cargó.
func (u *User) RoleCode() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Code
}
