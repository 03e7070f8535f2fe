package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
)

// Vigencias de los tokens de un solo uso y política de contraseñas.
const (
	ResetTokenTTL     = 15 * time.Minute
	InviteTokenTTL    = time.Hour
	MinPasswordLength = 8
	minNameLength     = 2
)

// SessionPermissions permisos aplanados que viajan en el token: los activos del rol
// más el marcador super_admin para ese rol.
func SessionPermissions(role *entity.Role) []string {
	if role == nil {
		return []string{}
	}
	perms := role.PermissionCodes()
	if role.Code == rbac.SuperAdmin {
		perms = append(perms, rbac.SuperAdmin)
	}
	return perms
}

// NewToken genera un token aleatorio de 32 bytes en hexadecimal.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generar token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NormalizeEmail recorta y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail exige un email sintácticamente válido.
func ValidateEmail(email string) error {
	if !govalidator.IsEmail(email) {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	return nil
}

// ValidatePassword aplica la política mínima de contraseñas.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, MinPasswordLength)
	}
	return nil
}

// ValidateName exige al menos dos caracteres.
func ValidateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minNameLength {
		return fmt.Errorf("%w: el nombre debe tener al menos %d caracteres", domain.ErrInvalidInput, minNameLength)
	}
	return nil
}

// ToUserResponse convierte la entidad a DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	out := &dto.UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             dto.RoleRef{ID: u.RoleID},
		Status:           u.Status,
		Phone:            u.Phone,
		PhoneCountryCode: u.PhoneCountryCode,
		ImageURL:         u.ImageURL,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	if u.Role != nil {
		out.Role.Code = u.Role.Code
		out.Role.Name = u.Role.Name
	}
	return out
}

func sessionResponse(u *entity.User, perms []string) dto.SessionResponse {
	return dto.SessionResponse{
		User:             *ToUserResponse(u),
		Permissions:      perms,
		PermissionGroups: rbac.GroupPermissions(perms),
	}
}
