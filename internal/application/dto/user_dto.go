package dto

import "time"

// CreateUserRequest alta de usuario por un administrador.
// Password vacío = se genera una aleatoria y se envía invitación para fijarla.
type CreateUserRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password,omitempty"`
	RoleID           string `json:"role_id"`
	Status           string `json:"status,omitempty"`
	Phone            string `json:"phone,omitempty"`
	PhoneCountryCode string `json:"phone_country_code,omitempty"`
}

// UpdateUserRequest edición de usuario; Password vacío conserva la actual.
type UpdateUserRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password,omitempty"`
	RoleID           string `json:"role_id"`
	Status           string `json:"status"`
	Phone            string `json:"phone,omitempty"`
	PhoneCountryCode string `json:"phone_country_code,omitempty"`
}

// RoleRef referencia corta a un rol.
type RoleRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             RoleRef    `json:"role"`
	Status           string     `json:"status"`
	Phone            string     `json:"phone,omitempty"`
	PhoneCountryCode string     `json:"phone_country_code,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UserListResponse listado paginado de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// UserListQuery filtros de GET /api/users.
type UserListQuery struct {
	PageRequest
	Search string `query:"search"`
	Status string `query:"status"`
}
