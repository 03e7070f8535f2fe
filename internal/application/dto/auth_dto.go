package dto

// RegisterRequest auto-registro (rol "user").
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest credenciales.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token de sesión y datos del usuario.
type LoginResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

// SessionResponse usuario autenticado con sus permisos aplanados y agrupados por módulo.
type SessionResponse struct {
	User             UserResponse        `json:"user"`
	Permissions      []string            `json:"permissions"`
	PermissionGroups map[string][]string `json:"permission_groups"`
}

// ForgotPasswordRequest solicitud de enlace de restablecimiento.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest consumo del token.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangePasswordRequest cambio de contraseña autenticado.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest datos de perfil editables por el propio usuario.
type UpdateProfileRequest struct {
	Name             string `json:"name"`
	Phone            string `json:"phone,omitempty"`
	PhoneCountryCode string `json:"phone_country_code,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
}
