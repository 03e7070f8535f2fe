package entity

import "time"

// PasswordResetToken token de un solo uso para fijar o restablecer la contraseña.
type PasswordResetToken struct {
	ID        string
	Email     string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired indica si el token venció respecto a now.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
