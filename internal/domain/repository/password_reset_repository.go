package repository

import (
	"context"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// PasswordResetTokenRepository persistencia de tokens de restablecimiento.
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, t *entity.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*entity.PasswordResetToken, error)
	Delete(ctx context.Context, id string) error
	DeleteByEmail(ctx context.Context, email string) error
}
