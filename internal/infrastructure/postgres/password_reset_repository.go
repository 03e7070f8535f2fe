package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ repository.PasswordResetTokenRepository = (*PasswordResetRepo)(nil)

// PasswordResetRepo tokens de restablecimiento de contraseña.
type PasswordResetRepo struct {
	q Querier
}

// NewPasswordResetRepository construye el adaptador.
func NewPasswordResetRepository(q Querier) *PasswordResetRepo {
	return &PasswordResetRepo{q: q}
}

// Create persiste el token.
func (r *PasswordResetRepo) Create(ctx context.Context, t *entity.PasswordResetToken) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO password_reset_tokens (id, email, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`, t.ID, t.Email, t.Token, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// GetByToken busca por valor del token.
func (r *PasswordResetRepo) GetByToken(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	var t entity.PasswordResetToken
	err := r.q.QueryRow(ctx,
		`SELECT id, email, token, expires_at, created_at FROM password_reset_tokens WHERE token = $1`, token,
	).Scan(&t.ID, &t.Email, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reset token: %w", err)
	}
	return &t, nil
}

// Delete consume el token.
func (r *PasswordResetRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM password_reset_tokens WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

// DeleteByEmail invalida todos los tokens previos del email.
func (r *PasswordResetRepo) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM password_reset_tokens WHERE lower(email) = lower($1)`, email); err != nil {
		return fmt.Errorf("delete reset tokens by email: %w", err)
	}
	return nil
}
