package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userSelect = `
	SELECT u.id, u.name, u.email, u.password_hash, u.role_id, u.status,
	       u.phone, u.phone_country_code, u.image_url, u.last_login_at,
	       u.created_at, u.updated_at, r.code, r.name
	FROM users u
	JOIN roles r ON r.id = u.role_id`

// UserRepo implementación de UserRepository (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(s scanner, extra ...any) (*entity.User, error) {
	var u entity.User
	role := &entity.Role{}
	dest := []any{
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.Status,
		&u.Phone, &u.PhoneCountryCode, &u.ImageURL, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt, &role.Code, &role.Name,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	role.ID = u.RoleID
	u.Role = role
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, role_id, status, phone, phone_country_code,
		                   image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.RoleID, u.Status, u.Phone, u.PhoneCountryCode,
		u.ImageURL, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID con su rol.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail busca por email sin distinguir mayúsculas.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, userSelect+` WHERE lower(u.email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update actualiza datos de perfil, rol, estado y hash.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	const query = `
		UPDATE users SET name = $2, email = $3, password_hash = $4, role_id = $5, status = $6,
		       phone = $7, phone_country_code = $8, image_url = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.RoleID, u.Status,
		u.Phone, u.PhoneCountryCode, u.ImageURL, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordByEmail reemplaza el hash del usuario con ese email.
func (r *UserRepo) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE lower(email) = lower($1)`,
		email, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// TouchLastLogin registra el último inicio de sesión.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.q.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// List lista usuarios con búsqueda, filtro de estado y paginación. Devuelve también el total.
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, int, error) {
	query := `
	SELECT u.id, u.name, u.email, u.password_hash, u.role_id, u.status,
	       u.phone, u.phone_country_code, u.image_url, u.last_login_at,
	       u.created_at, u.updated_at, r.code, r.name, COUNT(*) OVER()
	FROM users u
	JOIN roles r ON r.id = u.role_id
	WHERE ($1 = '' OR u.name ILIKE '%' || $1 || '%' OR u.email ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR u.status = $2)
	ORDER BY u.created_at DESC
	LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.Search, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.User
		total int
	)
	for rows.Next() {
		u, err := scanUser(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// Delete elimina el usuario (borrado físico).
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CountByRole cantidad de usuarios asignados al rol.
func (r *UserRepo) CountByRole(ctx context.Context, roleID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role_id = $1`, roleID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}
