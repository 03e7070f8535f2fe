package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
)

// SeedAdmin credenciales opcionales del super administrador inicial.
type SeedAdmin struct {
	Name     string
	Email    string
	Password string
}

// SeedResult resumen de lo insertado.
type SeedResult struct {
	Permissions int
	Roles       int
	AdminID     string
}

// Seed inserta el catálogo de permisos, los roles del sistema y, si se indica, el super administrador.
// Es idempotente: lo existente (por código o email) no se modifica.
func Seed(ctx context.Context, q Querier, admin *SeedAdmin) (*SeedResult, error) {
	res := &SeedResult{}
	err := pgx.BeginFunc(ctx, q, func(tx pgx.Tx) error {
		now := time.Now()
		for _, p := range rbac.Catalog {
			tag, err := tx.Exec(ctx, `
				INSERT INTO permissions (id, module, code, name, is_active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, TRUE, $5, $5)
				ON CONFLICT (code) DO NOTHING`, uuid.NewString(), p.Module, p.Code, p.Name, now)
			if err != nil {
				return fmt.Errorf("seed permiso %s: %w", p.Code, err)
			}
			res.Permissions += int(tag.RowsAffected())
		}

		for _, role := range rbac.SystemRoles() {
			var roleID string
			err := tx.QueryRow(ctx, `
				INSERT INTO roles (id, code, name, description, is_system_role, created_at, updated_at)
				VALUES ($1, $2, $3, $4, TRUE, $5, $5)
				ON CONFLICT (code) DO NOTHING
				RETURNING id`, uuid.NewString(), role.Code, role.Name, role.Description, now).Scan(&roleID)
			if errors.Is(err, pgx.ErrNoRows) {
				continue // rol ya existente: no se tocan sus permisos
			}
			if err != nil {
				return fmt.Errorf("seed rol %s: %w", role.Code, err)
			}
			res.Roles++
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				SELECT $1, p.id FROM permissions p WHERE p.code = ANY($2::text[])
				ON CONFLICT DO NOTHING`, roleID, role.Permissions); err != nil {
				return fmt.Errorf("seed permisos de %s: %w", role.Code, err)
			}
		}

		if admin == nil || admin.Email == "" {
			return nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		id := uuid.NewString()
		tag, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash, role_id, status, created_at, updated_at)
			SELECT $1, $2, $3, $4, r.id, $5, $6, $6 FROM roles r WHERE r.code = $7
			ON CONFLICT DO NOTHING`,
			id, admin.Name, admin.Email, string(hash), entity.UserStatusActive, now, entity.RoleSuperAdmin)
		if err != nil {
			return fmt.Errorf("seed super admin: %w", err)
		}
		if tag.RowsAffected() > 0 {
			res.AdminID = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
