package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

const roleColumns = `r.id, r.code, r.name, r.description, r.is_system_role, r.created_at, r.updated_at`

// RoleRepo implementación de RoleRepository. Escribe roles y role_permissions en la misma transacción.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

func scanRole(s scanner, extra ...any) (*entity.Role, error) {
	var role entity.Role
	dest := []any{&role.ID, &role.Code, &role.Name, &role.Description, &role.IsSystemRole, &role.CreatedAt, &role.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &role, nil
}

func permissionIDs(role *entity.Role) []string {
	ids := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		ids = append(ids, p.ID)
	}
	return ids
}

func replaceRolePermissions(ctx context.Context, tx pgx.Tx, roleID string, ids []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("clear role permissions: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`, roleID, ids)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: permiso inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert role permissions: %w", err)
	}
	return nil
}

// Create persiste el rol y sus permisos. Código duplicado → ErrDuplicate.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO roles (id, code, name, description, is_system_role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			role.ID, role.Code, role.Name, role.Description, role.IsSystemRole, role.CreatedAt, role.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert role: %w", err)
		}
		return replaceRolePermissions(ctx, tx, role.ID, permissionIDs(role))
	})
}

func (r *RoleRepo) getOne(ctx context.Context, where string, arg any) (*entity.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles r WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+permissionColumns+`
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.module, p.name`, role.ID)
	if err != nil {
		return nil, fmt.Errorf("get role permissions: %w", err)
	}
	role.Permissions, err = collectPermissions(rows)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// GetByID obtiene el rol con sus permisos.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.getOne(ctx, `r.id = $1`, id)
}

// GetByCode obtiene el rol con sus permisos por código.
func (r *RoleRepo) GetByCode(ctx context.Context, code string) (*entity.Role, error) {
	return r.getOne(ctx, `r.code = $1`, code)
}

// List devuelve todos los roles con permisos y cantidad de usuarios.
func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+roleColumns+`, (SELECT COUNT(*) FROM users u WHERE u.role_id = r.id)
		FROM roles r
		ORDER BY r.name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	var roles []*entity.Role
	byID := map[string]*entity.Role{}
	for rows.Next() {
		var count int
		role, err := scanRole(rows, &count)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan role: %w", err)
		}
		role.UserCount = count
		roles = append(roles, role)
		byID[role.ID] = role
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	permRows, err := r.q.Query(ctx, `
		SELECT rp.role_id, `+permissionColumns+`
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		ORDER BY p.module, p.name`)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer permRows.Close()
	for permRows.Next() {
		var (
			roleID string
			p      entity.Permission
		)
		if err := permRows.Scan(&roleID, &p.ID, &p.Module, &p.Code, &p.Name, &p.Description,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		if role, ok := byID[roleID]; ok {
			role.Permissions = append(role.Permissions, &p)
		}
	}
	return roles, permRows.Err()
}

// Update actualiza nombre y descripción (el código es inmutable) y reemplaza los permisos.
func (r *RoleRepo) Update(ctx context.Context, role *entity.Role) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE roles SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
			role.ID, role.Name, role.Description, role.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return replaceRolePermissions(ctx, tx, role.ID, permissionIDs(role))
	})
}

// Delete elimina el rol (role_permissions en cascada). Con usuarios asignados → ErrRoleInUse.
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRoleInUse
		}
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
