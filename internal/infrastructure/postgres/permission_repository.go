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

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

const permissionColumns = `p.id, p.module, p.code, p.name, p.description, p.is_active, p.created_at, p.updated_at`

// PermissionRepo implementación de PermissionRepository.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador.
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

func scanPermission(s scanner) (*entity.Permission, error) {
	var p entity.Permission
	err := s.Scan(&p.ID, &p.Module, &p.Code, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPermissions(rows pgx.Rows) ([]*entity.Permission, error) {
	defer rows.Close()
	var list []*entity.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Create persiste un permiso. Código duplicado → ErrDuplicate.
func (r *PermissionRepo) Create(ctx context.Context, p *entity.Permission) error {
	const query = `
		INSERT INTO permissions (id, module, code, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, p.ID, p.Module, p.Code, p.Name, p.Description, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert permission: %w", err)
	}
	return nil
}

// GetByID obtiene un permiso por ID.
func (r *PermissionRepo) GetByID(ctx context.Context, id string) (*entity.Permission, error) {
	p, err := scanPermission(r.q.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return p, nil
}

// GetByCode obtiene un permiso por código.
func (r *PermissionRepo) GetByCode(ctx context.Context, code string) (*entity.Permission, error) {
	p, err := scanPermission(r.q.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions p WHERE p.code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission by code: %w", err)
	}
	return p, nil
}

// GetByIDs devuelve los permisos existentes entre ids.
func (r *PermissionRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+permissionColumns+` FROM permissions p WHERE p.id = ANY($1::uuid[]) ORDER BY p.module, p.name`, ids)
	if err != nil {
		return nil, fmt.Errorf("get permissions by ids: %w", err)
	}
	return collectPermissions(rows)
}

// List ordena por módulo y nombre.
func (r *PermissionRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Permission, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+permissionColumns+` FROM permissions p WHERE (NOT $1 OR p.is_active) ORDER BY p.module, p.name`, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return collectPermissions(rows)
}

// Update actualiza módulo, código, nombre, descripción y estado.
func (r *PermissionRepo) Update(ctx context.Context, p *entity.Permission) error {
	const query = `
		UPDATE permissions SET module = $2, code = $3, name = $4, description = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Module, p.Code, p.Name, p.Description, p.IsActive, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update permission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el permiso. Si algún rol lo referencia → ErrPermissionInUse.
func (r *PermissionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrPermissionInUse
		}
		return fmt.Errorf("delete permission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountRoles cantidad de roles que referencian el permiso.
func (r *PermissionRepo) CountRoles(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM role_permissions WHERE permission_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count roles by permission: %w", err)
	}
	return n, nil
}
