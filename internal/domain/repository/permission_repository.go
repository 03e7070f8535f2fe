package repository

import (
	"context"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// PermissionRepository persistencia del catálogo de permisos.
type PermissionRepository interface {
	Create(ctx context.Context, p *entity.Permission) error
	GetByID(ctx context.Context, id string) (*entity.Permission, error)
	GetByCode(ctx context.Context, code string) (*entity.Permission, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Permission, error)
	// List ordena por módulo y nombre. onlyActive excluye los inactivos.
	List(ctx context.Context, onlyActive bool) ([]*entity.Permission, error)
	Update(ctx context.Context, p *entity.Permission) error
	Delete(ctx context.Context, id string) error
	// CountRoles cantidad de roles que referencian el permiso.
	CountRoles(ctx context.Context, id string) (int, error)
}
