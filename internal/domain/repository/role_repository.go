package repository

import (
	"context"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// RoleRepository persistencia de roles y de su relación con permisos.
// Create y Update escriben role_permissions a partir de los IDs en Role.Permissions.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByCode(ctx context.Context, code string) (*entity.Role, error)
	// List devuelve todos los roles con sus permisos y la cantidad de usuarios asignados.
	List(ctx context.Context) ([]*entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
	Delete(ctx context.Context, id string) error
}
