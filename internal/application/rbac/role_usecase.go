package rbac

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// RoleUseCase CRUD de roles y de su conjunto de permisos.
type RoleUseCase struct {
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
	userRepo       repository.UserRepository
	now            func() time.Time
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(roleRepo repository.RoleRepository, permissionRepo repository.PermissionRepository, userRepo repository.UserRepository) *RoleUseCase {
	return &RoleUseCase{roleRepo: roleRepo, permissionRepo: permissionRepo, userRepo: userRepo, now: time.Now}
}

// List roles con permisos y cantidad de usuarios.
func (uc *RoleUseCase) List(ctx context.Context) ([]*dto.RoleResponse, error) {
	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out, nil
}

// GetByID rol con sus permisos.
func (uc *RoleUseCase) GetByID(ctx context.Context, id string) (*dto.RoleResponse, error) {
	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRoleResponse(r), nil
}

// Create alta de rol. Código duplicado devuelve ErrDuplicate.
func (uc *RoleUseCase) Create(ctx context.Context, in dto.RoleRequest) (*dto.RoleResponse, error) {
	code := strings.ToLower(strings.TrimSpace(in.Code))
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code y name son obligatorios", domain.ErrInvalidInput)
	}
	perms, err := uc.resolvePermissions(ctx, in.PermissionIDs)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	r := &entity.Role{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.roleRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return toRoleResponse(r), nil
}

// Update cambia nombre, descripción y reemplaza el conjunto de permisos. El código no cambia.
func (uc *RoleUseCase) Update(ctx context.Context, id string, in dto.RoleRequest) (*dto.RoleResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es obligatorio", domain.ErrInvalidInput)
	}
	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := uc.resolvePermissions(ctx, in.PermissionIDs)
	if err != nil {
		return nil, err
	}
	r.Name = name
	r.Description = strings.TrimSpace(in.Description)
	r.Permissions = perms
	r.UpdatedAt = uc.now()
	if err := uc.roleRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	return toRoleResponse(r), nil
}

// Delete no permite borrar roles del sistema ni roles con usuarios asignados.
func (uc *RoleUseCase) Delete(ctx context.Context, id string) error {
	r, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	if r.IsSystemRole {
		return domain.ErrSystemRole
	}
	n, err := uc.userRepo.CountByRole(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrRoleInUse
	}
	return uc.roleRepo.Delete(ctx, id)
}

func (uc *RoleUseCase) get(ctx context.Context, id string) (*entity.Role, error) {
	r, err := uc.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// resolvePermissions exige que todos los IDs existan; los repetidos se ignoran.
func (uc *RoleUseCase) resolvePermissions(ctx context.Context, ids []string) ([]*entity.Permission, error) {
	if len(ids) == 0 {
		return []*entity.Permission{}, nil
	}
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: permission_id %q inválido", domain.ErrInvalidInput, id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	perms, err := uc.permissionRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(perms) != len(unique) {
		return nil, fmt.Errorf("%w: permisos inexistentes en permission_ids", domain.ErrInvalidInput)
	}
	return perms, nil
}
