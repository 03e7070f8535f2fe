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
	domainrbac "github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// PermissionView permiso que habilita ver también los permisos inactivos.
const PermissionView = "permission.view"

// PermissionUseCase CRUD del catálogo de permisos.
type PermissionUseCase struct {
	repo repository.PermissionRepository
	now  func() time.Time
}

// NewPermissionUseCase construye el caso de uso.
func NewPermissionUseCase(repo repository.PermissionRepository) *PermissionUseCase {
	return &PermissionUseCase{repo: repo, now: time.Now}
}

// List devuelve todos los permisos si el actor tiene permission.view; si no, solo los activos.
func (uc *PermissionUseCase) List(ctx context.Context, actor domainrbac.Actor) ([]dto.PermissionResponse, error) {
	list, err := uc.repo.List(ctx, !actor.Can(PermissionView))
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPermissionResponse(p))
	}
	return out, nil
}

// GetByID devuelve el permiso o ErrNotFound.
func (uc *PermissionUseCase) GetByID(ctx context.Context, id string) (*dto.PermissionResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toPermissionResponse(p)
	return &out, nil
}

// Create alta de permiso. El código debe ser único y pertenecer al módulo.
func (uc *PermissionUseCase) Create(ctx context.Context, in dto.PermissionRequest) (*dto.PermissionResponse, error) {
	now := uc.now()
	p := &entity.Permission{ID: uuid.New().String(), IsActive: true, CreatedAt: now}
	if err := applyPermissionRequest(p, in); err != nil {
		return nil, err
	}
	p.UpdatedAt = now
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	out := toPermissionResponse(p)
	return &out, nil
}

// Update edita módulo, código, nombre, descripción y estado.
func (uc *PermissionUseCase) Update(ctx context.Context, id string, in dto.PermissionRequest) (*dto.PermissionResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPermissionRequest(p, in); err != nil {
		return nil, err
	}
	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	out := toPermissionResponse(p)
	return &out, nil
}

// Delete falla con ErrPermissionInUse si algún rol lo tiene asignado.
func (uc *PermissionUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	n, err := uc.repo.CountRoles(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrPermissionInUse
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *PermissionUseCase) get(ctx context.Context, id string) (*entity.Permission, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func applyPermissionRequest(p *entity.Permission, in dto.PermissionRequest) error {
	module := strings.ToLower(strings.TrimSpace(in.Module))
	code := strings.ToLower(strings.TrimSpace(in.Code))
	name := strings.TrimSpace(in.Name)
	if module == "" || code == "" || name == "" {
		return fmt.Errorf("%w: module, code y name son obligatorios", domain.ErrInvalidInput)
	}
	if domainrbac.Module(code) != module || !strings.Contains(code, ".") {
		return fmt.Errorf("%w: el código debe tener el formato %s.<accion>", domain.ErrInvalidInput, module)
	}
	p.Module = module
	p.Code = code
	p.Name = name
	p.Description = strings.TrimSpace(in.Description)
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}
