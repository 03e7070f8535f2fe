// Package rbac casos de uso de administración de roles y permisos.
package rbac

import (
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	domainrbac "github.com/jhoicas/Billing-api/internal/domain/rbac"
)

func toPermissionResponse(p *entity.Permission) dto.PermissionResponse {
	return dto.PermissionResponse{
		ID:          p.ID,
		Module:      p.Module,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toRoleResponse(r *entity.Role) *dto.RoleResponse {
	out := &dto.RoleResponse{
		ID:           r.ID,
		Code:         r.Code,
		Name:         r.Name,
		Description:  r.Description,
		IsSystemRole: r.IsSystemRole,
		UserCount:    r.UserCount,
		Permissions:  make([]dto.PermissionResponse, 0, len(r.Permissions)),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	for _, p := range r.Permissions {
		out.Permissions = append(out.Permissions, toPermissionResponse(p))
	}
	out.PermissionGroups = domainrbac.GroupPermissions(r.PermissionCodes())
	return out
}
