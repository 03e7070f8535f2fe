package dto

import "time"

// PermissionRequest alta o edición de permiso.
type PermissionRequest struct {
	Module      string `json:"module"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// PermissionResponse permiso en respuestas.
type PermissionResponse struct {
	ID          string    `json:"id"`
	Module      string    `json:"module"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleRequest alta o edición de rol. Code se ignora al editar.
type RoleRequest struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	PermissionIDs []string `json:"permission_ids"`
}

// RoleResponse rol con permisos (planos y agrupados por módulo).
type RoleResponse struct {
	ID               string               `json:"id"`
	Code             string               `json:"code"`
	Name             string               `json:"name"`
	Description      string               `json:"description,omitempty"`
	IsSystemRole     bool                 `json:"is_system_role"`
	UserCount        int                  `json:"user_count"`
	Permissions      []PermissionResponse `json:"permissions"`
	PermissionGroups map[string][]string  `json:"permission_groups"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}
