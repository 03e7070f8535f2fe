package entity

import "time"

// Códigos de los roles del sistema (sembrados por la migración inicial).
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
	RoleClient     = "client"
)

// Role agrupa permisos atómicos. Code es único e inmutable tras la creación.
type Role struct {
	ID           string
	Code         string
	Name         string
	Description  string
	IsSystemRole bool
	Permissions  []*Permission
	UserCount    int // solo se llena en listados
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PermissionCodes devuelve los códigos de los permisos activos del rol.
func (r *Role) PermissionCodes() []string {
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		if p.IsActive {
			codes = append(codes, p.Code)
		}
	}
	return codes
}
