package rbac

// RoleClient código del rol de los usuarios del portal de clientes.
const RoleClient = "client"

// Actor identidad autenticada que ejecuta una operación (extraída del token).
type Actor struct {
	UserID      string
	Role        string
	Permissions []string
}

// Can evalúa un permiso requerido con HasPermission.
func (a Actor) Can(required string) bool {
	return HasPermission(a.Permissions, required)
}

// IsSuperAdmin indica si el actor tiene el rol super_admin.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == SuperAdmin
}

// IsClient indica si el actor es un usuario del portal de clientes.
func (a Actor) IsClient() bool {
	return a.Role == RoleClient
}
