package rbac

// CatalogEntry permiso del catálogo base.
type CatalogEntry struct {
	Module string
	Code   string
	Name   string
}

// Catalog catálogo base de permisos sembrado en una instalación nueva.
var Catalog = []CatalogEntry{
	{"client", "client.view", "Ver clientes"},
	{"client", "client.create", "Crear clientes"},
	{"client", "client.edit", "Editar clientes"},
	{"client", "client.delete", "Eliminar clientes"},
	{"invoice", "invoice.view", "Ver facturas"},
	{"invoice", "invoice.create", "Crear facturas"},
	{"invoice", "invoice.edit", "Editar facturas"},
	{"invoice", "invoice.pay", "Pagar facturas"},
	{"invoice", "invoice.delete", "Eliminar facturas"},
	{"user", "user.view", "Ver usuarios"},
	{"user", "user.create", "Crear usuarios"},
	{"user", "user.edit", "Editar usuarios"},
	{"user", "user.delete", "Eliminar usuarios"},
	{"role", "role.view", "Ver roles"},
	{"role", "role.create", "Crear roles"},
	{"role", "role.edit", "Editar roles"},
	{"role", "role.delete", "Eliminar roles"},
	{"permission", "permission.view", "Ver permisos"},
	{"permission", "permission.create", "Crear permisos"},
	{"permission", "permission.edit", "Editar permisos"},
	{"permission", "permission.delete", "Eliminar permisos"},
}

// SystemRole rol del sistema con su conjunto de permisos.
type SystemRole struct {
	Code        string
	Name        string
	Description string
	Permissions []string
}

// SystemRoles roles sembrados; no se pueden eliminar.
func SystemRoles() []SystemRole {
	all := make([]string, 0, len(Catalog))
	staff := make([]string, 0, len(Catalog))
	for _, e := range Catalog {
		all = append(all, e.Code)
		if e.Module != "role" {
			staff = append(staff, e.Code)
		}
	}
	return []SystemRole{
		{Code: "super_admin", Name: "Super Admin", Description: "Acceso total", Permissions: all},
		{Code: "admin", Name: "Administrador", Description: "Gestión de clientes, facturas y usuarios", Permissions: staff},
		{Code: "user", Name: "Usuario", Description: "Consulta y cobro de facturas",
			Permissions: []string{"client.view", "invoice.view", "invoice.pay"}},
		{Code: "client", Name: "Cliente", Description: "Portal de clientes",
			Permissions: []string{"invoice.view", "invoice.pay"}},
	}
}
