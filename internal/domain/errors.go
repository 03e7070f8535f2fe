package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Facturación y pagos
	ErrInvoiceAlreadyPaid = errors.New("la factura ya está pagada")
	ErrClientHasInvoices  = errors.New("el cliente tiene facturas asociadas")
	ErrExternalService    = errors.New("fallo en servicio externo")

	// RBAC
	ErrSystemRole      = errors.New("los roles del sistema no se pueden eliminar")
	ErrRoleInUse       = errors.New("el rol está asignado a usuarios")
	ErrPermissionInUse = errors.New("el permiso está asignado a roles")

	// Tokens de restablecimiento de contraseña
	ErrInvalidToken = errors.New("token inválido")
	ErrTokenExpired = errors.New("token expirado")
)
