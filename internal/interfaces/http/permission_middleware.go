package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
)

// RequirePermission devuelve un middleware que exige al menos uno de los permisos indicados.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalPermissions).
//
// Comportamiento:
//   - 401 Unauthorized → no hay sesión en el contexto.
//   - 403 Forbidden    → ningún permiso del token concede los requeridos.
func RequirePermission(required ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "sesión no encontrada en el contexto",
			})
		}
		if !rbac.HasAny(GetPermissions(c), required...) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "se requiere alguno de los permisos: " + strings.Join(required, ", "),
			})
		}
		return c.Next()
	}
}
