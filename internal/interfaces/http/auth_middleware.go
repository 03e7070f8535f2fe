package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/pkg/jwt"
)

// Locals keys de la sesión en Fiber.
const (
	LocalUserID      = "user_id"
	LocalRole        = "role"
	LocalPermissions = "permissions"
)

// AuthMiddleware valida el Bearer Token JWT y deja usuario, rol y permisos en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization: Bearer <token> requerido"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if claims.UserID == "" || claims.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no contiene usuario o rol"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalPermissions, claims.Permissions)
		return c.Next()
	}
}

// bearerToken extrae el token del header Authorization.
func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el código de rol del token.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// GetPermissions devuelve los permisos aplanados del token.
func GetPermissions(c *fiber.Ctx) []string {
	p, _ := c.Locals(LocalPermissions).([]string)
	return p
}

// GetActor arma el actor de la petición para los casos de uso.
func GetActor(c *fiber.Ctx) rbac.Actor {
	return rbac.Actor{UserID: GetUserID(c), Role: GetRole(c), Permissions: GetPermissions(c)}
}
