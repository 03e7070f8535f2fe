package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
)

// errorMapping traduce errores de dominio a status HTTP y código estable.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidToken, fiber.StatusBadRequest, "INVALID_TOKEN"},
	{domain.ErrTokenExpired, fiber.StatusBadRequest, "TOKEN_EXPIRED"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInvoiceAlreadyPaid, fiber.StatusConflict, "INVOICE_ALREADY_PAID"},
	{domain.ErrClientHasInvoices, fiber.StatusConflict, "CLIENT_HAS_INVOICES"},
	{domain.ErrSystemRole, fiber.StatusConflict, "SYSTEM_ROLE"},
	{domain.ErrRoleInUse, fiber.StatusConflict, "ROLE_IN_USE"},
	{domain.ErrPermissionInUse, fiber.StatusConflict, "PERMISSION_IN_USE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrExternalService, fiber.StatusBadGateway, "EXTERNAL_SERVICE"},
}

// writeError responde con el status que corresponde al error. Los errores no mapeados son 500
// y no exponen el detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// ErrorHandler manejador de errores de Fiber: respeta *fiber.Error y delega el resto en writeError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return writeError(c, err)
}

// pathID valida el parámetro :id. Un id mal formado se reporta como inexistente.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.ErrNotFound
	}
	return id, nil
}
