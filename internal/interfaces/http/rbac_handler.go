package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	apprbac "github.com/jhoicas/Billing-api/internal/application/rbac"
)

// PermissionHandler CRUD del catálogo de permisos.
type PermissionHandler struct {
	uc *apprbac.PermissionUseCase
}

// NewPermissionHandler construye el handler.
func NewPermissionHandler(uc *apprbac.PermissionUseCase) *PermissionHandler {
	return &PermissionHandler{uc: uc}
}

// List GET /api/permissions. Sin permission.view solo devuelve los activos.
func (h *PermissionHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/permissions/:id
func (h *PermissionHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create POST /api/permissions
func (h *PermissionHandler) Create(c *fiber.Ctx) error {
	var in dto.PermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update PUT /api/permissions/:id
func (h *PermissionHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.PermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/permissions/:id
func (h *PermissionHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RoleHandler CRUD de roles.
type RoleHandler struct {
	uc *apprbac.RoleUseCase
}

// NewRoleHandler construye el handler.
func NewRoleHandler(uc *apprbac.RoleUseCase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

// List GET /api/roles
func (h *RoleHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/roles/:id
func (h *RoleHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create POST /api/roles
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var in dto.RoleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update PUT /api/roles/:id. El código del rol no cambia.
func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.RoleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
