package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Billing-api/internal/application/analytics"
	"github.com/jhoicas/Billing-api/internal/application/dto"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen de facturación.
// GET /api/dashboard/summary?from=YYYY-MM-DD&to=YYYY-MM-DD
//
// Respuesta: DashboardSummaryDTO (totales por estado, cobrado, pendiente y serie de 6 meses).
// Los usuarios del portal solo ven cifras de su propio cliente.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	var q dto.DashboardQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	summary, err := h.uc.GetSummary(c.UserContext(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
