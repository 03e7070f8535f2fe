package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
)

// BillingHandler portal y checkout del procesador de pagos.
type BillingHandler struct {
	uc *billing.PaymentUseCase
}

// NewBillingHandler construye el handler.
func NewBillingHandler(uc *billing.PaymentUseCase) *BillingHandler {
	return &BillingHandler{uc: uc}
}

// Portal POST /api/billing/portal
func (h *BillingHandler) Portal(c *fiber.Ctx) error {
	var in dto.PortalRequest
	if err := bodyOptional(c, &in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Portal(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Checkout POST /api/billing/checkout
func (h *BillingHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := bodyOptional(c, &in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Checkout(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// bodyOptional parsea el body solo si viene alguno.
func bodyOptional(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}
