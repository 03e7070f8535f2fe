package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// WebhookHandler recibe eventos firmados del procesador de pagos (público).
type WebhookHandler struct {
	uc  *billing.PaymentUseCase
	log *logger.Logger
}

// NewWebhookHandler construye el handler.
func NewWebhookHandler(uc *billing.PaymentUseCase, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{uc: uc, log: log.Named("webhook")}
}

// Stripe POST /api/webhooks/stripe. Firma inválida = 400; cualquier evento válido se confirma con 200.
func (h *WebhookHandler) Stripe(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if err := h.uc.HandleWebhook(c.UserContext(), payload, c.Get("Stripe-Signature")); err != nil {
		h.log.Warn().Err(err).Msg("webhook rechazado")
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
