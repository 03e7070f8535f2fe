package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// ReminderRunner ejecuta el job de recordatorios.
type ReminderRunner interface {
	Run(ctx context.Context, now time.Time) (billing.ReminderResult, error)
}

// CronHandler disparo HTTP del job de recordatorios con un secreto compartido.
type CronHandler struct {
	runner ReminderRunner
	secret string
	log    *logger.Logger
}

// NewCronHandler construye el handler. Con secret vacío el endpoint responde 503.
func NewCronHandler(runner ReminderRunner, secret string, log *logger.Logger) *CronHandler {
	return &CronHandler{runner: runner, secret: secret, log: log.Named("cron")}
}

// ErrCronDisabled el endpoint de cron no tiene secreto configurado.
var ErrCronDisabled = errors.New("CRON_SECRET no configurado")

// Invoices GET /api/cron/invoices con Authorization: Bearer <CRON_SECRET>.
func (h *CronHandler) Invoices(c *fiber.Ctx) error {
	if h.secret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CRON_DISABLED", Message: ErrCronDisabled.Error()})
	}
	token, ok := bearerToken(c)
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "secreto de cron inválido"})
	}
	res, err := h.runner.Run(c.UserContext(), time.Now())
	if err != nil {
		h.log.Error().Err(err).Msg("job de recordatorios")
		return writeError(c, err)
	}
	return c.JSON(dto.ReminderRunResponse{Success: true, RemindersSent: res.RemindersSent, OverdueSent: res.OverdueSent})
}
