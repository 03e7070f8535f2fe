package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/notification"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/jhoicas/Billing-api/pkg/metrics"
)

// ReminderRunner job de recordatorios.
type ReminderRunner interface {
	Run(ctx context.Context, now time.Time) (appbilling.ReminderResult, error)
}

// Handler procesa las tareas del worker.
type Handler struct {
	mailer    notification.Mailer
	reminders ReminderRunner
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewHandler construye el handler. metrics puede ser nil.
func NewHandler(mailer notification.Mailer, reminders ReminderRunner, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{mailer: mailer, reminders: reminders, metrics: m, log: log.Named("worker"), now: time.Now}
}

// RegisterHandlers registra los tipos de tarea en el mux.
func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeEmailSend, h.HandleEmail)
	mux.HandleFunc(TypeRemindersRun, h.HandleReminders)
}

// HandleEmail envía un email encolado. Un payload corrupto no se reintenta.
func (h *Handler) HandleEmail(ctx context.Context, t *asynq.Task) error {
	var msg notification.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.mailer.Send(ctx, msg); err != nil {
		h.metrics.EmailResult(string(msg.Kind), "failed")
		h.log.Error().Err(err).Str("kind", string(msg.Kind)).Str("to", msg.To).Msg("fallo al enviar email")
		return err
	}
	h.metrics.EmailResult(string(msg.Kind), "sent")
	return nil
}

// HandleReminders ejecuta el job de recordatorios con la hora actual.
func (h *Handler) HandleReminders(ctx context.Context, _ *asynq.Task) error {
	res, err := h.reminders.Run(ctx, h.now())
	if err != nil {
		h.log.Error().Err(err).Msg("job de recordatorios falló")
		return err
	}
	h.log.Info().Int("reminders_sent", res.RemindersSent).Int("overdue_sent", res.OverdueSent).Msg("job de recordatorios completado")
	return nil
}
