package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/jhoicas/Billing-api/pkg/metrics"
)

// Tipos de recordatorio (también usados como etiqueta de métricas y clave del ledger).
const (
	ReminderDueSoon = "due_soon"
	ReminderOverdue = "overdue"
)

// ReminderResult cantidad de emails despachados por tipo.
type ReminderResult struct {
	RemindersSent int
	OverdueSent   int
}

// ReminderUseCase envía recordatorios de vencimiento (en 2 días) y de mora (vencidas ayer).
type ReminderUseCase struct {
	invoiceRepo repository.InvoiceRepository
	notifier    Notifier
	ledger      ReminderLedger
	loc         *time.Location
	metrics     *metrics.Metrics
	log         *logger.Logger
}

// NewReminderUseCase construye el job. loc define los límites de cada día; nil equivale a UTC.
func NewReminderUseCase(
	invoiceRepo repository.InvoiceRepository,
	notifier Notifier,
	loc *time.Location,
	m *metrics.Metrics,
	log *logger.Logger,
) *ReminderUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderUseCase{invoiceRepo: invoiceRepo, notifier: notifier, loc: loc, metrics: m, log: log.Named("reminders")}
}

// WithLedger activa la deduplicación de recordatorios entre ejecuciones.
func (uc *ReminderUseCase) WithLedger(l ReminderLedger) *ReminderUseCase {
	uc.ledger = l
	return uc
}

// Run procesa las facturas PENDING que vencen en now+2 días y las que vencieron en now-1 día.
func (uc *ReminderUseCase) Run(ctx context.Context, now time.Time) (ReminderResult, error) {
	local := now.In(uc.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, uc.loc)

	var res ReminderResult
	dueSoon, err := uc.invoiceRepo.ListPendingDueOn(ctx, today.AddDate(0, 0, 2))
	if err != nil {
		return res, fmt.Errorf("facturas por vencer: %w", err)
	}
	overdue, err := uc.invoiceRepo.ListPendingDueOn(ctx, today.AddDate(0, 0, -1))
	if err != nil {
		return res, fmt.Errorf("facturas vencidas: %w", err)
	}

	res.RemindersSent = uc.send(ctx, ReminderDueSoon, today, dueSoon, uc.notifier.DueSoon)
	res.OverdueSent = uc.send(ctx, ReminderOverdue, today, overdue, uc.notifier.Overdue)

	uc.log.Info().
		Str("day", today.Format(dateLayout)).
		Int("due_soon", res.RemindersSent).
		Int("overdue", res.OverdueSent).
		Msg("recordatorios procesados")
	return res, nil
}

func (uc *ReminderUseCase) send(
	ctx context.Context,
	kind string,
	day time.Time,
	invoices []*entity.Invoice,
	notify func(context.Context, *entity.Invoice),
) int {
	sent := 0
	for _, inv := range invoices {
		if inv.Status != entity.InvoiceStatusPending || inv.Client == nil || inv.Client.Email == "" {
			continue
		}
		if uc.ledger != nil {
			ok, err := uc.ledger.Claim(ctx, kind, inv.ID, day)
			if err != nil {
				uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Str("kind", kind).Msg("ledger no disponible, se envía igual")
			} else if !ok {
				continue
			}
		}
		notify(ctx, inv)
		uc.metrics.ReminderSent(kind)
		sent++
	}
	return sent
}
