package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	domainbilling "github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/jhoicas/Billing-api/pkg/metrics"
)

// InvoiceUseCase ciclo de vida de la factura: alta, consulta, cambio de estado y baja.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	notifier    Notifier
	metrics     *metrics.Metrics
	log         *logger.Logger
	now         func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. metrics puede ser nil.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	notifier Notifier,
	m *metrics.Metrics,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		notifier:    notifier,
		metrics:     m,
		log:         log.Named("invoices"),
		now:         time.Now,
	}
}

// Create valida, calcula totales, numera y persiste factura + ítems en una sola transacción.
// El email de factura creada se dispara después del commit; su fallo no afecta la respuesta.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id es obligatorio", domain.ErrInvalidInput)
	}
	issued, err := requiredDate("issued_date", in.IssuedDate)
	if err != nil {
		return nil, err
	}
	due, err := requiredDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	status := entity.InvoiceStatusDraft
	if in.Status != "" {
		if status, err = entity.ParseInvoiceStatus(in.Status); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}

	lines := make([]domainbilling.LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, domainbilling.LineInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	items, totals, err := domainbilling.BuildItems(lines)
	if err != nil {
		return nil, err
	}

	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.IsDeleted() {
		return nil, fmt.Errorf("%w: cliente %s inexistente o eliminado", domain.ErrInvalidInput, in.ClientID)
	}
	cur := in.Currency
	if strings.TrimSpace(cur) == "" {
		cur = client.Currency
	}
	if cur, err = domainbilling.NormalizeCurrency(cur); err != nil {
		return nil, err
	}

	now := uc.now()
	inv := &entity.Invoice{
		ID:             uuid.New().String(),
		ClientID:       client.ID,
		IssuedDate:     *issued,
		DueDate:        *due,
		Currency:       cur,
		Status:         status,
		AmountSubtotal: totals.Subtotal,
		AmountTax:      totals.Tax,
		AmountTotal:    totals.Total,
		Items:          items,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == entity.InvoiceStatusPaid {
		inv.PaidAt = &now
	}
	for _, it := range items {
		it.ID = uuid.New().String()
		it.InvoiceID = inv.ID
	}

	err = uc.txRunner.RunBilling(ctx, func(
		seqRepo repository.SequenceRepository,
		_ repository.ClientRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		seq, err := seqRepo.Next(ctx, domainbilling.SequenceInvoice, now.Year())
		if err != nil {
			return fmt.Errorf("secuencia de facturas: %w", err)
		}
		inv.InvoiceNumber = domainbilling.InvoiceNumber(now.Year(), seq)
		return invoiceRepo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	inv.Client = client

	uc.metrics.InvoiceCreated()
	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("client_id", client.ID).
		Str("total", inv.AmountTotal.StringFixed(2)).
		Msg("factura creada")
	if client.Email != "" {
		uc.notifier.InvoiceCreated(ctx, inv)
	}
	return toInvoiceResponse(inv), nil
}

// GetByID devuelve la factura con ítems. Un actor client solo ve las de su cliente.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, actor rbac.Actor, id string) (*dto.InvoiceResponse, error) {
	inv, err := visibleInvoice(ctx, uc.invoiceRepo, uc.clientRepo, actor, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// List lista facturas con filtros. Para un actor client el filtro de cliente se fuerza al suyo.
func (uc *InvoiceUseCase) List(ctx context.Context, actor rbac.Actor, q dto.InvoiceListQuery) (*dto.InvoiceListResponse, error) {
	q.DefaultPage()
	f := repository.InvoiceFilter{ClientID: q.ClientID, Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st, err := entity.ParseInvoiceStatus(q.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		f.Status = st
	}
	var err error
	if f.IssuedFrom, err = parseDate(q.From); err != nil {
		return nil, fmt.Errorf("%w: from debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
	}
	if f.IssuedTo, err = parseDate(q.To); err != nil {
		return nil, fmt.Errorf("%w: to debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
	}
	if actor.IsClient() {
		client, err := portalClient(ctx, uc.clientRepo, actor)
		if err != nil {
			return nil, err
		}
		f.ClientID = client.ID
	}

	invoices, total, err := uc.invoiceRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(invoices)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, inv := range invoices {
		out.Items = append(out.Items, *toInvoiceResponse(inv))
	}
	return out, nil
}

// UpdateStatus fuerza un estado. Solo super_admin; cualquier estado puede seguir a cualquier otro.
// Pasar a PAID fija paidAt si aún no estaba fijado.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, actor rbac.Actor, id, status string) (*dto.InvoiceResponse, error) {
	if !actor.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: solo super_admin puede cambiar el estado", domain.ErrForbidden)
	}
	st, err := entity.ParseInvoiceStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	var paidAt *time.Time
	if st == entity.InvoiceStatusPaid && inv.PaidAt == nil {
		now := uc.now()
		paidAt = &now
	}
	if err := uc.invoiceRepo.UpdateStatus(ctx, id, st, paidAt); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("invoice_id", id).
		Str("from", string(inv.Status)).
		Str("to", string(st)).
		Str("actor", actor.UserID).
		Msg("estado de factura actualizado")

	inv.Status = st
	if paidAt != nil {
		inv.PaidAt = paidAt
	}
	return toInvoiceResponse(inv), nil
}

// Delete borra la factura y sus ítems (borrado físico, sin importar el estado).
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	return uc.invoiceRepo.Delete(ctx, id)
}

func requiredDate(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: %s es obligatorio", domain.ErrInvalidInput, field)
	}
	t, err := parseDate(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return t, nil
}
