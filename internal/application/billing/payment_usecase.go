package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	domainbilling "github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/jhoicas/Billing-api/pkg/metrics"
)

// PaymentConfig datos públicos del procesador y URLs de retorno.
type PaymentConfig struct {
	PublishableKey string
	DefaultPriceID string
	AppURL         string
}

// PaymentUseCase puente con el procesador de pagos: intenciones, portal, checkout y webhooks.
type PaymentUseCase struct {
	gateway     PaymentGateway
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	notifier    Notifier
	cfg         PaymentConfig
	metrics     *metrics.Metrics
	log         *logger.Logger
	now         func() time.Time
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	gateway PaymentGateway,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	notifier Notifier,
	cfg PaymentConfig,
	m *metrics.Metrics,
	log *logger.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		gateway:     gateway,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		notifier:    notifier,
		cfg:         cfg,
		metrics:     m,
		log:         log.Named("payments"),
		now:         time.Now,
	}
}

// InitiatePayment crea una intención de pago por el total de la factura y guarda su id.
func (uc *PaymentUseCase) InitiatePayment(ctx context.Context, actor rbac.Actor, invoiceID string) (*dto.PaymentIntentResponse, error) {
	inv, err := visibleInvoice(ctx, uc.invoiceRepo, uc.clientRepo, actor, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsPaid() {
		return nil, domain.ErrInvoiceAlreadyPaid
	}
	amount, err := domainbilling.MinorUnits(inv.AmountTotal, inv.Currency)
	if err != nil {
		return nil, err
	}

	params := PaymentIntentParams{
		Amount:        amount,
		Currency:      inv.Currency,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
	}
	if inv.Client != nil {
		params.CustomerID = inv.Client.PaymentCustomerID
		params.ReceiptEmail = inv.Client.Email
	}
	intent, err := uc.gateway.CreatePaymentIntent(ctx, params)
	if err != nil {
		uc.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("crear intención de pago")
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	if err := uc.invoiceRepo.SetPaymentIntent(ctx, inv.ID, intent.ID); err != nil {
		return nil, err
	}
	return &dto.PaymentIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PublishableKey:  uc.cfg.PublishableKey,
		Amount:          amount,
		Currency:        inv.Currency,
	}, nil
}

// Portal abre una sesión del portal de facturación para el cliente.
func (uc *PaymentUseCase) Portal(ctx context.Context, actor rbac.Actor, in dto.PortalRequest) (*dto.RedirectResponse, error) {
	client, err := uc.resolveClient(ctx, actor, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client.PaymentCustomerID == "" {
		return nil, fmt.Errorf("%w: el cliente no tiene cuenta en el procesador de pagos", domain.ErrInvalidInput)
	}
	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = uc.cfg.AppURL + "/billing"
	}
	sess, err := uc.gateway.CreatePortalSession(ctx, client.PaymentCustomerID, returnURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	return &dto.RedirectResponse{URL: sess.URL, SessionID: sess.ID}, nil
}

// Checkout abre una sesión de checkout de suscripción.
func (uc *PaymentUseCase) Checkout(ctx context.Context, actor rbac.Actor, in dto.CheckoutRequest) (*dto.RedirectResponse, error) {
	client, err := uc.resolveClient(ctx, actor, in.ClientID)
	if err != nil {
		return nil, err
	}
	priceID := in.PriceID
	if priceID == "" {
		priceID = uc.cfg.DefaultPriceID
	}
	if priceID == "" {
		return nil, fmt.Errorf("%w: price_id es obligatorio", domain.ErrInvalidInput)
	}
	sess, err := uc.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		PriceID:       priceID,
		CustomerID:    client.PaymentCustomerID,
		CustomerEmail: client.Email,
		ClientID:      client.ID,
		SuccessURL:    uc.cfg.AppURL + "/billing?checkout=success",
		CancelURL:     uc.cfg.AppURL + "/billing?checkout=cancelled",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	return &dto.RedirectResponse{URL: sess.URL, SessionID: sess.ID}, nil
}

// HandleWebhook verifica y aplica un evento del procesador.
// Los estados se sobrescriben sin condición, así que un reenvío del mismo evento es idempotente.
func (uc *PaymentUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := uc.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		uc.log.Warn().Err(err).Msg("webhook rechazado")
		return fmt.Errorf("%w: firma de webhook inválida", domain.ErrInvalidInput)
	}
	uc.metrics.PaymentEvent(ev.Type)

	log := uc.log.With().Str("event_id", ev.ID).Str("type", ev.Type).Str("invoice_id", ev.InvoiceID).Logger()
	if ev.Type != EventPaymentSucceeded && ev.Type != EventPaymentFailed {
		log.Debug().Msg("evento ignorado")
		return nil
	}
	if ev.InvoiceID == "" {
		log.Warn().Msg("evento sin metadata.invoiceId")
		return nil
	}

	inv, err := uc.invoiceRepo.GetByID(ctx, ev.InvoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		log.Warn().Msg("factura del evento no encontrada")
		return nil
	}

	switch ev.Type {
	case EventPaymentSucceeded:
		now := uc.now()
		if err := uc.invoiceRepo.UpdateStatus(ctx, inv.ID, entity.InvoiceStatusPaid, &now); err != nil {
			return err
		}
		inv.Status = entity.InvoiceStatusPaid
		inv.PaidAt = &now
		log.Info().Msg("factura pagada")
		if inv.Client != nil && inv.Client.Email != "" {
			uc.notifier.PaymentReceipt(ctx, inv)
		}
	case EventPaymentFailed:
		if err := uc.invoiceRepo.UpdateStatus(ctx, inv.ID, entity.InvoiceStatusFailed, nil); err != nil {
			return err
		}
		log.Info().Msg("pago de factura fallido")
	}
	return nil
}

func (uc *PaymentUseCase) resolveClient(ctx context.Context, actor rbac.Actor, clientID string) (*entity.Client, error) {
	if actor.IsClient() {
		return portalClient(ctx, uc.clientRepo, actor)
	}
	if clientID == "" {
		return nil, fmt.Errorf("%w: client_id es obligatorio", domain.ErrInvalidInput)
	}
	client, err := uc.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	return client, nil
}
