package billing

import (
	"context"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con secuencias, clientes y facturas.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		seqRepo repository.SequenceRepository,
		clientRepo repository.ClientRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// Notifier envía los emails del ciclo de vida de la factura.
// Es fire-and-forget: nunca devuelve error ni bloquea al caller.
type Notifier interface {
	InvoiceCreated(ctx context.Context, inv *entity.Invoice)
	DueSoon(ctx context.Context, inv *entity.Invoice)
	Overdue(ctx context.Context, inv *entity.Invoice)
	PaymentReceipt(ctx context.Context, inv *entity.Invoice)
}

// Tipos de evento del procesador de pagos que modifican facturas.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// PaymentIntentParams datos para crear una intención de pago.
type PaymentIntentParams struct {
	Amount        int64 // unidad mínima de la moneda
	Currency      string
	InvoiceID     string
	InvoiceNumber string
	ClientID      string
	CustomerID    string
	ReceiptEmail  string
}

// PaymentIntent intención de pago creada en el procesador.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// CheckoutParams datos para una sesión de checkout de suscripción.
type CheckoutParams struct {
	PriceID       string
	CustomerID    string
	CustomerEmail string
	ClientID      string
	SuccessURL    string
	CancelURL     string
}

// RedirectSession sesión alojada por el procesador (portal o checkout).
type RedirectSession struct {
	ID  string
	URL string
}

// PaymentEvent evento de webhook ya verificado. InvoiceID sale de metadata.invoiceId.
type PaymentEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	InvoiceID       string
}

// PaymentGateway puerto hacia el procesador de pagos.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntent, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*RedirectSession, error)
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*RedirectSession, error)
	// ParseWebhookEvent verifica la firma y decodifica el evento.
	ParseWebhookEvent(payload []byte, signature string) (*PaymentEvent, error)
}

// InvoicePDFGenerator genera la representación PDF de una factura con ítems y cliente cargados.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, issuer string, inv *entity.Invoice) ([]byte, error)
}

// ReminderLedger registra recordatorios enviados para no repetirlos el mismo día.
// Claim devuelve false si ya se había registrado.
type ReminderLedger interface {
	Claim(ctx context.Context, kind, invoiceID string, day time.Time) (bool, error)
}
