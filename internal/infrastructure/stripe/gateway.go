// Package stripe adapta el procesador de pagos Stripe al puerto billing.PaymentGateway.
package stripe

import (
	"context"
	"fmt"
	"strings"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/tidwall/gjson"

	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/pkg/config"
)

var _ appbilling.PaymentGateway = (*Gateway)(nil)

// Claves de metadata escritas en las intenciones de pago.
const (
	metadataInvoiceID     = "invoiceId"
	metadataClientID      = "clientId"
	metadataInvoiceNumber = "invoiceNumber"
)

// Gateway cliente de la API de Stripe.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

// NewGateway construye el cliente con la clave secreta.
func NewGateway(cfg config.StripeConfig) *Gateway {
	return &Gateway{api: client.New(cfg.SecretKey, nil), webhookSecret: cfg.WebhookSecret}
}

// CreatePaymentIntent crea la intención con métodos de pago automáticos y metadata de la factura.
func (g *Gateway) CreatePaymentIntent(ctx context.Context, p appbilling.PaymentIntentParams) (*appbilling.PaymentIntent, error) {
	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(p.Amount),
		Currency: stripego.String(strings.ToLower(p.Currency)),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
		Description: stripego.String("Factura " + p.InvoiceNumber),
	}
	if p.CustomerID != "" {
		params.Customer = stripego.String(p.CustomerID)
	}
	if p.ReceiptEmail != "" {
		params.ReceiptEmail = stripego.String(p.ReceiptEmail)
	}
	params.Context = ctx
	params.AddMetadata(metadataInvoiceID, p.InvoiceID)
	params.AddMetadata(metadataClientID, p.ClientID)
	params.AddMetadata(metadataInvoiceNumber, p.InvoiceNumber)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: crear payment intent: %w", err)
	}
	return &appbilling.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// CreatePortalSession abre el portal de facturación del customer.
func (g *Gateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*appbilling.RedirectSession, error) {
	params := &stripego.BillingPortalSessionParams{
		Customer:  stripego.String(customerID),
		ReturnURL: stripego.String(returnURL),
	}
	params.Context = ctx
	s, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: crear sesión de portal: %w", err)
	}
	return &appbilling.RedirectSession{ID: s.ID, URL: s.URL}, nil
}

// CreateCheckoutSession abre un checkout de suscripción para un precio.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, p appbilling.CheckoutParams) (*appbilling.RedirectSession, error) {
	params := &stripego.CheckoutSessionParams{
		Mode: stripego.String(string(stripego.CheckoutSessionModeSubscription)),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{Price: stripego.String(p.PriceID), Quantity: stripego.Int64(1)},
		},
		SuccessURL:        stripego.String(p.SuccessURL),
		CancelURL:         stripego.String(p.CancelURL),
		ClientReferenceID: stripego.String(p.ClientID),
	}
	switch {
	case p.CustomerID != "":
		params.Customer = stripego.String(p.CustomerID)
	case p.CustomerEmail != "":
		params.CustomerEmail = stripego.String(p.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata(metadataClientID, p.ClientID)

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: crear sesión de checkout: %w", err)
	}
	return &appbilling.RedirectSession{ID: s.ID, URL: s.URL}, nil
}

// ParseWebhookEvent verifica la cabecera Stripe-Signature y extrae los datos de la factura.
func (g *Gateway) ParseWebhookEvent(payload []byte, signature string) (*appbilling.PaymentEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: verificar webhook: %w", err)
	}
	out := &appbilling.PaymentEvent{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil {
		out.PaymentIntentID = gjson.GetBytes(ev.Data.Raw, "id").String()
		out.InvoiceID = gjson.GetBytes(ev.Data.Raw, "metadata."+metadataInvoiceID).String()
	}
	return out, nil
}
