package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientRequest body para POST/PUT /api/clients.
type ClientRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	PhoneCountryCode  string `json:"phone_country_code,omitempty"`
	CompanyName       string `json:"company_name,omitempty"`
	CompanyCode       string `json:"company_code,omitempty"`
	Country           string `json:"country,omitempty"`
	State             string `json:"state,omitempty"`
	City              string `json:"city,omitempty"`
	Zipcode           string `json:"zipcode,omitempty"`
	BillingAddress    string `json:"billing_address"`
	TaxID             string `json:"tax_id,omitempty"`
	Currency          string `json:"currency,omitempty"`
	Status            string `json:"status,omitempty"`
	Notes             string `json:"notes,omitempty"`
	UserID            string `json:"user_id,omitempty"`
	PaymentCustomerID string `json:"payment_customer_id,omitempty"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID                string    `json:"id"`
	ClientCode        string    `json:"client_code"`
	Name              string    `json:"name"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	PhoneCountryCode  string    `json:"phone_country_code,omitempty"`
	CompanyName       string    `json:"company_name,omitempty"`
	CompanyCode       string    `json:"company_code,omitempty"`
	Country           string    `json:"country,omitempty"`
	State             string    `json:"state,omitempty"`
	City              string    `json:"city,omitempty"`
	Zipcode           string    `json:"zipcode,omitempty"`
	BillingAddress    string    `json:"billing_address"`
	TaxID             string    `json:"tax_id,omitempty"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	UserID            string    `json:"user_id,omitempty"`
	PaymentCustomerID string    `json:"payment_customer_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ClientListResponse listado paginado de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// CreateInvoiceRequest body para POST /api/invoices. Fechas en formato YYYY-MM-DD.
type CreateInvoiceRequest struct {
	ClientID   string               `json:"client_id"`
	IssuedDate string               `json:"issued_date"`
	DueDate    string               `json:"due_date"`
	Currency   string               `json:"currency,omitempty"`
	Status     string               `json:"status,omitempty"` // por defecto DRAFT
	Items      []InvoiceItemRequest `json:"items"`
}

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// UpdateInvoiceStatusRequest body para PATCH /api/invoices/:id/status.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

// InvoiceResponse factura con ítems.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	ClientID        string                `json:"client_id"`
	ClientName      string                `json:"client_name,omitempty"`
	ClientCode      string                `json:"client_code,omitempty"`
	IssuedDate      string                `json:"issued_date"`
	DueDate         string                `json:"due_date"`
	Currency        string                `json:"currency"`
	Status          string                `json:"status"`
	AmountSubtotal  decimal.Decimal       `json:"amount_subtotal"`
	AmountTax       decimal.Decimal       `json:"amount_tax"`
	AmountTotal     decimal.Decimal       `json:"amount_total"`
	PaymentIntentID string                `json:"payment_intent_id,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	Items           []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// InvoiceItemResponse línea en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceListResponse listado paginado de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PaymentIntentResponse datos para confirmar el pago en el cliente.
type PaymentIntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	PublishableKey  string `json:"publishable_key"`
	Amount          int64  `json:"amount"` // unidad mínima de la moneda
	Currency        string `json:"currency"`
}

// PortalRequest body para POST /api/billing/portal. ClientID lo ignoran los usuarios del portal.
type PortalRequest struct {
	ClientID  string `json:"client_id,omitempty"`
	ReturnURL string `json:"return_url,omitempty"`
}

// CheckoutRequest body para POST /api/billing/checkout.
type CheckoutRequest struct {
	ClientID string `json:"client_id,omitempty"`
	PriceID  string `json:"price_id,omitempty"`
}

// RedirectResponse URL alojada por el procesador de pagos.
type RedirectResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id,omitempty"`
}

// ReminderRunResponse resultado de GET /api/cron/invoices.
type ReminderRunResponse struct {
	Success       bool `json:"success"`
	RemindersSent int  `json:"reminders_sent"`
	OverdueSent   int  `json:"overdue_sent"`
}

// ClientListQuery filtros de GET /api/clients.
type ClientListQuery struct {
	PageRequest
	Search string `query:"search"`
	Status string `query:"status"`
}

// InvoiceListQuery filtros de GET /api/invoices. Fechas en formato YYYY-MM-DD.
type InvoiceListQuery struct {
	PageRequest
	ClientID string `query:"client_id"`
	Status   string `query:"status"`
	From     string `query:"from"`
	To       string `query:"to"`
}
