package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado del ciclo de vida de una factura (enum cerrado).
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusFailed    InvoiceStatus = "FAILED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// InvoiceStatuses lista completa, en el orden en que se muestran.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusPending,
	InvoiceStatusPaid,
	InvoiceStatusFailed,
	InvoiceStatusCancelled,
}

// ParseInvoiceStatus convierte s (sin distinguir mayúsculas) en un InvoiceStatus válido.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range InvoiceStatuses {
		if v == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("estado de factura desconocido: %q", s)
}

// Invoice representa la cabecera de una factura.
type Invoice struct {
	ID              string
	InvoiceNumber   string // INV-<año>-<seq>
	ClientID        string
	IssuedDate      time.Time
	DueDate         time.Time
	Currency        string
	Status          InvoiceStatus
	AmountSubtotal  decimal.Decimal
	AmountTax       decimal.Decimal
	AmountTotal     decimal.Decimal
	PaymentIntentID string
	PaidAt          *time.Time
	Items           []*InvoiceItem
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Client se carga en lecturas que necesitan datos de contacto (emails, PDF).
	Client *Client
}

// IsPaid indica si la factura ya fue cobrada.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}
