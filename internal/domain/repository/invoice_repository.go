package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// InvoiceFilter criterios de listado de facturas.
type InvoiceFilter struct {
	ClientID   string
	Status     entity.InvoiceStatus
	IssuedFrom *time.Time
	IssuedTo   *time.Time
	Limit      int
	Offset     int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus ítems.
type InvoiceRepository interface {
	// Create inserta cabecera e ítems; usar dentro de una transacción.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByID carga ítems (ordenados por posición) y el cliente.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, int, error)
	UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, paidAt *time.Time) error
	SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error
	Delete(ctx context.Context, id string) error
	CountByClient(ctx context.Context, clientID string) (int, error)
	// ListPendingDueOn facturas PENDING cuyo vencimiento cae en el día calendario de day, con cliente cargado.
	ListPendingDueOn(ctx context.Context, day time.Time) ([]*entity.Invoice, error)
}
