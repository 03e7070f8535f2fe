package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// StatusTotal cantidad e importe de facturas en un estado.
type StatusTotal struct {
	Status entity.InvoiceStatus
	Count  int
	Amount decimal.Decimal
}

// MonthlyTotal importe facturado y cobrado en un mes (Month = día 1 a las 00:00).
type MonthlyTotal struct {
	Month  time.Time
	Billed decimal.Decimal
	Paid   decimal.Decimal
}

// AnalyticsFilter rango de emisión opcional y cliente opcional.
type AnalyticsFilter struct {
	ClientID string
	From     *time.Time
	To       *time.Time
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
type AnalyticsRepository interface {
	StatusTotals(ctx context.Context, f AnalyticsFilter) ([]StatusTotal, error)
	MonthlyTotals(ctx context.Context, clientID string, since time.Time) ([]MonthlyTotal, error)
	CountClients(ctx context.Context) (int, error)
}
