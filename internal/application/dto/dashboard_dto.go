package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	TotalInvoices int                 `json:"total_invoices"`
	TotalClients  int                 `json:"total_clients,omitempty"` // solo staff
	TotalBilled   decimal.Decimal     `json:"total_billed"`
	PaidAmount    decimal.Decimal     `json:"paid_amount"`
	PendingAmount decimal.Decimal     `json:"pending_amount"` // DRAFT + PENDING + FAILED
	ByStatus      []StatusSummaryDTO  `json:"by_status"`
	Monthly       []MonthlySummaryDTO `json:"monthly"`
}

// StatusSummaryDTO conteo e importe por estado.
type StatusSummaryDTO struct {
	Status string          `json:"status"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlySummaryDTO facturado y cobrado en un mes (YYYY-MM).
type MonthlySummaryDTO struct {
	Month  string          `json:"month"`
	Billed decimal.Decimal `json:"billed"`
	Paid   decimal.Decimal `json:"paid"`
}

// DashboardQuery rango opcional de emisión (YYYY-MM-DD) de GET /api/dashboard/summary.
type DashboardQuery struct {
	From string `query:"from"`
	To   string `query:"to"`
}
