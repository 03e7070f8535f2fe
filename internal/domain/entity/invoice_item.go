package entity

import "github.com/shopspring/decimal"

// InvoiceItem línea de una factura. Inmutable después de crearse con su factura.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Position    int
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal // Quantity × UnitPrice
}
