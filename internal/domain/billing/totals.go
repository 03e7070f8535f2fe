// Package billing contiene las reglas puras de facturación: importes, numeración y moneda.
package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// LineInput línea de factura tal como llega del caller.
type LineInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Totals importes de cabecera de una factura.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// BuildItems valida las líneas, calcula el importe de cada una y los totales.
// El impuesto es siempre cero (no se calculan impuestos).
func BuildItems(lines []LineInput) ([]*entity.InvoiceItem, Totals, error) {
	if len(lines) == 0 {
		return nil, Totals{}, fmt.Errorf("%w: la factura requiere al menos un ítem", domain.ErrInvalidInput)
	}
	items := make([]*entity.InvoiceItem, 0, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l.Description) == "" {
			return nil, Totals{}, fmt.Errorf("%w: ítem %d sin descripción", domain.ErrInvalidInput, i+1)
		}
		if l.Quantity < 1 {
			return nil, Totals{}, fmt.Errorf("%w: ítem %d con cantidad menor a 1", domain.ErrInvalidInput, i+1)
		}
		if l.UnitPrice.IsNegative() {
			return nil, Totals{}, fmt.Errorf("%w: ítem %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
		items = append(items, &entity.InvoiceItem{
			Position:    i,
			Description: strings.TrimSpace(l.Description),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return items, ComputeTotals(items), nil
}

// ComputeTotals suma los importes de las líneas. total = subtotal + impuesto.
func ComputeTotals(items []*entity.InvoiceItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
	}
	tax := decimal.Zero
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// NormalizeCurrency valida un código ISO 4217 y lo devuelve en mayúsculas.
// Vacío equivale a la moneda por defecto.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return entity.DefaultCurrency, nil
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: moneda %q no reconocida", domain.ErrInvalidInput, code)
	}
	return unit.String(), nil
}

// MinorUnits convierte amount a la unidad mínima de la moneda (centavos para USD, unidades para JPY).
func MinorUnits(amount decimal.Decimal, code string) (int64, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, fmt.Errorf("%w: moneda %q no reconocida", domain.ErrInvalidInput, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return amount.Shift(int32(scale)).Round(0).IntPart(), nil
}
