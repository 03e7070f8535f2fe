package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

func TestGenerateInvoicePDF(t *testing.T) {
	paid := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		InvoiceNumber:  "INV-2025-0001",
		IssuedDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Currency:       "USD",
		Status:         entity.InvoiceStatusPaid,
		PaidAt:         &paid,
		AmountSubtotal: decimal.NewFromInt(25),
		AmountTax:      decimal.Zero,
		AmountTotal:    decimal.NewFromInt(25),
		Items: []*entity.InvoiceItem{
			{Position: 0, Description: "Consultoría", Quantity: 2, UnitPrice: decimal.NewFromInt(10), Amount: decimal.NewFromInt(20)},
			{Position: 1, Description: "Soporte", Quantity: 1, UnitPrice: decimal.NewFromInt(5), Amount: decimal.NewFromInt(5)},
		},
		Client: &entity.Client{ClientCode: "CL-2025-001", Name: "ACME", Email: "acme@example.com", BillingAddress: "Calle 1"},
	}

	out, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), "Billing API", inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_FacturaNil(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), "Billing API", nil)
	assert.Error(t, err)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "25.00 USD", money(decimal.NewFromInt(25), "USD"))
	assert.Equal(t, "1500 JPY", money(decimal.NewFromInt(1500), "JPY"))
	assert.Equal(t, "9.50 ???", money(decimal.RequireFromString("9.5"), "???"))
}

func TestNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, nonEmpty("a", " ", "c", ""))
}
