// Package pdf genera la representación PDF de una factura.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor              │  N° Factura + Fechas         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + código + contacto + dirección            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Descripción | Cant | P.Unit | Importe            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuestos / TOTAL                       │
//	│  ESTADO: Pagada el ... / Pendiente de pago                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 33, Green: 37, Blue: 41}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
	colorPaid    = &props.Color{Red: 25, Green: 135, Blue: 84}
	colorDue     = &props.Color{Red: 200, Green: 90, Blue: 20}
)

const dateLayout = "02/01/2006"

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes. inv debe traer ítems y cliente.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, issuer string, inv *entity.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("pdf: factura nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+inv.InvoiceNumber, true).
		WithAuthor(issuer, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(issuer, inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(inv.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(inv)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))
	m.AddRows(statusRow(inv))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(issuer string, inv *entity.Invoice) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(issuer, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorGray, Top: 1}),
			text.New(inv.InvoiceNumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
			text.New("Emitida: "+inv.IssuedDate.Format(dateLayout), props.Text{Size: 8, Align: align.Right, Top: 12, Color: colorGray}),
			text.New("Vence: "+inv.DueDate.Format(dateLayout), props.Text{Size: 8, Align: align.Right, Top: 16, Color: colorGray}),
		),
	)
}

func clientRow(c *entity.Client) core.Row {
	if c == nil {
		return row.New(8).Add(col.New(12).Add(text.New("Cliente no disponible", props.Text{Size: 8, Color: colorGray})))
	}
	contact := strings.Join(nonEmpty(c.Email, c.Phone, c.TaxID), "   |   ")
	place := strings.Join(nonEmpty(c.BillingAddress, c.City, c.State, c.Country, c.Zipcode), ", ")
	name := c.Name
	if c.CompanyName != "" {
		name += " · " + c.CompanyName
	}
	return row.New(22).Add(
		col.New(12).Add(
			text.New("FACTURAR A", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(c.ClientCode+"   "+contact, props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New(place, props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 2}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Cant.", 1, align.Center),
		h("Precio unit.", 2, align.Right),
		h("Importe", 2, align.Right),
	)
}

func itemRows(inv *entity.Invoice) []core.Row {
	rows := make([]core.Row, 0, len(inv.Items))
	for _, it := range inv.Items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.Position+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.Description, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(money(it.UnitPrice, inv.Currency), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(money(it.Amount, inv.Currency), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Top: top})
	}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 2),
			label("Impuestos:", 7),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 13, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(money(inv.AmountSubtotal, inv.Currency), 2),
			value(money(inv.AmountTax, inv.Currency), 7),
			text.New(money(inv.AmountTotal, inv.Currency), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 13, Color: colorPrimary}),
		),
	)
}

func statusRow(inv *entity.Invoice) core.Row {
	msg, color := "Pendiente de pago", colorDue
	switch {
	case inv.IsPaid() && inv.PaidAt != nil:
		msg, color = "Pagada el "+inv.PaidAt.Format(dateLayout), colorPaid
	case inv.IsPaid():
		msg, color = "Pagada", colorPaid
	case inv.Status == entity.InvoiceStatusCancelled:
		msg, color = "Anulada", colorGray
	case inv.Status == entity.InvoiceStatusDraft:
		msg, color = "Borrador", colorGray
	}
	return row.New(12).Add(col.New(12).Add(
		text.New(msg, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center, Color: color, Top: 3}),
	))
}

// money formatea con el código de la moneda y su cantidad estándar de decimales.
func money(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return amount.StringFixed(2) + " " + code
	}
	scale, _ := currency.Standard.Rounding(unit)
	return amount.StringFixed(int32(scale)) + " " + unit.String()
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
