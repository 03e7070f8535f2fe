package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

//go:embed templates/*.html
var templatesFS embed.FS

// InvoiceView datos de factura ya formateados para plantillas.
type InvoiceView struct {
	Number     string
	ClientName string
	IssuedDate string
	DueDate    string
	Total      string
	Currency   string
	PaidAt     string
}

// TemplateData datos comunes a todas las plantillas.
type TemplateData struct {
	AppName  string
	Name     string
	Link     string
	ValidFor string
	Invoice  InvoiceView
}

var subjects = map[Kind]string{
	KindInvite:         "Active su cuenta en %s",
	KindPasswordReset:  "Restablecer contraseña de %s",
	KindInvoiceCreated: "Nueva factura %s",
	KindDueSoon:        "Recordatorio: la factura %s vence pronto",
	KindOverdue:        "Factura vencida %s",
	KindReceipt:        "Recibo de pago de la factura %s",
}

// Renderer plantillas html/template con funciones sprig.
type Renderer struct {
	tpl     *template.Template
	appName string
}

// NewRenderer carga las plantillas embebidas.
func NewRenderer(appName string) (*Renderer, error) {
	tpl, err := template.New("emails").Funcs(sprig.FuncMap()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Renderer{tpl: tpl, appName: appName}, nil
}

// Render devuelve asunto y cuerpo HTML para kind.
func (r *Renderer) Render(kind Kind, data TemplateData) (string, string, error) {
	data.AppName = r.appName
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, string(kind)+".html", data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", kind, err)
	}
	subjectArg := data.Invoice.Number
	if kind == KindInvite || kind == KindPasswordReset {
		subjectArg = r.appName
	}
	return fmt.Sprintf(subjects[kind], subjectArg), buf.String(), nil
}

// NewInvoiceView formatea una factura para plantillas.
func NewInvoiceView(inv *entity.Invoice) InvoiceView {
	v := InvoiceView{
		Number:     inv.InvoiceNumber,
		IssuedDate: inv.IssuedDate.Format("02/01/2006"),
		DueDate:    inv.DueDate.Format("02/01/2006"),
		Total:      inv.AmountTotal.StringFixed(2),
		Currency:   inv.Currency,
	}
	if inv.Client != nil {
		v.ClientName = inv.Client.Name
	}
	if inv.PaidAt != nil {
		v.PaidAt = inv.PaidAt.Format("02/01/2006 15:04")
	}
	return v
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hora"
		}
		return fmt.Sprintf("%d horas", h)
	}
	return fmt.Sprintf("%d minutos", int(d/time.Minute))
}
