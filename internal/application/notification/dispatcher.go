package notification

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/jhoicas/Billing-api/pkg/metrics"
)

const sendTimeout = 30 * time.Second

// Dispatcher renderiza y envía emails sin bloquear al caller.
// Con cola configurada el envío lo hace el worker; si no, una goroutine por mensaje.
type Dispatcher struct {
	renderer *Renderer
	mailer   Mailer
	queue    Enqueuer
	appURL   string
	log      *logger.Logger
	metrics  *metrics.Metrics
	wg       sync.WaitGroup
}

// NewDispatcher construye el despachador. metrics puede ser nil.
func NewDispatcher(renderer *Renderer, mailer Mailer, appURL string, log *logger.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		renderer: renderer,
		mailer:   mailer,
		appURL:   appURL,
		log:      log.Named("notification"),
		metrics:  m,
	}
}

// WithQueue delega los envíos en una cola.
func (d *Dispatcher) WithQueue(q Enqueuer) *Dispatcher {
	d.queue = q
	return d
}

// Wait espera los envíos en curso (apagado ordenado y tests).
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Invite email para fijar la contraseña de una cuenta creada por un administrador.
func (d *Dispatcher) Invite(ctx context.Context, to, name, token string, validFor time.Duration) {
	d.dispatch(ctx, KindInvite, to, TemplateData{
		Name:     name,
		Link:     d.link("/reset-password", url.Values{"token": {token}, "invite": {"1"}}),
		ValidFor: humanDuration(validFor),
	})
}

// PasswordReset email con el enlace de restablecimiento.
func (d *Dispatcher) PasswordReset(ctx context.Context, to, name, token string, validFor time.Duration) {
	d.dispatch(ctx, KindPasswordReset, to, TemplateData{
		Name:     name,
		Link:     d.link("/reset-password", url.Values{"token": {token}}),
		ValidFor: humanDuration(validFor),
	})
}

// InvoiceCreated aviso de factura nueva al email del cliente.
func (d *Dispatcher) InvoiceCreated(ctx context.Context, inv *entity.Invoice) {
	d.invoiceEmail(ctx, KindInvoiceCreated, inv)
}

// DueSoon recordatorio de vencimiento próximo.
func (d *Dispatcher) DueSoon(ctx context.Context, inv *entity.Invoice) {
	d.invoiceEmail(ctx, KindDueSoon, inv)
}

// Overdue aviso de factura vencida.
func (d *Dispatcher) Overdue(ctx context.Context, inv *entity.Invoice) {
	d.invoiceEmail(ctx, KindOverdue, inv)
}

// PaymentReceipt recibo tras un pago confirmado.
func (d *Dispatcher) PaymentReceipt(ctx context.Context, inv *entity.Invoice) {
	d.invoiceEmail(ctx, KindReceipt, inv)
}

func (d *Dispatcher) invoiceEmail(ctx context.Context, kind Kind, inv *entity.Invoice) {
	if inv == nil || inv.Client == nil || inv.Client.Email == "" {
		return
	}
	d.dispatch(ctx, kind, inv.Client.Email, TemplateData{
		Link:    d.link("/invoices/"+inv.ID, nil),
		Invoice: NewInvoiceView(inv),
	})
}

func (d *Dispatcher) link(path string, q url.Values) string {
	u := d.appURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (d *Dispatcher) dispatch(ctx context.Context, kind Kind, to string, data TemplateData) {
	subject, html, err := d.renderer.Render(kind, data)
	if err != nil {
		d.log.Error().Err(err).Str("kind", string(kind)).Str("to", to).Msg("no se pudo renderizar el email")
		d.metrics.EmailResult(string(kind), "failed")
		return
	}
	msg := Message{Kind: kind, To: to, Subject: subject, HTML: html}

	// El envío no depende de la vida del request que lo originó.
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if d.queue != nil {
			err := d.queue.EnqueueEmail(sendCtx, msg)
			if err == nil {
				d.metrics.EmailResult(string(kind), "queued")
				return
			}
			d.log.Warn().Err(err).Str("kind", string(kind)).Msg("cola no disponible, envío directo")
		}
		if err := d.mailer.Send(sendCtx, msg); err != nil {
			d.log.Error().Err(err).Str("kind", string(kind)).Str("to", to).Msg("fallo al enviar email")
			d.metrics.EmailResult(string(kind), "failed")
			return
		}
		d.metrics.EmailResult(string(kind), "sent")
		d.log.Debug().Str("kind", string(kind)).Str("to", to).Msg("email enviado")
	}()
}
