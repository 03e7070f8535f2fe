// Package metrics expone contadores Prometheus del servicio.
// Todos los métodos aceptan un receptor nil para que los componentes funcionen sin métricas.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores registrados en un registry propio.
type Metrics struct {
	registry      *prometheus.Registry
	httpReqCnt    *prometheus.CounterVec
	httpDur       *prometheus.HistogramVec
	invoices      prometheus.Counter
	emails        *prometheus.CounterVec
	paymentEvents *prometheus.CounterVec
	reminders     *prometheus.CounterVec
}

// New registra los colectores bajo namespace.
func New(namespace string) *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
		}, []string{"method", "route", "status"}),
		httpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		invoices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "invoices_created_total",
		}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "emails_total",
		}, []string{"kind", "result"}),
		paymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "payment_events_total",
		}, []string{"type"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "reminders_total",
		}, []string{"kind"}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.invoices, m.emails, m.paymentEvents, m.reminders)
	return m
}

// InvoiceCreated cuenta una factura creada.
func (m *Metrics) InvoiceCreated() {
	if m == nil {
		return
	}
	m.invoices.Inc()
}

// EmailResult cuenta un envío de email; result es "sent", "failed" o "queued".
func (m *Metrics) EmailResult(kind, result string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(kind, result).Inc()
}

// PaymentEvent cuenta un evento de webhook recibido.
func (m *Metrics) PaymentEvent(eventType string) {
	if m == nil {
		return
	}
	m.paymentEvents.WithLabelValues(eventType).Inc()
}

// ReminderSent cuenta un recordatorio ("due_soon" u "overdue").
func (m *Metrics) ReminderSent(kind string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(kind).Inc()
}

// Middleware mide cada request con la ruta registrada (no el path con IDs).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		route := c.Route().Path
		m.httpReqCnt.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDur.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry acceso directo (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
