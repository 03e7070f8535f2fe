package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/pkg/metrics"
)

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.InvoiceCreated()
		m.EmailResult("receipt", "sent")
		m.PaymentEvent("payment_intent.succeeded")
		m.ReminderSent("overdue")
	})
}

func TestMiddleware_CuentaPorRuta(t *testing.T) {
	m := metrics.New("test")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/invoices/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/invoices/"+id, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	n, err := testutil.GatherAndCount(m.Registry(), "test_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "las dos peticiones comparten la serie de la ruta registrada")
}

func TestCounters(t *testing.T) {
	m := metrics.New("test")
	m.InvoiceCreated()
	m.InvoiceCreated()
	m.EmailResult("invoice_created", "failed")

	n, err := testutil.GatherAndCount(m.Registry(), "test_invoices_created_total", "test_emails_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
