package billing_test

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/testutil"
)

type reminderFixture struct {
	repos    *testutil.Repos
	invoices *billing.InvoiceUseCase
	notifier *testutil.Notifier
}

func newReminderFixture() *reminderFixture {
	_, repos := testutil.NewRepos()
	return &reminderFixture{
		repos:    repos,
		invoices: billing.NewInvoiceUseCase(repos.Tx, repos.Invoices, repos.Clients, &testutil.Notifier{}, nil, nopLogger()),
		notifier: &testutil.Notifier{},
	}
}

func (f *reminderFixture) create(t *testing.T, clientID, due, status string) string {
	t.Helper()
	req := sampleRequest(clientID)
	req.IssuedDate = "2025-06-01"
	req.DueDate = due
	req.Status = status
	out, err := f.invoices.Create(context.Background(), req)
	require.NoError(t, err)
	return out.ID
}

func TestReminders_VentanasDeDias(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	client := testutil.NewClient(ctx, f.repos, "CL-2025-001", "acme@example.com")

	soon := f.create(t, client.ID, "2025-06-12", "PENDING")
	late := f.create(t, client.ID, "2025-06-09", "PENDING")
	f.create(t, client.ID, "2025-06-11", "PENDING") // vence mañana: fuera de ventana
	f.create(t, client.ID, "2025-06-08", "PENDING") // vencida hace 2 días: fuera de ventana
	f.create(t, client.ID, "2025-06-12", "DRAFT")
	f.create(t, client.ID, "2025-06-09", "PAID")

	uc := billing.NewReminderUseCase(f.repos.Invoices, f.notifier, time.UTC, nil, nopLogger())
	res, err := uc.Run(ctx, time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, billing.ReminderResult{RemindersSent: 1, OverdueSent: 1}, res)
	require.Len(t, f.notifier.Sent, 2)
	assert.Equal(t, "due_soon", f.notifier.Sent[0].Kind)
	assert.Equal(t, soon, f.notifier.Sent[0].InvoiceID)
	assert.Equal(t, "overdue", f.notifier.Sent[1].Kind)
	assert.Equal(t, late, f.notifier.Sent[1].InvoiceID)
}

func TestReminders_ZonaHoraria(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	client := testutil.NewClient(ctx, f.repos, "CL-2025-001", "acme@example.com")
	f.create(t, client.ID, "2025-06-12", "PENDING")

	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	uc := billing.NewReminderUseCase(f.repos.Invoices, f.notifier, bogota, nil, nopLogger())

	// 03:00 UTC del 11 sigue siendo el día 10 en Bogotá (UTC-5)
	res, err := uc.Run(ctx, time.Date(2025, 6, 11, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemindersSent)
}

func TestReminders_SinEmailNoCuenta(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	client := testutil.NewClient(ctx, f.repos, "CL-2025-001", "")
	f.create(t, client.ID, "2025-06-12", "PENDING")

	uc := billing.NewReminderUseCase(f.repos.Invoices, f.notifier, nil, nil, nopLogger())
	res, err := uc.Run(ctx, time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, res.RemindersSent)
	assert.Empty(t, f.notifier.Sent)
}

func TestReminders_LedgerEvitaDuplicados(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	client := testutil.NewClient(ctx, f.repos, "CL-2025-001", "acme@example.com")
	f.create(t, client.ID, "2025-06-12", "PENDING")
	f.create(t, client.ID, "2025-06-09", "PENDING")

	uc := billing.NewReminderUseCase(f.repos.Invoices, f.notifier, time.UTC, nil, nopLogger()).
		WithLedger(&testutil.Ledger{})
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	first, err := uc.Run(ctx, now)
	require.NoError(t, err)
	second, err := uc.Run(ctx, now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, billing.ReminderResult{RemindersSent: 1, OverdueSent: 1}, first)
	assert.Equal(t, billing.ReminderResult{}, second)
	assert.Len(t, f.notifier.Sent, 2)
}

func TestReminders_LedgerCaidoEnviaIgual(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	client := testutil.NewClient(ctx, f.repos, "CL-2025-001", "acme@example.com")
	f.create(t, client.ID, "2025-06-12", "PENDING")

	uc := billing.NewReminderUseCase(f.repos.Invoices, f.notifier, time.UTC, nil, nopLogger()).
		WithLedger(&testutil.Ledger{Err: assert.AnError})
	res, err := uc.Run(ctx, time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemindersSent)
}

func TestPDF_Descarga(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	client := testutil.NewClient(ctx, f.repos, "CL-2025-001", "")
	id := f.create(t, client.ID, "2025-06-12", "PENDING")

	gen := &testutil.PDF{}
	uc := billing.NewPDFUseCase(f.repos.Invoices, f.repos.Clients, gen, "Billing API")
	pdf, name, err := uc.DownloadInvoicePDF(ctx, staff, id)
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d{4}-0001\.pdf$`, name)
	assert.Contains(t, string(pdf), "%PDF")
	assert.Equal(t, "Billing API", gen.Issuer)

	_, _, err = uc.DownloadInvoicePDF(ctx, staff, "missing")
	assert.Error(t, err)
}
