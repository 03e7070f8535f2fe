package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/testutil"
)

type paymentFixture struct {
	repos    *testutil.Repos
	gateway  *testutil.Gateway
	notifier *testutil.Notifier
	invoices *billing.InvoiceUseCase
	uc       *billing.PaymentUseCase
	client   *entity.Client
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	_, repos := testutil.NewRepos()
	f := &paymentFixture{
		repos:    repos,
		gateway:  &testutil.Gateway{},
		notifier: &testutil.Notifier{},
	}
	f.invoices = billing.NewInvoiceUseCase(repos.Tx, repos.Invoices, repos.Clients, &testutil.Notifier{}, nil, nopLogger())
	f.uc = billing.NewPaymentUseCase(f.gateway, repos.Invoices, repos.Clients, f.notifier, billing.PaymentConfig{
		PublishableKey: "pk_test_123",
		DefaultPriceID: "price_basic",
		AppURL:         "https://app.example.com",
	}, nil, nopLogger())
	f.client = testutil.NewClient(context.Background(), repos, "CL-2025-001", "acme@example.com")
	return f
}

func (f *paymentFixture) invoice(t *testing.T) *dto.InvoiceResponse {
	t.Helper()
	req := sampleRequest(f.client.ID)
	req.Status = "PENDING"
	inv, err := f.invoices.Create(context.Background(), req)
	require.NoError(t, err)
	return inv
}

func TestInitiatePayment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	inv := f.invoice(t)

	out, err := f.uc.InitiatePayment(ctx, staff, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), out.Amount)
	assert.Equal(t, "USD", out.Currency)
	assert.Equal(t, "pk_test_123", out.PublishableKey)
	assert.Equal(t, "pi_1_secret", out.ClientSecret)

	require.Len(t, f.gateway.Intents, 1)
	assert.Equal(t, inv.ID, f.gateway.Intents[0].InvoiceID)
	assert.Equal(t, f.client.ID, f.gateway.Intents[0].ClientID)

	stored, err := f.repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
}

func TestInitiatePayment_Errores(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	inv := f.invoice(t)

	_, err := f.uc.InitiatePayment(ctx, staff, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.gateway.Err = assert.AnError
	_, err = f.uc.InitiatePayment(ctx, staff, inv.ID)
	assert.ErrorIs(t, err, domain.ErrExternalService)

	f.gateway.Err = nil
	require.NoError(t, f.repos.Invoices.UpdateStatus(ctx, inv.ID, entity.InvoiceStatusPaid, nil))
	_, err = f.uc.InitiatePayment(ctx, staff, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)
	assert.Empty(t, f.gateway.Intents)
}

func TestWebhook_PagoExitosoMarcaPagadaYEnviaRecibo(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	inv := f.invoice(t)
	f.gateway.Event = &billing.PaymentEvent{ID: "evt_1", Type: billing.EventPaymentSucceeded, InvoiceID: inv.ID}

	require.NoError(t, f.uc.HandleWebhook(ctx, []byte(`{}`), "valid"))

	stored, err := f.repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, []string{"receipt"}, f.notifier.Kinds())

	// reenvío del mismo evento: mismo estado final
	require.NoError(t, f.uc.HandleWebhook(ctx, []byte(`{}`), "valid"))
	stored, err = f.repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, stored.Status)
}

func TestWebhook_PagoFallido(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	inv := f.invoice(t)
	f.gateway.Event = &billing.PaymentEvent{ID: "evt_2", Type: billing.EventPaymentFailed, InvoiceID: inv.ID}

	require.NoError(t, f.uc.HandleWebhook(ctx, nil, "valid"))
	stored, err := f.repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusFailed, stored.Status)
	assert.Nil(t, stored.PaidAt)
	assert.Empty(t, f.notifier.Sent)
}

func TestWebhook_EventosIgnorados(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	inv := f.invoice(t)

	for _, ev := range []*billing.PaymentEvent{
		{ID: "evt_3", Type: "customer.created", InvoiceID: inv.ID},
		{ID: "evt_4", Type: billing.EventPaymentSucceeded},
		{ID: "evt_5", Type: billing.EventPaymentSucceeded, InvoiceID: "desconocida"},
	} {
		f.gateway.Event = ev
		assert.NoError(t, f.uc.HandleWebhook(ctx, nil, "valid"))
	}
	stored, err := f.repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPending, stored.Status)
	assert.Empty(t, f.notifier.Sent)
}

func TestWebhook_FirmaInvalida(t *testing.T) {
	f := newPaymentFixture(t)
	err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "forged")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPortal(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	_, err := f.uc.Portal(ctx, staff, dto.PortalRequest{ClientID: f.client.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.client.PaymentCustomerID = "cus_123"
	require.NoError(t, f.repos.Clients.Update(ctx, f.client))
	out, err := f.uc.Portal(ctx, staff, dto.PortalRequest{ClientID: f.client.ID})
	require.NoError(t, err)
	assert.Contains(t, out.URL, "https://app.example.com/billing")
	assert.Equal(t, []string{"cus_123"}, f.gateway.Portals)

	_, err = f.uc.Portal(ctx, staff, dto.PortalRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckout_UsuarioDelPortal(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	uid := "portal-user"
	f.client.UserID = &uid
	require.NoError(t, f.repos.Clients.Update(ctx, f.client))

	portal := rbac.Actor{UserID: uid, Role: rbac.RoleClient}
	out, err := f.uc.Checkout(ctx, portal, dto.CheckoutRequest{ClientID: "ignorado"})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", out.SessionID)
	require.Len(t, f.gateway.Checks, 1)
	assert.Equal(t, "price_basic", f.gateway.Checks[0].PriceID)
	assert.Equal(t, f.client.ID, f.gateway.Checks[0].ClientID)
	assert.Equal(t, "acme@example.com", f.gateway.Checks[0].CustomerEmail)
}
