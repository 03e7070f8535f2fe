package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/Billing-api/internal/application/analytics"
	"github.com/jhoicas/Billing-api/internal/application/auth"
	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	apprbac "github.com/jhoicas/Billing-api/internal/application/rbac"
	"github.com/jhoicas/Billing-api/internal/application/usecase"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Billing-api/internal/interfaces/http"
	"github.com/jhoicas/Billing-api/internal/testutil"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

const testPassword = "secreta123"

type apiFixture struct {
	app      *fiber.App
	repos    *testutil.Repos
	roles    map[string]*entity.Role
	gateway  *testutil.Gateway
	notifier *testutil.Notifier
}

func newAPI(t *testing.T, cronSecret string) *apiFixture {
	t.Helper()
	ctx := context.Background()
	_, repos := testutil.NewRepos()
	f := &apiFixture{
		repos:    repos,
		roles:    testutil.SeedRBAC(ctx, repos),
		gateway:  &testutil.Gateway{},
		notifier: &testutil.Notifier{},
	}
	log := logger.Nop()
	accounts := &testutil.Accounts{}
	jwtCfg := auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}

	invoices := billing.NewInvoiceUseCase(repos.Tx, repos.Invoices, repos.Clients, f.notifier, nil, log)
	payments := billing.NewPaymentUseCase(f.gateway, repos.Invoices, repos.Clients, f.notifier, billing.PaymentConfig{
		PublishableKey: "pk_test_123",
		DefaultPriceID: "price_basic",
		AppURL:         "https://app.example.com",
	}, nil, log)
	reminders := billing.NewReminderUseCase(repos.Invoices, f.notifier, time.UTC, nil, log).WithLedger(&testutil.Ledger{})

	f.app = fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(f.app, apphttp.RouterDeps{
		AuthUC:       auth.NewAuthUseCase(repos.Users, repos.Roles, repos.Tokens, accounts, jwtCfg, log),
		UserUC:       usecase.NewUserUseCase(repos.Tx, repos.Users, repos.Roles, repos.Tokens, accounts, log),
		RoleUC:       apprbac.NewRoleUseCase(repos.Roles, repos.Permissions, repos.Users),
		PermissionUC: apprbac.NewPermissionUseCase(repos.Permissions),
		ClientUC:     billing.NewClientUseCase(repos.Tx, repos.Clients, repos.Invoices),
		InvoiceUC:    invoices,
		PaymentUC:    payments,
		PDFUC:        billing.NewPDFUseCase(repos.Invoices, repos.Clients, &testutil.PDF{}, "Billing Test"),
		DashboardUC:  appanalytics.NewDashboardUseCase(repos.Analytics, repos.Clients, time.UTC),
		Reminders:    reminders,
		Log:          log,
		JWTSecret:    testJWTSecret,
		CronSecret:   cronSecret,
		ServiceName:  "billing-api-test",
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// login crea un usuario con el rol indicado y devuelve su token.
func (f *apiFixture) login(t *testing.T, roleCode, email string) (string, *entity.User) {
	t.Helper()
	u := testutil.NewUser(context.Background(), f.repos, f.roles[roleCode], email, testPassword)
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: testPassword})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token, u
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func invoiceBody(clientID string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		ClientID:   clientID,
		IssuedDate: "2025-03-01",
		DueDate:    "2025-03-31",
		Status:     "PENDING",
		Items: []dto.InvoiceItemRequest{
			{Description: "Consultoría", Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
		},
	}
}

func TestHealth(t *testing.T) {
	f := newAPI(t, "")
	resp := f.do(t, http.MethodGet, "/health", "", nil)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	f := newAPI(t, "")
	testutil.NewUser(context.Background(), f.repos, f.roles["admin"], "admin@example.com", testPassword)

	resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@example.com", Password: "otra-clave"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@example.com"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe_DevuelvePermisos(t *testing.T) {
	f := newAPI(t, "")
	token, u := f.login(t, "user", "user@example.com")

	resp := f.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.SessionResponse](t, resp)
	assert.Equal(t, u.ID, out.User.ID)
	assert.ElementsMatch(t, []string{"client.view", "invoice.view", "invoice.pay"}, out.Permissions)
	assert.ElementsMatch(t, []string{"invoice.view", "invoice.pay"}, out.PermissionGroups["invoice"])
}

func TestInvoices_FlujoAdmin(t *testing.T) {
	f := newAPI(t, "")
	token, _ := f.login(t, "admin", "admin@example.com")
	client := testutil.NewClient(context.Background(), f.repos, "CL-2025-001", "acme@example.com")

	resp := f.do(t, http.MethodPost, "/api/invoices", token, invoiceBody(client.ID))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.InvoiceResponse](t, resp)
	assert.Regexp(t, `^INV-\d{4}-0001$`, created.InvoiceNumber)
	assert.True(t, created.AmountTotal.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, []string{"invoice_created"}, f.notifier.Kinds())

	resp = f.do(t, http.MethodGet, "/api/invoices/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.InvoiceResponse](t, resp)
	assert.Equal(t, created.InvoiceNumber, got.InvoiceNumber)

	resp = f.do(t, http.MethodGet, "/api/invoices?status=PENDING", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.InvoiceListResponse](t, resp)
	assert.Equal(t, 1, list.Page.Total)

	resp = f.do(t, http.MethodGet, "/api/invoices/"+created.ID+"/pdf", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), created.InvoiceNumber)
}

func TestInvoices_ClienteInexistenteRetorna400(t *testing.T) {
	f := newAPI(t, "")
	token, _ := f.login(t, "admin", "admin@example.com")

	resp := f.do(t, http.MethodPost, "/api/invoices", token, invoiceBody(uuid.NewString()))
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Message, "inexistente")
	assert.Empty(t, f.notifier.Sent)
}

func TestInvoices_CambioDeEstadoSoloSuperAdmin(t *testing.T) {
	f := newAPI(t, "")
	admin, _ := f.login(t, "admin", "admin@example.com")
	root, _ := f.login(t, "super_admin", "root@example.com")
	client := testutil.NewClient(context.Background(), f.repos, "CL-2025-001", "acme@example.com")

	created := decode[dto.InvoiceResponse](t, f.do(t, http.MethodPost, "/api/invoices", admin, invoiceBody(client.ID)))
	path := "/api/invoices/" + created.ID + "/status"

	resp := f.do(t, http.MethodPatch, path, admin, dto.UpdateInvoiceStatusRequest{Status: "PAID"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, path, root, dto.UpdateInvoiceStatusRequest{Status: "PAID"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.InvoiceResponse](t, resp)
	assert.Equal(t, "PAID", out.Status)
	assert.NotNil(t, out.PaidAt)
}

func TestInvoices_SinPermisoRetorna403(t *testing.T) {
	f := newAPI(t, "")
	token, _ := f.login(t, "user", "user@example.com")
	client := testutil.NewClient(context.Background(), f.repos, "CL-2025-001", "acme@example.com")

	resp := f.do(t, http.MethodPost, "/api/invoices", token, invoiceBody(client.ID))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/roles", token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestInvoices_PortalClienteAislado(t *testing.T) {
	f := newAPI(t, "")
	ctx := context.Background()
	admin, _ := f.login(t, "admin", "admin@example.com")
	token, portalUser := f.login(t, "client", "portal@example.com")

	own := testutil.NewClient(ctx, f.repos, "CL-2025-001", "portal@example.com")
	own.UserID = &portalUser.ID
	require.NoError(t, f.repos.Clients.Update(ctx, own))
	other := testutil.NewClient(ctx, f.repos, "CL-2025-002", "otro@example.com")

	mine := decode[dto.InvoiceResponse](t, f.do(t, http.MethodPost, "/api/invoices", admin, invoiceBody(own.ID)))
	foreign := decode[dto.InvoiceResponse](t, f.do(t, http.MethodPost, "/api/invoices", admin, invoiceBody(other.ID)))

	resp := f.do(t, http.MethodGet, "/api/invoices", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.InvoiceListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, mine.ID, list.Items[0].ID)

	resp = f.do(t, http.MethodGet, "/api/invoices/"+foreign.ID, token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/invoices/"+mine.ID+"/payment-intent", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	intent := decode[dto.PaymentIntentResponse](t, resp)
	assert.Equal(t, int64(2500), intent.Amount)
	assert.Equal(t, "pk_test_123", intent.PublishableKey)
}

func TestPathID_Malformado(t *testing.T) {
	f := newAPI(t, "")
	token, _ := f.login(t, "admin", "admin@example.com")

	for _, path := range []string{"/api/invoices/no-es-uuid", "/api/clients/123", "/api/users/abc"} {
		resp := f.do(t, http.MethodGet, path, token, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	resp := f.do(t, http.MethodGet, "/api/invoices/"+uuid.NewString(), token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebhook_Firma(t *testing.T) {
	f := newAPI(t, "")
	ctx := context.Background()
	admin, _ := f.login(t, "admin", "admin@example.com")
	client := testutil.NewClient(ctx, f.repos, "CL-2025-001", "acme@example.com")
	inv := decode[dto.InvoiceResponse](t, f.do(t, http.MethodPost, "/api/invoices", admin, invoiceBody(client.ID)))

	send := func(signature string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader([]byte(`{"id":"evt_1"}`)))
		req.Header.Set("Stripe-Signature", signature)
		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := send("forjada")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.gateway.Event = &billing.PaymentEvent{ID: "evt_1", Type: billing.EventPaymentSucceeded, InvoiceID: inv.ID}
	resp = send("valid")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]bool](t, resp)
	assert.True(t, body["received"])

	stored, err := f.repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, stored.Status)
	assert.Contains(t, f.notifier.Kinds(), "receipt")
}

func TestCron_Secreto(t *testing.T) {
	disabled := newAPI(t, "")
	resp := disabled.do(t, http.MethodGet, "/api/cron/invoices", "cualquiera", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	f := newAPI(t, "cron-secret")
	resp = f.do(t, http.MethodGet, "/api/cron/invoices", "otro", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/cron/invoices", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ctx := context.Background()
	admin, _ := f.login(t, "admin", "admin@example.com")
	client := testutil.NewClient(ctx, f.repos, "CL-2025-001", "acme@example.com")
	body := invoiceBody(client.ID)
	body.DueDate = time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	body.IssuedDate = time.Now().UTC().Format("2006-01-02")
	resp = f.do(t, http.MethodPost, "/api/invoices", admin, body)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/cron/invoices", "cron-secret", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ReminderRunResponse](t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.RemindersSent)
	assert.Equal(t, 0, out.OverdueSent)
}
