package analytics_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/internal/application/analytics"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/testutil"
)

var staff = rbac.Actor{UserID: "staff", Role: "admin", Permissions: []string{"invoice.view"}}

func addInvoice(t *testing.T, repos *testutil.Repos, client *entity.Client, status entity.InvoiceStatus, total string) {
	t.Helper()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString(total)
	require.NoError(t, repos.Invoices.Create(context.Background(), &entity.Invoice{
		ID:             uuid.New().String(),
		InvoiceNumber:  fmt.Sprintf("INV-%s", uuid.New().String()[:8]),
		ClientID:       client.ID,
		IssuedDate:     today,
		DueDate:        today.AddDate(0, 0, 30),
		Currency:       "USD",
		Status:         status,
		AmountSubtotal: amount,
		AmountTax:      decimal.Zero,
		AmountTotal:    amount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}))
}

func TestGetSummary_Staff(t *testing.T) {
	_, repos := testutil.NewRepos()
	ctx := context.Background()
	a := testutil.NewClient(ctx, repos, "CL-1", "a@example.com")
	b := testutil.NewClient(ctx, repos, "CL-2", "b@example.com")
	addInvoice(t, repos, a, entity.InvoiceStatusPaid, "100.00")
	addInvoice(t, repos, a, entity.InvoiceStatusPending, "40.00")
	addInvoice(t, repos, b, entity.InvoiceStatusDraft, "10.00")
	addInvoice(t, repos, b, entity.InvoiceStatusFailed, "5.00")
	addInvoice(t, repos, b, entity.InvoiceStatusCancelled, "99.00")

	uc := analytics.NewDashboardUseCase(repos.Analytics, repos.Clients, time.UTC)
	out, err := uc.GetSummary(ctx, staff, dto.DashboardQuery{})
	require.NoError(t, err)

	assert.Equal(t, 5, out.TotalInvoices)
	assert.Equal(t, 2, out.TotalClients)
	assert.Equal(t, "100", out.PaidAmount.String())
	assert.Equal(t, "55", out.PendingAmount.String())
	assert.Equal(t, "155", out.TotalBilled.String())
	require.Len(t, out.ByStatus, len(entity.InvoiceStatuses))
	assert.Equal(t, "DRAFT", out.ByStatus[0].Status)

	require.Len(t, out.Monthly, 6)
	last := out.Monthly[5]
	assert.Equal(t, time.Now().UTC().Format("2006-01"), last.Month)
	assert.Equal(t, "100", last.Paid.String())
	assert.True(t, out.Monthly[0].Billed.IsZero())
}

func TestGetSummary_ClienteSoloVeLoSuyo(t *testing.T) {
	_, repos := testutil.NewRepos()
	ctx := context.Background()
	a := testutil.NewClient(ctx, repos, "CL-1", "a@example.com")
	b := testutil.NewClient(ctx, repos, "CL-2", "b@example.com")
	userID := "portal-user"
	a.UserID = &userID
	require.NoError(t, repos.Clients.Update(ctx, a))
	addInvoice(t, repos, a, entity.InvoiceStatusPending, "40.00")
	addInvoice(t, repos, b, entity.InvoiceStatusPaid, "100.00")

	uc := analytics.NewDashboardUseCase(repos.Analytics, repos.Clients, nil)
	out, err := uc.GetSummary(ctx, rbac.Actor{UserID: userID, Role: rbac.RoleClient}, dto.DashboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalInvoices)
	assert.Equal(t, 0, out.TotalClients)
	assert.Equal(t, "40", out.PendingAmount.String())
	assert.True(t, out.PaidAmount.IsZero())

	_, err = uc.GetSummary(ctx, rbac.Actor{UserID: "sin-cliente", Role: rbac.RoleClient}, dto.DashboardQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetSummary_RangoInvalido(t *testing.T) {
	_, repos := testutil.NewRepos()
	uc := analytics.NewDashboardUseCase(repos.Analytics, repos.Clients, nil)

	_, err := uc.GetSummary(context.Background(), staff, dto.DashboardQuery{From: "2026-13-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.GetSummary(context.Background(), staff, dto.DashboardQuery{From: "2026-05-01", To: "2026-04-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
