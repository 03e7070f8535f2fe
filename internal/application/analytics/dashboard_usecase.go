// Package analytics contiene el resumen de facturación del dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// dashboardMonths meses incluidos en la serie mensual (el actual y los 5 anteriores).
const dashboardMonths = 6

const dateLayout = "2006-01-02"

// DashboardUseCase genera el resumen de facturación.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	clientRepo    repository.ClientRepository
	loc           *time.Location
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. loc define los límites de mes (nil = UTC).
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, clientRepo repository.ClientRepository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{analyticsRepo: analyticsRepo, clientRepo: clientRepo, loc: loc, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO. Un actor client solo ve cifras de su propio cliente.
//
// Tres consultas en paralelo:
//  1. StatusTotals(rango)     → conteos e importes por estado
//  2. MonthlyTotals(6 meses)  → serie mensual
//  3. CountClients            → solo staff
func (uc *DashboardUseCase) GetSummary(ctx context.Context, actor rbac.Actor, q dto.DashboardQuery) (*dto.DashboardSummaryDTO, error) {
	filter, err := uc.filter(q)
	if err != nil {
		return nil, err
	}
	if actor.IsClient() {
		client, err := uc.clientRepo.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if client == nil || client.IsDeleted() {
			return nil, domain.ErrForbidden
		}
		filter.ClientID = client.ID
	}

	now := uc.now().In(uc.loc)
	since := time.Date(now.Year(), now.Month()-(dashboardMonths-1), 1, 0, 0, 0, 0, uc.loc)

	type statusResult struct {
		rows []repository.StatusTotal
		err  error
	}
	type monthlyResult struct {
		rows []repository.MonthlyTotal
		err  error
	}
	type countResult struct {
		n   int
		err error
	}

	statusCh := make(chan statusResult, 1)
	monthlyCh := make(chan monthlyResult, 1)
	clientsCh := make(chan countResult, 1)

	go func() {
		rows, err := uc.analyticsRepo.StatusTotals(ctx, filter)
		statusCh <- statusResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.MonthlyTotals(ctx, filter.ClientID, since)
		monthlyCh <- monthlyResult{rows, err}
	}()
	go func() {
		if actor.IsClient() {
			clientsCh <- countResult{}
			return
		}
		n, err := uc.analyticsRepo.CountClients(ctx)
		clientsCh <- countResult{n, err}
	}()

	status := <-statusCh
	monthly := <-monthlyCh
	clients := <-clientsCh

	if status.err != nil {
		return nil, fmt.Errorf("dashboard: totales por estado: %w", status.err)
	}
	if monthly.err != nil {
		return nil, fmt.Errorf("dashboard: serie mensual: %w", monthly.err)
	}
	if clients.err != nil {
		return nil, fmt.Errorf("dashboard: clientes: %w", clients.err)
	}

	out := &dto.DashboardSummaryDTO{
		TotalClients:  clients.n,
		TotalBilled:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
		ByStatus:      make([]dto.StatusSummaryDTO, 0, len(entity.InvoiceStatuses)),
	}
	byStatus := make(map[entity.InvoiceStatus]repository.StatusTotal, len(status.rows))
	for _, st := range status.rows {
		byStatus[st.Status] = st
	}
	for _, s := range entity.InvoiceStatuses {
		st, ok := byStatus[s]
		if !ok {
			st = repository.StatusTotal{Status: s, Amount: decimal.Zero}
		}
		out.ByStatus = append(out.ByStatus, dto.StatusSummaryDTO{Status: string(s), Count: st.Count, Amount: st.Amount.Round(2)})
		out.TotalInvoices += st.Count
		if s == entity.InvoiceStatusCancelled {
			continue
		}
		out.TotalBilled = out.TotalBilled.Add(st.Amount)
		switch s {
		case entity.InvoiceStatusPaid:
			out.PaidAmount = out.PaidAmount.Add(st.Amount)
		case entity.InvoiceStatusDraft, entity.InvoiceStatusPending, entity.InvoiceStatusFailed:
			out.PendingAmount = out.PendingAmount.Add(st.Amount)
		}
	}
	out.TotalBilled = out.TotalBilled.Round(2)
	out.PaidAmount = out.PaidAmount.Round(2)
	out.PendingAmount = out.PendingAmount.Round(2)
	out.Monthly = monthSeries(since, monthly.rows)
	return out, nil
}

func (uc *DashboardUseCase) filter(q dto.DashboardQuery) (repository.AnalyticsFilter, error) {
	var f repository.AnalyticsFilter
	for _, p := range []struct {
		raw  string
		dest **time.Time
	}{{q.From, &f.From}, {q.To, &f.To}} {
		if p.raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, p.raw, uc.loc)
		if err != nil {
			return f, fmt.Errorf("%w: fecha inválida %q, use YYYY-MM-DD", domain.ErrInvalidInput, p.raw)
		}
		*p.dest = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, fmt.Errorf("%w: el rango de fechas está invertido", domain.ErrInvalidInput)
	}
	return f, nil
}

// monthSeries completa con ceros los meses sin facturas.
func monthSeries(since time.Time, rows []repository.MonthlyTotal) []dto.MonthlySummaryDTO {
	byMonth := make(map[string]repository.MonthlyTotal, len(rows))
	for _, r := range rows {
		byMonth[r.Month.Format("2006-01")] = r
	}
	out := make([]dto.MonthlySummaryDTO, 0, dashboardMonths)
	for i := 0; i < dashboardMonths; i++ {
		key := since.AddDate(0, i, 0).Format("2006-01")
		m := dto.MonthlySummaryDTO{Month: key, Billed: decimal.Zero, Paid: decimal.Zero}
		if r, ok := byMonth[key]; ok {
			m.Billed = r.Billed.Round(2)
			m.Paid = r.Paid.Round(2)
		}
		out = append(out, m)
	}
	return out
}
