package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard de facturación.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// StatusTotals cantidad e importe total por estado.
func (r *AnalyticsRepo) StatusTotals(ctx context.Context, f repository.AnalyticsFilter) ([]repository.StatusTotal, error) {
	const query = `
	SELECT i.status, COUNT(*), COALESCE(SUM(i.amount_total), 0)
	FROM invoices i
	WHERE ($1::text = '' OR i.client_id::text = $1::text)
	  AND ($2::date IS NULL OR i.issued_date >= $2::date)
	  AND ($3::date IS NULL OR i.issued_date <= $3::date)
	GROUP BY i.status`
	rows, err := r.q.Query(ctx, query, f.ClientID, dateParam(f.From), dateParam(f.To))
	if err != nil {
		return nil, fmt.Errorf("analytics.StatusTotals: %w", err)
	}
	defer rows.Close()

	var out []repository.StatusTotal
	for rows.Next() {
		var (
			st     repository.StatusTotal
			status string
		)
		if err := rows.Scan(&status, &st.Count, &st.Amount); err != nil {
			return nil, fmt.Errorf("analytics.StatusTotals scan: %w", err)
		}
		st.Status = entity.InvoiceStatus(status)
		out = append(out, st)
	}
	return out, rows.Err()
}

// MonthlyTotals facturado y cobrado por mes de emisión desde since.
func (r *AnalyticsRepo) MonthlyTotals(ctx context.Context, clientID string, since time.Time) ([]repository.MonthlyTotal, error) {
	const query = `
	SELECT date_trunc('month', i.issued_date)::date AS month,
	       COALESCE(SUM(i.amount_total), 0),
	       COALESCE(SUM(i.amount_total) FILTER (WHERE i.status = 'PAID'), 0)
	FROM invoices i
	WHERE i.issued_date >= $2::date
	  AND ($1::text = '' OR i.client_id::text = $1::text)
	GROUP BY 1
	ORDER BY 1`
	rows, err := r.q.Query(ctx, query, clientID, since.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("analytics.MonthlyTotals: %w", err)
	}
	defer rows.Close()

	var out []repository.MonthlyTotal
	for rows.Next() {
		var mt repository.MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.Billed, &mt.Paid); err != nil {
			return nil, fmt.Errorf("analytics.MonthlyTotals scan: %w", err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// CountClients clientes no eliminados.
func (r *AnalyticsRepo) CountClients(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.CountClients: %w", err)
	}
	return n, nil
}
