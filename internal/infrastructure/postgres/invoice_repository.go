package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `
	i.id, i.invoice_number, i.client_id, i.issued_date, i.due_date, i.currency, i.status,
	i.amount_subtotal, i.amount_tax, i.amount_total, i.payment_intent_id, i.paid_at,
	i.created_at, i.updated_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func invoiceDest(inv *entity.Invoice) []any {
	return []any{
		&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.IssuedDate, &inv.DueDate, &inv.Currency, &inv.Status,
		&inv.AmountSubtotal, &inv.AmountTax, &inv.AmountTotal, &inv.PaymentIntentID, &inv.PaidAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	}
}

// Create inserta cabecera e ítems en un mismo bloque transaccional (savepoint si ya hay tx).
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoices (id, invoice_number, client_id, issued_date, due_date, currency, status,
			                      amount_subtotal, amount_tax, amount_total, payment_intent_id, paid_at,
			                      created_at, updated_at)
			VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			inv.ID, inv.InvoiceNumber, inv.ClientID, inv.IssuedDate.Format(dateLayout), inv.DueDate.Format(dateLayout),
			inv.Currency, string(inv.Status), inv.AmountSubtotal, inv.AmountTax, inv.AmountTotal,
			inv.PaymentIntentID, inv.PaidAt, inv.CreatedAt, inv.UpdatedAt,
		)
		if err != nil {
			return insertInvoiceError(err)
		}

		batch := &pgx.Batch{}
		for _, it := range inv.Items {
			batch.Queue(`
				INSERT INTO invoice_items (id, invoice_id, position, description, quantity, unit_price, amount)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				it.ID, inv.ID, it.Position, it.Description, it.Quantity, it.UnitPrice, it.Amount)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert invoice items: %w", err)
		}
		return nil
	})
}

// insertInvoiceError traduce errores del INSERT de cabecera: número repetido o cliente inexistente.
func insertInvoiceError(err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: cliente inexistente", domain.ErrInvalidInput)
	default:
		return fmt.Errorf("insert invoice: %w", err)
	}
}

// GetByID carga la factura con sus ítems y el cliente.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var (
		inv    entity.Invoice
		client entity.Client
	)
	dest := append(invoiceDest(&inv), clientDest(&client)...)
	err := r.q.QueryRow(ctx, `
		SELECT `+invoiceColumns+`, `+clientColumns+`
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1`, id).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.Client = &client

	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, position, description, quantity, unit_price, amount
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.Description, &it.Quantity, &it.UnitPrice, &it.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		inv.Items = append(inv.Items, &it)
	}
	return &inv, rows.Err()
}

// List lista facturas (sin ítems) con nombre y código del cliente.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	query := `
	SELECT ` + invoiceColumns + `, c.name, c.email, c.client_code, COUNT(*) OVER()
	FROM invoices i
	JOIN clients c ON c.id = i.client_id
	WHERE ($1::text = '' OR i.client_id::text = $1::text)
	  AND ($2::text = '' OR i.status = $2::text)
	  AND ($3::date IS NULL OR i.issued_date >= $3::date)
	  AND ($4::date IS NULL OR i.issued_date <= $4::date)
	ORDER BY i.issued_date DESC, i.invoice_number DESC
	LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query,
		f.ClientID, string(f.Status), dateParam(f.IssuedFrom), dateParam(f.IssuedTo), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.Invoice
		total int
	)
	for rows.Next() {
		var inv entity.Invoice
		client := &entity.Client{}
		dest := append(invoiceDest(&inv), &client.Name, &client.Email, &client.ClientCode, &total)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		client.ID = inv.ClientID
		inv.Client = client
		list = append(list, &inv)
	}
	return list, total, rows.Err()
}

// UpdateStatus fija el estado; paidAt nil conserva el valor actual.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, paidAt *time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET status = $2, paid_at = COALESCE($3::timestamptz, paid_at), updated_at = now()
		WHERE id = $1`, id, string(status), paidAt)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetPaymentIntent guarda la referencia externa del intento de pago.
func (r *InvoiceRepo) SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET payment_intent_id = $2, updated_at = now() WHERE id = $1`, id, paymentIntentID)
	if err != nil {
		return fmt.Errorf("set payment intent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borrado físico (ítems en cascada).
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByClient cantidad de facturas del cliente.
func (r *InvoiceRepo) CountByClient(ctx context.Context, clientID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE client_id = $1`, clientID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices by client: %w", err)
	}
	return n, nil
}

// ListPendingDueOn facturas PENDING que vencen en el día calendario de day.
func (r *InvoiceRepo) ListPendingDueOn(ctx context.Context, day time.Time) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+`, `+clientColumns+`
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.status = $1 AND i.due_date = $2::date
		ORDER BY i.invoice_number`, string(entity.InvoiceStatusPending), day.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list pending invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		var (
			inv    entity.Invoice
			client entity.Client
		)
		if err := rows.Scan(append(invoiceDest(&inv), clientDest(&client)...)...); err != nil {
			return nil, fmt.Errorf("scan pending invoice: %w", err)
		}
		inv.Client = &client
		list = append(list, &inv)
	}
	return list, rows.Err()
}
