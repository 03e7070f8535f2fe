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

var _ repository.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `
	c.id, c.client_code, c.name, c.email, c.phone, c.phone_country_code, c.company_name, c.company_code,
	c.country, c.state, c.city, c.zipcode, c.billing_address, c.tax_id, c.currency, c.status, c.notes,
	c.user_id, c.payment_customer_id, c.deleted_at, c.created_at, c.updated_at`

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

func clientDest(c *entity.Client) []any {
	return []any{
		&c.ID, &c.ClientCode, &c.Name, &c.Email, &c.Phone, &c.PhoneCountryCode, &c.CompanyName, &c.CompanyCode,
		&c.Country, &c.State, &c.City, &c.Zipcode, &c.BillingAddress, &c.TaxID, &c.Currency, &c.Status, &c.Notes,
		&c.UserID, &c.PaymentCustomerID, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
	}
}

func scanClient(s scanner, extra ...any) (*entity.Client, error) {
	var c entity.Client
	if err := s.Scan(append(clientDest(&c), extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	const query = `
		INSERT INTO clients (id, client_code, name, email, phone, phone_country_code, company_name, company_code,
		                     country, state, city, zipcode, billing_address, tax_id, currency, status, notes,
		                     user_id, payment_customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.ClientCode, c.Name, c.Email, c.Phone, c.PhoneCountryCode, c.CompanyName, c.CompanyCode,
		c.Country, c.State, c.City, c.Zipcode, c.BillingAddress, c.TaxID, c.Currency, c.Status, c.Notes,
		c.UserID, c.PaymentCustomerID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *ClientRepo) getOne(ctx context.Context, where string, arg any) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients c WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// GetByID obtiene un cliente por ID (incluye eliminados).
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	return r.getOne(ctx, `c.id = $1`, id)
}

// GetByUserID cliente vinculado al usuario del portal.
func (r *ClientRepo) GetByUserID(ctx context.Context, userID string) (*entity.Client, error) {
	return r.getOne(ctx, `c.user_id = $1 AND c.deleted_at IS NULL`, userID)
}

// GetByPaymentCustomerID cliente por customer del procesador de pagos.
func (r *ClientRepo) GetByPaymentCustomerID(ctx context.Context, customerID string) (*entity.Client, error) {
	return r.getOne(ctx, `c.payment_customer_id = $1 AND c.deleted_at IS NULL`, customerID)
}

// List lista clientes no eliminados con búsqueda y paginación.
func (r *ClientRepo) List(ctx context.Context, f repository.ClientFilter) ([]*entity.Client, int, error) {
	query := `
	SELECT ` + clientColumns + `, COUNT(*) OVER()
	FROM clients c
	WHERE c.deleted_at IS NULL
	  AND ($1 = '' OR c.name ILIKE '%' || $1 || '%' OR c.email ILIKE '%' || $1 || '%'
	       OR c.company_name ILIKE '%' || $1 || '%' OR c.client_code ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR c.status = $2)
	ORDER BY c.created_at DESC
	LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.Search, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var (
		list  []*entity.Client
		total int
	)
	for rows.Next() {
		c, err := scanClient(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// Update actualiza los datos editables (el código no cambia).
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	const query = `
		UPDATE clients SET name = $2, email = $3, phone = $4, phone_country_code = $5, company_name = $6,
		       company_code = $7, country = $8, state = $9, city = $10, zipcode = $11, billing_address = $12,
		       tax_id = $13, currency = $14, status = $15, notes = $16, user_id = $17, payment_customer_id = $18,
		       updated_at = $19
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.PhoneCountryCode, c.CompanyName,
		c.CompanyCode, c.Country, c.State, c.City, c.Zipcode, c.BillingAddress,
		c.TaxID, c.Currency, c.Status, c.Notes, c.UserID, c.PaymentCustomerID,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca deleted_at y pasa el cliente a INACTIVE.
func (r *ClientRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE clients SET deleted_at = $2, status = $3, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, at, entity.ClientStatusInactive)
	if err != nil {
		return fmt.Errorf("soft delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
