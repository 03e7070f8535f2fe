package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/usecase"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)
var _ usecase.AccountTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunBilling transacción con secuencias, clientes y facturas (alta de clientes y facturas).
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	seqRepo repository.SequenceRepository,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewSequenceRepository(q), NewClientRepository(q), NewInvoiceRepository(q))
	})
}

// RunAccounts transacción con usuarios, clientes y secuencias (alta de usuarios del portal).
func (r *TxRunner) RunAccounts(ctx context.Context, fn func(
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewUserRepository(q), NewClientRepository(q), NewSequenceRepository(q))
	})
}
