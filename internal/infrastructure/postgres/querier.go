package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es la interfaz común de *pgxpool.Pool y pgx.Tx.
// Los repositorios la reciben para poder ejecutarse dentro o fuera de una transacción;
// Begin sobre una pgx.Tx abre un savepoint.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner lo cumplen pgx.Row y pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}
