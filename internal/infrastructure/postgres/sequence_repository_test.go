package postgres

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/internal/domain"
)

// stubRow devuelve un valor fijo (o un error) en Scan.
type stubRow struct {
	value int64
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.value
	return nil
}

// recordingQuerier guarda la última consulta y simula document_sequences en memoria.
type recordingQuerier struct {
	sql      string
	args     []any
	counters map[string]int64
	err      error
}

func (q *recordingQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("no usado")
}

func (q *recordingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("no usado")
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	if q.err != nil {
		return stubRow{err: q.err}
	}
	if q.counters == nil {
		q.counters = map[string]int64{}
	}
	key := args[0].(string) + "/" + strconv.Itoa(args[1].(int))
	q.counters[key]++
	return stubRow{value: q.counters[key]}
}

func (q *recordingQuerier) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("no usado")
}

func TestSequenceNext_UpsertAtomico(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewSequenceRepository(q)
	ctx := context.Background()

	n, err := repo.Next(ctx, "invoice", 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Contains(t, q.sql, "INSERT INTO document_sequences")
	assert.Contains(t, q.sql, "ON CONFLICT (kind, year) DO UPDATE")
	assert.Contains(t, q.sql, "RETURNING last_value")
	assert.NotContains(t, q.sql, "COUNT(")
	assert.Equal(t, []any{"invoice", 2025}, q.args)

	n, err = repo.Next(ctx, "invoice", 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Cada (tipo, año) tiene su propio contador
	n, err = repo.Next(ctx, "client", 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.Next(ctx, "invoice", 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSequenceNext_ErrorEnvuelto(t *testing.T) {
	q := &recordingQuerier{err: errors.New("conexión cerrada")}
	_, err := NewSequenceRepository(q).Next(context.Background(), "invoice", 2025)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice/2025")
}

func TestInsertInvoiceError(t *testing.T) {
	err := insertInvoiceError(&pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, insertInvoiceError(&pgconn.PgError{Code: "23505"}), domain.ErrDuplicate)

	other := errors.New("timeout")
	assert.ErrorIs(t, insertInvoiceError(other), other)
}
