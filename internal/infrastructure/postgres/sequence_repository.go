package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador por (tipo, año) en document_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Usar con la tx que persiste el documento.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa de forma atómica; la fila queda bloqueada hasta el fin de la transacción.
// El upsert con RETURNING garantiza valores distintos por (kind, year) aun con altas concurrentes:
// nunca se calcula a partir de un COUNT(*).
func (r *SequenceRepo) Next(ctx context.Context, kind string, year int) (int64, error) {
	const query = `
		INSERT INTO document_sequences (kind, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (kind, year) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, kind, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s/%d: %w", kind, year, err)
	}
	return n, nil
}
