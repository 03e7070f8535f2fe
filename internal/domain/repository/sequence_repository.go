package repository

import "context"

// SequenceRepository contador atómico por tipo de documento y año.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor (el primero del año es 1).
	Next(ctx context.Context, kind string, year int) (int64, error)
}
