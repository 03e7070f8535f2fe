package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// ClientFilter criterios de listado de clientes. Nunca incluye eliminados.
type ClientFilter struct {
	Search string // nombre, email, empresa o código
	Status string
	Limit  int
	Offset int
}

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	// GetByID incluye clientes eliminados lógicamente; el caller decide.
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Client, error)
	GetByPaymentCustomerID(ctx context.Context, customerID string) (*entity.Client, error)
	List(ctx context.Context, f ClientFilter) ([]*entity.Client, int, error)
	Update(ctx context.Context, client *entity.Client) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}
