package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// UserFilter criterios de listado de usuarios.
type UserFilter struct {
	Search string // coincide por nombre o email
	Status string
	Limit  int
	Offset int
}

// UserRepository define el puerto de persistencia para User (DIP).
// Las lecturas devuelven (nil, nil) cuando el usuario no existe y cargan User.Role (sin permisos).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, f UserFilter) ([]*entity.User, int, error)
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, roleID string) (int, error)
}
