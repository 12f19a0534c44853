package repository

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
}
