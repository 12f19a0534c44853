package repository

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByCompanyAndCode(ctx context.Context, companyID, code string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Category, error)
	ListByParent(ctx context.Context, companyID, parentID string) ([]*entity.Category, error)
	Delete(ctx context.Context, id string) error
}
