package repository

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetByCompanyAndTaxID(ctx context.Context, companyID, taxID string) (*entity.Supplier, error)
	// GetByEmail busca el proveedor por el remitente de un correo (sin distinguir mayúsculas).
	GetByEmail(ctx context.Context, companyID, email string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	ListByCompany(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Supplier, error)
	// ListByIDs devuelve los proveedores de la empresa indicados, en cualquier orden.
	ListByIDs(ctx context.Context, companyID string, ids []string) ([]*entity.Supplier, error)
	Delete(ctx context.Context, id string) error
}
