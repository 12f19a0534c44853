package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// PurchaseOrderFilter filtros del listado de órdenes.
type PurchaseOrderFilter struct {
	Status     string
	RequestID  string
	SupplierID string
}

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	// NextNumber reserva el siguiente correlativo de la empresa (OC-000001...).
	NextNumber(ctx context.Context, companyID string) (string, error)
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	ListByCompany(ctx context.Context, companyID string, f PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, error)
	ListByRequest(ctx context.Context, requestID string) ([]*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id, status string, sentAt *time.Time) error
}
