package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// QuotationRequestRepository define el puerto de persistencia para solicitudes de cotización.
// Get* devuelven la solicitud con Items y Suppliers cargados.
type QuotationRequestRepository interface {
	// NextNumber reserva el siguiente correlativo de la empresa (SC-000001...).
	NextNumber(ctx context.Context, companyID string) (string, error)
	Create(ctx context.Context, req *entity.QuotationRequest) error
	GetByID(ctx context.Context, id string) (*entity.QuotationRequest, error)
	// FindOpenByNumber busca por número una solicitud que aún acepta propuestas.
	FindOpenByNumber(ctx context.Context, companyID, number string) (*entity.QuotationRequest, error)
	// ListOpen solicitudes en SENT o IN_ANALYSIS (para asociar correos entrantes).
	ListOpen(ctx context.Context, companyID string) ([]*entity.QuotationRequest, error)
	// Update reemplaza cabecera, ítems y proveedores invitados.
	Update(ctx context.Context, req *entity.QuotationRequest) error
	// TransitionStatus mueve la solicitud de from a to solo si sigue en from;
	// devuelve domain.ErrInvalidStatus si otro proceso ya la cambió.
	TransitionStatus(ctx context.Context, id, from, to string) error
	UpdateSupplierStatus(ctx context.Context, requestID, supplierID, status string, sentAt *time.Time, lastError string) error
	AddSupplier(ctx context.Context, requestID, supplierID, status string) error
	ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.QuotationRequest, error)
	Delete(ctx context.Context, id string) error
}
