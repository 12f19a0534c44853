package repository

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// ProposalRepository define el puerto de persistencia para propuestas de proveedores.
// Los listados devuelven las propuestas con sus ítems, ordenadas por fecha de recepción.
type ProposalRepository interface {
	Create(ctx context.Context, p *entity.Proposal) error
	GetByID(ctx context.Context, id string) (*entity.Proposal, error)
	GetByRequestAndSupplier(ctx context.Context, requestID, supplierID string) (*entity.Proposal, error)
	ListByRequest(ctx context.Context, requestID string) ([]*entity.Proposal, error)
	// Update reemplaza cabecera e ítems.
	Update(ctx context.Context, p *entity.Proposal) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
