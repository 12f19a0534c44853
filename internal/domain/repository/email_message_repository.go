package repository

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// EmailMessageRepository define el puerto de persistencia para correos entrantes.
type EmailMessageRepository interface {
	Create(ctx context.Context, msg *entity.EmailMessage) error
	GetByID(ctx context.Context, id string) (*entity.EmailMessage, error)
	ExistsByMessageID(ctx context.Context, companyID, messageID string) (bool, error)
	// Update persiste estado, asociaciones y resultado de la clasificación.
	Update(ctx context.Context, msg *entity.EmailMessage) error
	ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.EmailMessage, error)
}
