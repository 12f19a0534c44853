package ports

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// PurchasingRepos repositorios atados a una misma transacción.
type PurchasingRepos struct {
	Requests  repository.QuotationRequestRepository
	Proposals repository.ProposalRepository
	Orders    repository.PurchaseOrderRepository
	Emails    repository.EmailMessageRepository
}

// TxRunner ejecuta fn dentro de una transacción; si fn devuelve error se hace rollback.
type TxRunner interface {
	RunPurchasing(ctx context.Context, fn func(repos PurchasingRepos) error) error
}
