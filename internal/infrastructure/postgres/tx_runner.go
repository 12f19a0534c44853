package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Compras-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunPurchasing inicia una transacción, ejecuta fn con repos de compras atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunPurchasing(ctx context.Context, fn func(repos ports.PurchasingRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ports.PurchasingRepos{
		Requests:  NewQuotationRequestRepository(tx),
		Proposals: NewProposalRepository(tx),
		Orders:    NewPurchaseOrderRepository(tx),
		Emails:    NewEmailMessageRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
