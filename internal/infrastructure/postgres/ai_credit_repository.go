package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.AICreditRepository = (*AICreditRepo)(nil)

// AICreditRepo implementación del puerto AICreditRepository sobre PostgreSQL.
type AICreditRepo struct {
	q Querier
}

// NewAICreditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAICreditRepository(q Querier) *AICreditRepo {
	return &AICreditRepo{q: q}
}

// GetBalance saldo actual; sin fila → 0.
func (r *AICreditRepo) GetBalance(ctx context.Context, companyID string) (*entity.AICreditBalance, error) {
	b := &entity.AICreditBalance{CompanyID: companyID}
	err := r.q.QueryRow(ctx, `SELECT balance, updated_at FROM ai_credits WHERE company_id = $1`, companyID).
		Scan(&b.Balance, &b.UpdatedAt)
	if err != nil && !isNoRows(err) {
		return nil, fmt.Errorf("get ai balance: %w", err)
	}
	return b, nil
}

// Consume descuenta de forma atómica: el WHERE balance >= n evita saldos negativos con consumos concurrentes.
func (r *AICreditRepo) Consume(ctx context.Context, u *entity.AIUsage) (int, error) {
	var balance int
	err := inTx(ctx, r.q, func(q Querier) error {
		err := q.QueryRow(ctx, `
			UPDATE ai_credits SET balance = balance - $2, updated_at = now()
			WHERE company_id = $1 AND balance >= $2
			RETURNING balance`, u.CompanyID, u.Credits).Scan(&balance)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrInsufficientCredits
			}
			return fmt.Errorf("consume ai credits: %w", err)
		}
		return insertUsage(ctx, q, u)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Add suma créditos (recarga o devolución) creando la fila si no existe.
func (r *AICreditRepo) Add(ctx context.Context, u *entity.AIUsage) (int, error) {
	var balance int
	err := inTx(ctx, r.q, func(q Querier) error {
		err := q.QueryRow(ctx, `
			INSERT INTO ai_credits (company_id, balance, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (company_id) DO UPDATE SET balance = ai_credits.balance + EXCLUDED.balance, updated_at = now()
			RETURNING balance`, u.CompanyID, u.Credits).Scan(&balance)
		if err != nil {
			return fmt.Errorf("add ai credits: %w", err)
		}
		return insertUsage(ctx, q, u)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func insertUsage(ctx context.Context, q Querier, u *entity.AIUsage) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO ai_usage (id, company_id, user_id, operation, credits, reference, created_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7)`,
		u.ID, u.CompanyID, u.UserID, u.Operation, u.Credits, u.Reference, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ai usage: %w", err)
	}
	return nil
}

// ListUsage movimientos más recientes primero.
func (r *AICreditRepo) ListUsage(ctx context.Context, companyID string, limit int) ([]*entity.AIUsage, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, COALESCE(user_id::text, ''), operation, credits, reference, created_at
		  FROM ai_usage WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ai usage: %w", err)
	}
	defer rows.Close()
	var list []*entity.AIUsage
	for rows.Next() {
		var u entity.AIUsage
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.UserID, &u.Operation, &u.Credits, &u.Reference, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ai usage: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
