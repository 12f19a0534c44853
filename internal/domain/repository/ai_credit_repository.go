package repository

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// AICreditRepository define el puerto de persistencia para créditos de IA.
type AICreditRepository interface {
	// GetBalance devuelve el saldo; una empresa sin fila tiene saldo 0.
	GetBalance(ctx context.Context, companyID string) (*entity.AICreditBalance, error)
	// Consume descuenta credits de forma atómica y registra el uso.
	// Devuelve domain.ErrInsufficientCredits si el saldo no alcanza.
	Consume(ctx context.Context, usage *entity.AIUsage) (int, error)
	// Add suma créditos (recarga) y registra el movimiento. Devuelve el saldo nuevo.
	Add(ctx context.Context, usage *entity.AIUsage) (int, error)
	ListUsage(ctx context.Context, companyID string, limit int) ([]*entity.AIUsage, error)
}
