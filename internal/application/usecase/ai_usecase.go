package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// llmTimeout tope de cada llamada al LLM; las latencias externas no deben
// bloquear los goroutines del servidor.
const llmTimeout = 20 * time.Second

// recentUsageLimit movimientos que se devuelven junto con el saldo.
const recentUsageLimit = 20

// AIUseCase orquesta las llamadas al LLM y el saldo de créditos de IA de cada empresa.
// Cada llamada descuenta créditos antes de invocar al proveedor; si el proveedor falla,
// el crédito se devuelve.
type AIUseCase struct {
	llm     ports.LLMService
	credits repository.AICreditRepository
	metrics ports.Metrics
	log     zerolog.Logger
}

// NewAIUseCase construye el caso de uso. llm puede ser nil si no hay proveedor configurado.
func NewAIUseCase(llm ports.LLMService, credits repository.AICreditRepository, metrics ports.Metrics, log zerolog.Logger) *AIUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &AIUseCase{llm: llm, credits: credits, metrics: metrics, log: log}
}

// ClassifyEmail consume un crédito y pide al LLM la clasificación del correo.
func (uc *AIUseCase) ClassifyEmail(
	ctx context.Context,
	companyID, userID, reference string,
	in ports.EmailClassificationInput,
) (*dto.EmailClassificationDTO, error) {
	if uc.llm == nil {
		return nil, domain.ErrAIUnavailable
	}
	cost := entity.CreditsPerClassification
	balance, err := uc.credits.Consume(ctx, &entity.AIUsage{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		UserID:    userID,
		Operation: entity.AIOperationEmailClassification,
		Credits:   cost,
		Reference: reference,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.AICreditsConsumed(entity.AIOperationEmailClassification, cost)

	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	result, err := uc.llm.ClassifyEmail(llmCtx, in)
	if err != nil {
		uc.refund(ctx, companyID, userID, reference, cost)
		return nil, fmt.Errorf("clasificación IA: %w", err)
	}
	uc.log.Debug().
		Str("company_id", companyID).
		Str("reference", reference).
		Str("category", result.Category).
		Int("balance", balance).
		Msg("correo clasificado")
	return result, nil
}

func (uc *AIUseCase) refund(ctx context.Context, companyID, userID, reference string, credits int) {
	_, err := uc.credits.Add(context.WithoutCancel(ctx), &entity.AIUsage{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		UserID:    userID,
		Operation: entity.AIOperationRefund,
		Credits:   credits,
		Reference: reference,
		CreatedAt: time.Now(),
	})
	if err != nil {
		uc.log.Error().Err(err).Str("company_id", companyID).Msg("no se pudo devolver el crédito de IA")
	}
}

// Credits saldo actual y movimientos recientes.
func (uc *AIUseCase) Credits(ctx context.Context, companyID string) (*dto.AICreditsResponse, error) {
	bal, err := uc.credits.GetBalance(ctx, companyID)
	if err != nil {
		return nil, err
	}
	usage, err := uc.credits.ListUsage(ctx, companyID, recentUsageLimit)
	if err != nil {
		return nil, err
	}
	out := &dto.AICreditsResponse{CompanyID: companyID, RecentUsage: make([]dto.AIUsageDTO, 0, len(usage))}
	if bal != nil {
		out.Balance = bal.Balance
	}
	for _, u := range usage {
		out.RecentUsage = append(out.RecentUsage, dto.AIUsageDTO{
			Operation: u.Operation,
			Credits:   u.Credits,
			UserID:    u.UserID,
			Reference: u.Reference,
			CreatedAt: u.CreatedAt,
		})
	}
	return out, nil
}

// AddCredits recarga el saldo de la empresa.
func (uc *AIUseCase) AddCredits(ctx context.Context, companyID, userID string, in dto.AddCreditsRequest) (*dto.AICreditsResponse, error) {
	if in.Credits <= 0 {
		return nil, domain.ErrInvalidInput
	}
	_, err := uc.credits.Add(ctx, &entity.AIUsage{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		UserID:    userID,
		Operation: entity.AIOperationTopUp,
		Credits:   in.Credits,
		Reference: in.Note,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", companyID).Int("credits", in.Credits).Msg("créditos de IA recargados")
	return uc.Credits(ctx, companyID)
}
