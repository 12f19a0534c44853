package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
	"github.com/jhoicas/Compras-api/pkg/nit"
)

// defaultModules módulos que se activan al crear una empresa.
var defaultModules = []string{entity.ModulePurchasing, entity.ModuleEmail, entity.ModuleAI}

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo           repository.CompanyRepository
	credits        repository.AICreditRepository
	initialCredits int
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
// initialCredits son los créditos de IA que recibe cada empresa nueva.
func NewCompanyUseCase(repo repository.CompanyRepository, credits repository.AICreditRepository, initialCredits int) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, credits: credits, initialCredits: initialCredits}
}

// Create crea una nueva empresa con los módulos por defecto y su saldo inicial de créditos.
// Devuelve domain.ErrDuplicate si el identificador fiscal ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	in.TaxID = nit.Normalize(in.TaxID)
	if err := nit.Validate(in.TaxID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	existing, err := uc.repo.GetByTaxID(ctx, in.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	for _, name := range defaultModules {
		m := &entity.CompanyModule{
			ID:          uuid.New().String(),
			CompanyID:   company.ID,
			ModuleName:  name,
			IsActive:    true,
			ActivatedAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.repo.ActivateModule(ctx, m); err != nil {
			return nil, fmt.Errorf("activar módulo %s: %w", name, err)
		}
	}
	if uc.credits != nil && uc.initialCredits > 0 {
		_, err := uc.credits.Add(ctx, &entity.AIUsage{
			ID:        uuid.New().String(),
			CompanyID: company.ID,
			Operation: entity.AIOperationTopUp,
			Credits:   uc.initialCredits,
			Reference: "saldo inicial",
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("créditos iniciales: %w", err)
		}
	}
	out := entityToCompanyResponse(company)
	out.Modules = append([]string(nil), defaultModules...)
	return out, nil
}

// GetByID obtiene una empresa por ID junto con sus módulos activos.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	out := entityToCompanyResponse(company)
	modules, err := uc.repo.ListModules(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		if m.IsActive {
			out.Modules = append(out.Modules, m.ModuleName)
		}
	}
	return out, nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
