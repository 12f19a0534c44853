package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// CategoryUseCase casos de uso CRUD para categorías (árbol por empresa).
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría. El código es único por empresa.
func (uc *CategoryUseCase) Create(ctx context.Context, companyID string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	in.Code = strings.TrimSpace(in.Code)
	existing, err := uc.repo.GetByCompanyAndCode(ctx, companyID, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.ParentID != "" {
		if _, err := uc.get(ctx, companyID, in.ParentID); err != nil {
			return nil, domain.ErrInvalidInput
		}
	}
	now := time.Now()
	cat := &entity.Category{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ParentID:  in.ParentID,
		Code:      in.Code,
		Name:      in.Name,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// GetByID obtiene una categoría de la empresa.
func (uc *CategoryUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.CategoryResponse, error) {
	cat, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// Update actualiza nombre, padre o estado. Una categoría no puede ser su propio padre.
func (uc *CategoryUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	cat, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		cat.Name = *in.Name
	}
	if in.ParentID != nil {
		if *in.ParentID == id {
			return nil, domain.ErrInvalidInput
		}
		if *in.ParentID != "" {
			if _, err := uc.get(ctx, companyID, *in.ParentID); err != nil {
				return nil, domain.ErrInvalidInput
			}
		}
		cat.ParentID = *in.ParentID
	}
	if in.Status != nil {
		cat.Status = *in.Status
	}
	cat.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// List lista categorías; con parentID lista solo las hijas directas.
func (uc *CategoryUseCase) List(ctx context.Context, companyID, parentID string, limit, offset int) (*dto.CategoryListResponse, error) {
	var (
		list []*entity.Category
		err  error
	)
	if parentID != "" {
		list, err = uc.repo.ListByParent(ctx, companyID, parentID)
	} else {
		list, err = uc.repo.ListByCompany(ctx, companyID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCategoryResponse(c))
	}
	return &dto.CategoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una categoría sin hijas.
func (uc *CategoryUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	children, err := uc.repo.ListByParent(ctx, companyID, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return domain.ErrConflict
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *CategoryUseCase) get(ctx context.Context, companyID, id string) (*entity.Category, error) {
	cat, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil || cat.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return cat, nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		ParentID:  c.ParentID,
		Code:      c.Code,
		Name:      c.Name,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
