package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
	"github.com/jhoicas/Compras-api/pkg/nit"
)

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create registra un proveedor. El identificador fiscal es único por empresa.
func (uc *SupplierUseCase) Create(ctx context.Context, companyID string, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	in.TaxID = nit.Normalize(in.TaxID)
	if err := nit.Validate(in.TaxID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	existing, err := uc.repo.GetByCompanyAndTaxID(ctx, companyID, in.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Name:        in.Name,
		TaxID:       in.TaxID,
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       in.Phone,
		ContactName: in.ContactName,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// GetByID obtiene un proveedor de la empresa.
func (uc *SupplierUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Update actualiza los datos de contacto o el estado.
func (uc *SupplierUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Email != nil {
		s.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		s.Phone = *in.Phone
	}
	if in.ContactName != nil {
		s.ContactName = *in.ContactName
	}
	if in.Status != nil {
		s.Status = *in.Status
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// List lista proveedores; search filtra por nombre, identificador fiscal o email.
func (uc *SupplierUseCase) List(ctx context.Context, companyID, search string, limit, offset int) (*dto.SupplierListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un proveedor. Si ya participó en solicitudes, la base rechaza el borrado.
func (uc *SupplierUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *SupplierUseCase) get(ctx context.Context, companyID, id string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:          s.ID,
		CompanyID:   s.CompanyID,
		Name:        s.Name,
		TaxID:       s.TaxID,
		Email:       s.Email,
		Phone:       s.Phone,
		ContactName: s.ContactName,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
