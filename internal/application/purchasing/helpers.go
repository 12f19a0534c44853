// Package purchasing contiene los casos de uso del flujo de compras: solicitudes de
// cotización, propuestas, análisis comparativo y órdenes de compra.
package purchasing

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// loadRequest obtiene la solicitud y verifica que pertenezca a la empresa.
func loadRequest(ctx context.Context, repo repository.QuotationRequestRepository, companyID, id string) (*entity.QuotationRequest, error) {
	req, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// suppliersByID carga los proveedores indicados indexados por ID.
func suppliersByID(ctx context.Context, repo repository.SupplierRepository, companyID string, ids []string) (map[string]*entity.Supplier, error) {
	out := make(map[string]*entity.Supplier, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := repo.ListByIDs(ctx, companyID, uniqueStrings(ids))
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func supplierName(m map[string]*entity.Supplier, id string) string {
	if s, ok := m[id]; ok {
		return s.Name
	}
	return ""
}
