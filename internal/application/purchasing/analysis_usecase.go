package purchasing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/Compras-api/internal/domain/purchasing"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// AnalysisUseCase análisis comparativo de las propuestas de una solicitud.
type AnalysisUseCase struct {
	requests  repository.QuotationRequestRepository
	proposals repository.ProposalRepository
	suppliers repository.SupplierRepository
	companies repository.CompanyRepository
	xlsx      ports.AnalysisSpreadsheetGenerator
	metrics   ports.Metrics
	log       zerolog.Logger
}

// NewAnalysisUseCase construye el caso de uso.
func NewAnalysisUseCase(
	requests repository.QuotationRequestRepository,
	proposals repository.ProposalRepository,
	suppliers repository.SupplierRepository,
	companies repository.CompanyRepository,
	xlsx ports.AnalysisSpreadsheetGenerator,
	metrics ports.Metrics,
	log zerolog.Logger,
) *AnalysisUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &AnalysisUseCase{
		requests:  requests,
		proposals: proposals,
		suppliers: suppliers,
		companies: companies,
		xlsx:      xlsx,
		metrics:   metrics,
		log:       log,
	}
}

// analysisInput solicitud, propuestas y análisis calculado.
type analysisInput struct {
	request   *entity.QuotationRequest
	proposals []*entity.Proposal
	analysis  domainpurchasing.Analysis
}

// compute carga la solicitud y sus propuestas y ejecuta el análisis optimizado.
func (uc *AnalysisUseCase) compute(ctx context.Context, companyID, requestID string) (*analysisInput, error) {
	req, err := loadRequest(ctx, uc.requests, companyID, requestID)
	if err != nil {
		return nil, err
	}
	list, err := uc.proposals.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrNoProposals
	}
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.SupplierID)
	}
	names, err := suppliersByID(ctx, uc.suppliers, companyID, ids)
	if err != nil {
		return nil, err
	}

	a := domainpurchasing.Analyze(ItemRefs(req), ProposalQuotes(list, names))
	return &analysisInput{request: req, proposals: list, analysis: a}, nil
}

// Analyze devuelve el análisis optimizado de la solicitud.
func (uc *AnalysisUseCase) Analyze(ctx context.Context, companyID, requestID string) (*dto.AnalysisResponse, error) {
	in, err := uc.compute(ctx, companyID, requestID)
	if err != nil {
		return nil, err
	}
	uc.metrics.AnalysisComputed(in.analysis.Recommendation)
	uc.log.Debug().
		Str("company_id", companyID).Str("request_id", requestID).
		Str("optimal_total", in.analysis.OptimalTotal.String()).
		Str("savings", in.analysis.Savings.String()).
		Str("recommendation", in.analysis.Recommendation).
		Msg("análisis calculado")
	return toAnalysisResponse(in.request, len(in.proposals), in.analysis), nil
}

// Select recalcula el plan con la selección manual del usuario.
func (uc *AnalysisUseCase) Select(ctx context.Context, companyID, requestID string, in dto.SelectionRequest) (*dto.SelectionResponse, error) {
	sel, err := SelectionFromDTO(in.Selections)
	if err != nil {
		return nil, err
	}
	data, err := uc.compute(ctx, companyID, requestID)
	if err != nil {
		return nil, err
	}
	res, err := domainpurchasing.ApplySelection(data.analysis, sel)
	if err != nil {
		return nil, err
	}
	return toSelectionResponse(requestID, data.analysis, res), nil
}

// Export genera el mapa comparativo en XLSX. Devuelve el contenido y el nombre sugerido.
func (uc *AnalysisUseCase) Export(ctx context.Context, companyID, requestID string) ([]byte, string, error) {
	if uc.xlsx == nil {
		return nil, "", fmt.Errorf("exportación XLSX no configurada")
	}
	data, err := uc.compute(ctx, companyID, requestID)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	content, err := uc.xlsx.GenerateAnalysisXLSX(ctx, ports.AnalysisReport{
		Company:  company,
		Request:  data.request,
		Analysis: data.analysis,
	})
	if err != nil {
		return nil, "", fmt.Errorf("mapa comparativo: %w", err)
	}
	return content, "mapa-comparativo-" + data.request.Number + ".xlsx", nil
}

// ItemRefs ítems de la solicitud en su orden.
func ItemRefs(req *entity.QuotationRequest) []domainpurchasing.ItemRef {
	out := make([]domainpurchasing.ItemRef, 0, len(req.Items))
	for _, it := range req.Items {
		out = append(out, domainpurchasing.ItemRef{
			RequestItemID: it.ID,
			Description:   it.Description,
			Quantity:      it.Quantity,
		})
	}
	return out
}

// ProposalQuotes convierte las propuestas (ya ordenadas por recepción) en cotizaciones.
func ProposalQuotes(list []*entity.Proposal, suppliers map[string]*entity.Supplier) []domainpurchasing.ProposalQuotes {
	out := make([]domainpurchasing.ProposalQuotes, 0, len(list))
	for _, p := range list {
		pq := domainpurchasing.ProposalQuotes{
			ProposalID:   p.ID,
			SupplierID:   p.SupplierID,
			SupplierName: supplierName(suppliers, p.SupplierID),
			Quotes:       make([]domainpurchasing.Quote, 0, len(p.Items)),
		}
		for _, it := range p.Items {
			pq.Quotes = append(pq.Quotes, domainpurchasing.Quote{
				ProposalItemID: it.ID,
				RequestItemID:  it.RequestItemID,
				UnitPrice:      it.UnitPrice,
				Quantity:       it.Quantity,
				TotalPrice:     it.TotalPrice,
			})
		}
		out = append(out, pq)
	}
	return out
}

// SelectionFromDTO convierte la selección del cliente. Un ítem repetido es inválido.
func SelectionFromDTO(in []dto.ItemSelection) (domainpurchasing.Selection, error) {
	sel := make(domainpurchasing.Selection, len(in))
	for _, s := range in {
		if _, dup := sel[s.RequestItemID]; dup {
			return nil, fmt.Errorf("%w: ítem %s seleccionado dos veces", domain.ErrInvalidSelection, s.RequestItemID)
		}
		sel[s.RequestItemID] = s.SupplierID
	}
	return sel, nil
}
