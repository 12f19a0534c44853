package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// ProposalUseCase casos de uso de las propuestas de proveedores.
type ProposalUseCase struct {
	requests  repository.QuotationRequestRepository
	proposals repository.ProposalRepository
	suppliers repository.SupplierRepository
	tx        ports.TxRunner
	metrics   ports.Metrics
	log       zerolog.Logger
}

// NewProposalUseCase construye el caso de uso.
func NewProposalUseCase(
	requests repository.QuotationRequestRepository,
	proposals repository.ProposalRepository,
	suppliers repository.SupplierRepository,
	tx ports.TxRunner,
	metrics ports.Metrics,
	log zerolog.Logger,
) *ProposalUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &ProposalUseCase{
		requests:  requests,
		proposals: proposals,
		suppliers: suppliers,
		tx:        tx,
		metrics:   metrics,
		log:       log,
	}
}

// Create registra manualmente la propuesta de un proveedor.
func (uc *ProposalUseCase) Create(ctx context.Context, companyID, requestID string, in dto.CreateProposalRequest) (*dto.ProposalResponse, error) {
	req, err := loadRequest(ctx, uc.requests, companyID, requestID)
	if err != nil {
		return nil, err
	}
	supplier, err := uc.suppliers.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil || supplier.CompanyID != companyID {
		return nil, fmt.Errorf("%w: proveedor %s no existe", domain.ErrInvalidInput, in.SupplierID)
	}
	items, err := BuildProposalItems(req, in.Items)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p := &entity.Proposal{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		RequestID:    req.ID,
		SupplierID:   supplier.ID,
		Status:       entity.ProposalStatusReceived,
		Source:       entity.ProposalSourceManual,
		DeliveryDays: in.DeliveryDays,
		PaymentTerms: in.PaymentTerms,
		ValidUntil:   in.ValidUntil,
		Freight:      in.Freight,
		Notes:        in.Notes,
		Items:        items,
		ReceivedAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.tx.RunPurchasing(ctx, func(repos ports.PurchasingRepos) error {
		return RecordProposal(ctx, repos, req, p)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.ProposalRecorded(p.Source)
	uc.log.Info().
		Str("company_id", companyID).Str("request_id", req.ID).Str("supplier_id", supplier.ID).
		Str("total", p.Total().String()).
		Msg("propuesta registrada")
	return ToProposalResponse(p, supplier.Name), nil
}

// Get devuelve una propuesta de la solicitud.
func (uc *ProposalUseCase) Get(ctx context.Context, companyID, requestID, id string) (*dto.ProposalResponse, error) {
	p, err := uc.load(ctx, companyID, requestID, id)
	if err != nil {
		return nil, err
	}
	names, err := suppliersByID(ctx, uc.suppliers, companyID, []string{p.SupplierID})
	if err != nil {
		return nil, err
	}
	return ToProposalResponse(p, supplierName(names, p.SupplierID)), nil
}

// List propuestas de una solicitud en orden de recepción.
func (uc *ProposalUseCase) List(ctx context.Context, companyID, requestID string) (*dto.ProposalListResponse, error) {
	if _, err := loadRequest(ctx, uc.requests, companyID, requestID); err != nil {
		return nil, err
	}
	list, err := uc.proposals.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.SupplierID)
	}
	names, err := suppliersByID(ctx, uc.suppliers, companyID, ids)
	if err != nil {
		return nil, err
	}
	out := &dto.ProposalListResponse{Items: make([]dto.ProposalResponse, 0, len(list))}
	for _, p := range list {
		out.Items = append(out.Items, *ToProposalResponse(p, supplierName(names, p.SupplierID)))
	}
	return out, nil
}

// Update corrige condiciones o precios mientras la solicitud sigue abierta.
func (uc *ProposalUseCase) Update(ctx context.Context, companyID, requestID, id string, in dto.UpdateProposalRequest) (*dto.ProposalResponse, error) {
	req, err := loadRequest(ctx, uc.requests, companyID, requestID)
	if err != nil {
		return nil, err
	}
	p, err := uc.load(ctx, companyID, requestID, id)
	if err != nil {
		return nil, err
	}
	if !req.AcceptsProposals() || p.Status != entity.ProposalStatusReceived {
		return nil, fmt.Errorf("%w: la propuesta ya no se puede modificar", domain.ErrInvalidStatus)
	}
	if in.DeliveryDays != nil {
		p.DeliveryDays = *in.DeliveryDays
	}
	if in.PaymentTerms != nil {
		p.PaymentTerms = *in.PaymentTerms
	}
	if in.ValidUntil != nil {
		p.ValidUntil = in.ValidUntil
	}
	if in.Freight != nil {
		p.Freight = *in.Freight
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	if in.Items != nil {
		items, err := BuildProposalItems(req, in.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].ProposalID = p.ID
		}
		p.Items = items
	}
	p.UpdatedAt = time.Now()
	if err := uc.proposals.Update(ctx, p); err != nil {
		return nil, err
	}
	return uc.Get(ctx, companyID, requestID, id)
}

// Delete elimina una propuesta mientras la solicitud sigue abierta.
func (uc *ProposalUseCase) Delete(ctx context.Context, companyID, requestID, id string) error {
	req, err := loadRequest(ctx, uc.requests, companyID, requestID)
	if err != nil {
		return err
	}
	p, err := uc.load(ctx, companyID, requestID, id)
	if err != nil {
		return err
	}
	if !req.AcceptsProposals() || p.Status != entity.ProposalStatusReceived {
		return fmt.Errorf("%w: la propuesta ya no se puede eliminar", domain.ErrInvalidStatus)
	}
	return uc.proposals.Delete(ctx, id)
}

func (uc *ProposalUseCase) load(ctx context.Context, companyID, requestID, id string) (*entity.Proposal, error) {
	p, err := uc.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID || p.RequestID != requestID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// BuildProposalItems valida las líneas contra los ítems de la solicitud. La cantidad
// por defecto es la solicitada; cada ítem se cotiza una sola vez y con precios no negativos.
func BuildProposalItems(req *entity.QuotationRequest, in []dto.ProposalItemInput) ([]entity.ProposalItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la propuesta necesita al menos un ítem", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(in))
	items := make([]entity.ProposalItem, 0, len(in))
	for _, it := range in {
		ri, ok := req.Item(it.RequestItemID)
		if !ok {
			return nil, fmt.Errorf("%w: ítem %s no pertenece a la solicitud", domain.ErrInvalidInput, it.RequestItemID)
		}
		if seen[it.RequestItemID] {
			return nil, fmt.Errorf("%w: ítem %s repetido", domain.ErrInvalidInput, it.RequestItemID)
		}
		seen[it.RequestItemID] = true
		if it.UnitPrice.IsNegative() || it.TotalPrice.IsNegative() || it.Quantity.IsNegative() {
			return nil, fmt.Errorf("%w: precios y cantidades no pueden ser negativos", domain.ErrInvalidInput)
		}
		qty := it.Quantity
		if qty.IsZero() {
			qty = ri.Quantity
		}
		item := entity.ProposalItem{
			ID:            uuid.New().String(),
			RequestItemID: ri.ID,
			UnitPrice:     it.UnitPrice,
			Quantity:      qty,
			TotalPrice:    it.TotalPrice,
			Notes:         it.Notes,
		}
		if item.TotalPrice.IsZero() {
			item.TotalPrice = item.UnitPrice.Mul(qty)
		}
		if item.UnitPrice.IsZero() && qty.IsPositive() {
			item.UnitPrice = item.TotalPrice.Div(qty).Round(4)
		}
		if !item.TotalPrice.IsPositive() {
			return nil, fmt.Errorf("%w: ítem %s sin precio", domain.ErrInvalidInput, ri.Description)
		}
		items = append(items, item)
	}
	return items, nil
}

// RecordProposal persiste la propuesta dentro de la transacción de repos: exige que la
// solicitud acepte propuestas y que el proveedor no haya respondido antes, marca la
// invitación como respondida (invitando al proveedor si no lo estaba) y pasa la
// solicitud a IN_ANALYSIS con la primera propuesta.
func RecordProposal(ctx context.Context, repos ports.PurchasingRepos, req *entity.QuotationRequest, p *entity.Proposal) error {
	if !req.AcceptsProposals() {
		return fmt.Errorf("%w: la solicitud %s está en %s", domain.ErrInvalidStatus, req.Number, req.Status)
	}
	// La transición condicionada bloquea la fila: una emisión de órdenes en curso
	// no puede completar la solicitud mientras se registra la propuesta.
	err := repos.Requests.TransitionStatus(ctx, req.ID, req.Status, entity.RequestStatusInAnalysis)
	if errors.Is(err, domain.ErrInvalidStatus) && req.Status == entity.RequestStatusSent {
		// otra propuesta la pasó a análisis primero
		err = repos.Requests.TransitionStatus(ctx, req.ID, entity.RequestStatusInAnalysis, entity.RequestStatusInAnalysis)
	}
	if err != nil {
		return err
	}
	req.Status = entity.RequestStatusInAnalysis

	existing, err := repos.Proposals.GetByRequestAndSupplier(ctx, req.ID, p.SupplierID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicate
	}
	for i := range p.Items {
		p.Items[i].ProposalID = p.ID
	}
	if p.Freight.IsNegative() {
		p.Freight = decimal.Zero
	}
	if err := repos.Proposals.Create(ctx, p); err != nil {
		return err
	}
	if req.HasSupplier(p.SupplierID) {
		if err := repos.Requests.UpdateSupplierStatus(ctx, req.ID, p.SupplierID, entity.InviteStatusResponded, nil, ""); err != nil {
			return err
		}
	} else {
		if err := repos.Requests.AddSupplier(ctx, req.ID, p.SupplierID, entity.InviteStatusResponded); err != nil {
			return err
		}
		req.Suppliers = append(req.Suppliers, entity.RequestSupplier{
			RequestID: req.ID, SupplierID: p.SupplierID, Status: entity.InviteStatusResponded,
		})
	}
	return nil
}
