package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/Compras-api/internal/domain/purchasing"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// PurchaseOrderDeps dependencias del caso de uso de órdenes. Sender puede ser nil.
type PurchaseOrderDeps struct {
	Analysis  *AnalysisUseCase
	Requests  repository.QuotationRequestRepository
	Orders    repository.PurchaseOrderRepository
	Suppliers repository.SupplierRepository
	Companies repository.CompanyRepository
	Tx        ports.TxRunner
	PDF       ports.PurchaseOrderPDFGenerator
	XML       ports.PurchaseOrderXMLExporter
	Sender    ports.EmailSender
	Metrics   ports.Metrics
	Log       zerolog.Logger
}

// PurchaseOrderUseCase emisión y seguimiento de órdenes de compra.
type PurchaseOrderUseCase struct {
	d PurchaseOrderDeps
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(d PurchaseOrderDeps) *PurchaseOrderUseCase {
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	return &PurchaseOrderUseCase{d: d}
}

// Generate emite una orden por proveedor según el modo elegido, en una sola transacción:
// las propuestas elegidas quedan ACCEPTED, las demás REJECTED y la solicitud COMPLETED.
// Los ítems que no quedan en ninguna orden se informan en UnorderedItemIDs.
func (uc *PurchaseOrderUseCase) Generate(ctx context.Context, companyID, userID, requestID string, in dto.GenerateOrdersRequest) (*dto.GenerateOrdersResponse, error) {
	data, err := uc.d.Analysis.compute(ctx, companyID, requestID)
	if err != nil {
		return nil, err
	}
	req := data.request
	if !req.CanTransitionTo(entity.RequestStatusCompleted) {
		return nil, fmt.Errorf("%w: la solicitud %s está en %s", domain.ErrInvalidStatus, req.Number, req.Status)
	}

	allocations, err := planAllocations(data.analysis, in)
	if err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return nil, domain.ErrNoProposals
	}

	now := time.Now()
	orders := make([]*entity.PurchaseOrder, 0, len(allocations))
	chosen := make(map[string]bool, len(allocations))
	for _, al := range allocations {
		chosen[al.ProposalID] = true
		orders = append(orders, buildOrder(req, al, userID, in.Notes, now))
	}

	err = uc.d.Tx.RunPurchasing(ctx, func(repos ports.PurchasingRepos) error {
		// Primero la transición condicionada: una segunda emisión simultánea falla aquí
		// con ErrInvalidStatus y no crea órdenes.
		if err := repos.Requests.TransitionStatus(ctx, req.ID, req.Status, entity.RequestStatusCompleted); err != nil {
			return err
		}
		for _, o := range orders {
			number, err := repos.Orders.NextNumber(ctx, companyID)
			if err != nil {
				return err
			}
			o.Number = number
			if err := repos.Orders.Create(ctx, o); err != nil {
				return err
			}
		}
		for _, p := range data.proposals {
			status := entity.ProposalStatusRejected
			if chosen[p.ID] {
				status = entity.ProposalStatusAccepted
			}
			if err := repos.Proposals.UpdateStatus(ctx, p.ID, status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.d.Metrics.PurchaseOrdersIssued(in.Mode, len(orders))

	out := &dto.GenerateOrdersResponse{RequestID: req.ID, Mode: in.Mode, Total: decimal.Zero, UnorderedItemIDs: []string{}}
	ordered := make(map[string]bool, len(req.Items))
	for i, o := range orders {
		out.Orders = append(out.Orders, *toOrderResponse(o, allocations[i].SupplierName))
		out.Total = out.Total.Add(o.Total)
		for _, it := range o.Items {
			ordered[it.RequestItemID] = true
		}
	}
	for _, it := range req.Items {
		if !ordered[it.ID] {
			out.UnorderedItemIDs = append(out.UnorderedItemIDs, it.ID)
		}
	}
	uc.d.Log.Info().
		Str("company_id", companyID).Str("request_id", req.ID).Str("mode", in.Mode).
		Int("orders", len(orders)).Int("unordered_items", len(out.UnorderedItemIDs)).Str("total", out.Total.String()).
		Msg("órdenes de compra emitidas")
	return out, nil
}

// planAllocations decide qué comprar a quién según el modo.
func planAllocations(a domainpurchasing.Analysis, in dto.GenerateOrdersRequest) ([]domainpurchasing.Allocation, error) {
	switch in.Mode {
	case dto.OrderModeOptimized:
		res, err := domainpurchasing.ApplySelection(a, nil)
		if err != nil {
			return nil, err
		}
		return res.Allocations, nil

	case dto.OrderModeSingle:
		supplierID := in.SupplierID
		if supplierID == "" {
			if a.BestSingle == nil {
				return nil, domain.ErrNoProposals
			}
			supplierID = a.BestSingle.SupplierID
		}
		sel, err := domainpurchasing.SingleSupplierSelection(a, supplierID)
		if err != nil {
			return nil, err
		}
		res, err := domainpurchasing.ApplySelection(a, sel)
		if err != nil {
			return nil, err
		}
		for _, al := range res.Allocations {
			if al.SupplierID == supplierID {
				return []domainpurchasing.Allocation{al}, nil
			}
		}
		return nil, nil

	case dto.OrderModeCustom:
		if len(in.Selections) == 0 {
			return nil, fmt.Errorf("%w: el modo CUSTOM requiere selections", domain.ErrInvalidInput)
		}
		sel, err := SelectionFromDTO(in.Selections)
		if err != nil {
			return nil, err
		}
		res, err := domainpurchasing.ApplySelection(a, sel)
		if err != nil {
			return nil, err
		}
		return res.Allocations, nil
	}
	return nil, fmt.Errorf("%w: modo %q desconocido", domain.ErrInvalidInput, in.Mode)
}

func buildOrder(req *entity.QuotationRequest, al domainpurchasing.Allocation, userID, notes string, now time.Time) *entity.PurchaseOrder {
	o := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		CompanyID:  req.CompanyID,
		RequestID:  req.ID,
		ProposalID: al.ProposalID,
		SupplierID: al.SupplierID,
		Status:     entity.OrderStatusIssued,
		Total:      decimal.Zero,
		Notes:      notes,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, q := range al.Items {
		ri, _ := req.Item(q.RequestItemID)
		qty := q.Quantity
		if qty.IsZero() {
			qty = ri.Quantity
		}
		total := q.Effective()
		unit := q.UnitPrice
		if unit.IsZero() && qty.IsPositive() {
			unit = total.Div(qty).Round(4)
		}
		o.Items = append(o.Items, entity.PurchaseOrderItem{
			ID:             uuid.New().String(),
			OrderID:        o.ID,
			RequestItemID:  ri.ID,
			ProposalItemID: q.ProposalItemID,
			ProductID:      ri.ProductID,
			Description:    ri.Description,
			Quantity:       qty,
			UnitPrice:      unit,
			TotalPrice:     total,
		})
		o.Total = o.Total.Add(total)
	}
	return o
}

// List órdenes de la empresa.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, companyID string, f repository.PurchaseOrderFilter, limit, offset int) (*dto.PurchaseOrderListResponse, error) {
	list, err := uc.d.Orders.ListByCompany(ctx, companyID, f, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.SupplierID)
	}
	names, err := suppliersByID(ctx, uc.d.Suppliers, companyID, ids)
	if err != nil {
		return nil, err
	}
	out := &dto.PurchaseOrderListResponse{
		Items: make([]dto.PurchaseOrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, o := range list {
		out.Items = append(out.Items, *toOrderResponse(o, supplierName(names, o.SupplierID)))
	}
	return out, nil
}

// Get devuelve una orden con sus ítems.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	o, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	names, err := suppliersByID(ctx, uc.d.Suppliers, companyID, []string{o.SupplierID})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o, supplierName(names, o.SupplierID)), nil
}

// UpdateStatus avanza el estado de la orden validando la transición.
func (uc *PurchaseOrderUseCase) UpdateStatus(ctx context.Context, companyID, id string, in dto.UpdateOrderStatusRequest) (*dto.PurchaseOrderResponse, error) {
	o, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !o.CanTransitionTo(in.Status) {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidStatus, o.Status, in.Status)
	}
	var sentAt *time.Time
	if in.Status == entity.OrderStatusSent {
		now := time.Now()
		sentAt = &now
	}
	if err := uc.d.Orders.UpdateStatus(ctx, id, in.Status, sentAt); err != nil {
		return nil, err
	}
	return uc.Get(ctx, companyID, id)
}

// PDF genera la orden en PDF. Devuelve el contenido y el nombre del archivo.
func (uc *PurchaseOrderUseCase) PDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	doc, err := uc.document(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	content, err := uc.d.PDF.GeneratePurchaseOrderPDF(ctx, *doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf orden %s: %w", doc.Order.Number, err)
	}
	return content, doc.Order.Number + ".pdf", nil
}

// XML exporta la orden para el ERP.
func (uc *PurchaseOrderUseCase) XML(ctx context.Context, companyID, id string) ([]byte, string, error) {
	doc, err := uc.document(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	content, err := uc.d.XML.ExportPurchaseOrderXML(ctx, *doc)
	if err != nil {
		return nil, "", fmt.Errorf("xml orden %s: %w", doc.Order.Number, err)
	}
	return content, doc.Order.Number + ".xml", nil
}

// Send envía la orden al proveedor con el PDF adjunto. Una orden ISSUED pasa a SENT;
// una orden ya enviada se puede reenviar sin cambiar de estado.
func (uc *PurchaseOrderUseCase) Send(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	if uc.d.Sender == nil {
		return nil, domain.ErrMailUnavailable
	}
	doc, err := uc.document(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	o := doc.Order
	if o.Status != entity.OrderStatusIssued && o.Status != entity.OrderStatusSent {
		return nil, fmt.Errorf("%w: no se envía una orden en %s", domain.ErrInvalidStatus, o.Status)
	}
	if doc.Supplier.Email == "" {
		return nil, fmt.Errorf("%w: el proveedor no tiene email", domain.ErrInvalidInput)
	}
	pdf, err := uc.d.PDF.GeneratePurchaseOrderPDF(ctx, *doc)
	if err != nil {
		return nil, fmt.Errorf("pdf orden %s: %w", o.Number, err)
	}
	if err := uc.d.Sender.Send(ctx, purchaseOrderEmail(doc.Company, o, doc.Supplier, pdf)); err != nil {
		uc.d.Log.Warn().Err(err).Str("company_id", companyID).Str("order", o.Number).Msg("fallo el envío de la orden")
		return nil, fmt.Errorf("enviar orden %s: %w", o.Number, err)
	}
	now := time.Now()
	status := o.Status
	if status == entity.OrderStatusIssued {
		status = entity.OrderStatusSent
	}
	if err := uc.d.Orders.UpdateStatus(ctx, id, status, &now); err != nil {
		return nil, err
	}
	uc.d.Log.Info().Str("company_id", companyID).Str("order", o.Number).Str("supplier_id", o.SupplierID).Msg("orden enviada")
	return uc.Get(ctx, companyID, id)
}

func (uc *PurchaseOrderUseCase) load(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	o, err := uc.d.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (uc *PurchaseOrderUseCase) document(ctx context.Context, companyID, id string) (*ports.PurchaseOrderDocument, error) {
	o, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	company, err := uc.d.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	supplier, err := uc.d.Suppliers.GetByID(ctx, o.SupplierID)
	if err != nil {
		return nil, err
	}
	req, err := uc.d.Requests.GetByID(ctx, o.RequestID)
	if err != nil {
		return nil, err
	}
	if company == nil || supplier == nil || req == nil {
		return nil, domain.ErrNotFound
	}
	return &ports.PurchaseOrderDocument{Order: o, Company: company, Supplier: supplier, Request: req}, nil
}
