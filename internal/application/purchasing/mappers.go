package purchasing

import (
	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/Compras-api/internal/domain/purchasing"
)

func toQuotationResponse(r *entity.QuotationRequest, suppliers map[string]*entity.Supplier) *dto.QuotationResponse {
	out := &dto.QuotationResponse{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		Number:      r.Number,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Deadline:    r.Deadline,
		CreatedBy:   r.CreatedBy,
		Items:       make([]dto.RequestItemResponse, 0, len(r.Items)),
		Suppliers:   make([]dto.RequestSupplierResponse, 0, len(r.Suppliers)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, dto.RequestItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitMeasure: it.UnitMeasure,
			Position:    it.Position,
		})
	}
	for _, s := range r.Suppliers {
		rs := dto.RequestSupplierResponse{
			SupplierID: s.SupplierID,
			Status:     s.Status,
			SentAt:     s.SentAt,
			LastError:  s.LastError,
		}
		if sup, ok := suppliers[s.SupplierID]; ok {
			rs.SupplierName = sup.Name
			rs.Email = sup.Email
		}
		out.Suppliers = append(out.Suppliers, rs)
	}
	return out
}

// ToProposalResponse convierte una propuesta a su DTO de salida.
func ToProposalResponse(p *entity.Proposal, supplierName string) *dto.ProposalResponse {
	out := &dto.ProposalResponse{
		ID:           p.ID,
		RequestID:    p.RequestID,
		SupplierID:   p.SupplierID,
		SupplierName: supplierName,
		Status:       p.Status,
		Source:       p.Source,
		DeliveryDays: p.DeliveryDays,
		PaymentTerms: p.PaymentTerms,
		ValidUntil:   p.ValidUntil,
		Freight:      p.Freight,
		Notes:        p.Notes,
		EmailID:      p.EmailID,
		Total:        p.Total(),
		Items:        make([]dto.ProposalItemResponse, 0, len(p.Items)),
		ReceivedAt:   p.ReceivedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for _, it := range p.Items {
		out.Items = append(out.Items, dto.ProposalItemResponse{
			ID:            it.ID,
			RequestItemID: it.RequestItemID,
			UnitPrice:     it.UnitPrice,
			Quantity:      it.Quantity,
			TotalPrice:    it.EffectiveTotal(),
			Notes:         it.Notes,
		})
	}
	return out
}

func toQuoteDTO(q domainpurchasing.Quote) dto.QuoteDTO {
	return dto.QuoteDTO{
		SupplierID:   q.SupplierID,
		SupplierName: q.SupplierName,
		ProposalID:   q.ProposalID,
		UnitPrice:    q.UnitPrice,
		Quantity:     q.Quantity,
		TotalPrice:   q.Effective(),
	}
}

func toSupplierTotalDTO(t domainpurchasing.SupplierTotal) dto.SupplierTotalDTO {
	return dto.SupplierTotalDTO{
		SupplierID:   t.SupplierID,
		SupplierName: t.SupplierName,
		ProposalID:   t.ProposalID,
		Total:        t.Total,
		ItemsQuoted:  t.ItemsQuoted,
		ItemsWon:     t.ItemsWon,
		CoversAll:    t.CoversAll,
	}
}

func toAllocationDTOs(list []domainpurchasing.Allocation) []dto.AllocationDTO {
	out := make([]dto.AllocationDTO, 0, len(list))
	for _, al := range list {
		ids := make([]string, 0, len(al.Items))
		for _, q := range al.Items {
			ids = append(ids, q.RequestItemID)
		}
		out = append(out, dto.AllocationDTO{
			SupplierID:   al.SupplierID,
			SupplierName: al.SupplierName,
			ProposalID:   al.ProposalID,
			Items:        ids,
			Subtotal:     al.Subtotal,
		})
	}
	return out
}

func toAnalysisResponse(req *entity.QuotationRequest, proposals int, a domainpurchasing.Analysis) *dto.AnalysisResponse {
	out := &dto.AnalysisResponse{
		RequestID:         req.ID,
		RequestNumber:     req.Number,
		ProposalCount:     proposals,
		Items:             make([]dto.ItemAnalysisDTO, 0, len(a.Items)),
		UnquotedItems:     make([]string, 0, len(a.UnquotedItems)),
		OptimalTotal:      a.OptimalTotal,
		SupplierTotals:    make([]dto.SupplierTotalDTO, 0, len(a.SupplierTotals)),
		ComparableOptimal: a.ComparableOptimal,
		Savings:           a.Savings,
		SavingsPct:        a.SavingsPct,
		Allocations:       toAllocationDTOs(a.Allocations),
		Recommendation:    a.Recommendation,
	}
	for _, ch := range a.Items {
		item := dto.ItemAnalysisDTO{
			RequestItemID: ch.Item.RequestItemID,
			Description:   ch.Item.Description,
			Quantity:      ch.Item.Quantity,
			Quotes:        make([]dto.QuoteDTO, 0, len(ch.Quotes)),
		}
		if ch.Best != nil {
			best := toQuoteDTO(*ch.Best)
			item.Best = &best
		}
		for _, q := range ch.Quotes {
			item.Quotes = append(item.Quotes, toQuoteDTO(q))
		}
		out.Items = append(out.Items, item)
	}
	for _, it := range a.UnquotedItems {
		out.UnquotedItems = append(out.UnquotedItems, it.RequestItemID)
	}
	for _, t := range a.SupplierTotals {
		out.SupplierTotals = append(out.SupplierTotals, toSupplierTotalDTO(t))
	}
	if a.BestSingle != nil {
		bs := toSupplierTotalDTO(*a.BestSingle)
		out.BestSingle = &bs
	}
	return out
}

func toSelectionResponse(requestID string, a domainpurchasing.Analysis, r domainpurchasing.SelectionResult) *dto.SelectionResponse {
	out := &dto.SelectionResponse{
		RequestID:       requestID,
		Items:           make([]dto.SelectedItemDTO, 0, len(r.Items)),
		Total:           r.Total,
		OptimalTotal:    a.OptimalTotal,
		ExtraCost:       r.ExtraCost,
		SavingsVsSingle: r.SavingsVsSingle,
		Overrides:       r.Overrides,
		Allocations:     toAllocationDTOs(r.Allocations),
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, dto.SelectedItemDTO{
			RequestItemID: it.Item.RequestItemID,
			Description:   it.Item.Description,
			Chosen:        toQuoteDTO(it.Chosen),
			Optimal:       toQuoteDTO(it.Optimal),
			Overridden:    it.Overridden,
			Difference:    it.Difference,
		})
	}
	return out
}

func toOrderResponse(o *entity.PurchaseOrder, supplierName string) *dto.PurchaseOrderResponse {
	out := &dto.PurchaseOrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		RequestID:    o.RequestID,
		ProposalID:   o.ProposalID,
		SupplierID:   o.SupplierID,
		SupplierName: supplierName,
		Status:       o.Status,
		Total:        o.Total,
		Notes:        o.Notes,
		CreatedBy:    o.CreatedBy,
		SentAt:       o.SentAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.PurchaseOrderItemResponse{
			ID:            it.ID,
			RequestItemID: it.RequestItemID,
			ProductID:     it.ProductID,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			TotalPrice:    it.TotalPrice,
		})
	}
	return out
}
