package email

import (
	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

func toEmailResponse(m *entity.EmailMessage, withBody bool) *dto.EmailResponse {
	out := &dto.EmailResponse{
		ID:              m.ID,
		MessageID:       m.MessageID,
		FromAddress:     m.FromAddress,
		FromName:        m.FromName,
		Subject:         m.Subject,
		ReceivedAt:      m.ReceivedAt,
		Status:          m.Status,
		RequestID:       m.RequestID,
		SupplierID:      m.SupplierID,
		ProposalID:      m.ProposalID,
		Category:        m.Category,
		Confidence:      m.Confidence,
		Reasoning:       m.Reasoning,
		ProcessingError: m.ProcessingError,
	}
	if withBody {
		out.Body = m.Body
	}
	for _, it := range m.ExtractedItems {
		out.ExtractedItems = append(out.ExtractedItems, dto.ExtractedPriceDTO{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return out
}
