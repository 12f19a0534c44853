package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProposalItemInput precio cotizado para un ítem.
type ProposalItemInput struct {
	RequestItemID string          `json:"request_item_id" validate:"required,uuid"`
	UnitPrice     decimal.Decimal `json:"unit_price" swaggertype:"string" example:"12.50"`
	Quantity      decimal.Decimal `json:"quantity" swaggertype:"string" example:"10"`
	TotalPrice    decimal.Decimal `json:"total_price" swaggertype:"string" example:"125.00"`
	Notes         string          `json:"notes" validate:"omitempty,max=500"`
}

// CreateProposalRequest entrada para registrar una propuesta manualmente.
type CreateProposalRequest struct {
	SupplierID   string              `json:"supplier_id" validate:"required,uuid"`
	DeliveryDays int                 `json:"delivery_days" validate:"min=0"`
	PaymentTerms string              `json:"payment_terms" validate:"omitempty,max=200"`
	ValidUntil   *time.Time          `json:"valid_until"`
	Freight      decimal.Decimal     `json:"freight" swaggertype:"string"`
	Notes        string              `json:"notes"`
	Items        []ProposalItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateProposalRequest reemplaza condiciones e ítems de una propuesta.
type UpdateProposalRequest struct {
	DeliveryDays *int                `json:"delivery_days" validate:"omitempty,min=0"`
	PaymentTerms *string             `json:"payment_terms" validate:"omitempty,max=200"`
	ValidUntil   *time.Time          `json:"valid_until"`
	Freight      *decimal.Decimal    `json:"freight" swaggertype:"string"`
	Notes        *string             `json:"notes"`
	Items        []ProposalItemInput `json:"items" validate:"omitempty,dive"`
}

// ProposalItemResponse línea de la propuesta.
type ProposalItemResponse struct {
	ID            string          `json:"id"`
	RequestItemID string          `json:"request_item_id"`
	UnitPrice     decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Quantity      decimal.Decimal `json:"quantity" swaggertype:"string"`
	TotalPrice    decimal.Decimal `json:"total_price" swaggertype:"string"`
	Notes         string          `json:"notes,omitempty"`
}

// ProposalResponse salida de una propuesta.
type ProposalResponse struct {
	ID           string                 `json:"id"`
	RequestID    string                 `json:"request_id"`
	SupplierID   string                 `json:"supplier_id"`
	SupplierName string                 `json:"supplier_name,omitempty"`
	Status       string                 `json:"status"`
	Source       string                 `json:"source"`
	DeliveryDays int                    `json:"delivery_days"`
	PaymentTerms string                 `json:"payment_terms"`
	ValidUntil   *time.Time             `json:"valid_until,omitempty"`
	Freight      decimal.Decimal        `json:"freight" swaggertype:"string"`
	Notes        string                 `json:"notes"`
	EmailID      string                 `json:"email_id,omitempty"`
	Total        decimal.Decimal        `json:"total" swaggertype:"string"`
	Items        []ProposalItemResponse `json:"items"`
	ReceivedAt   time.Time              `json:"received_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ProposalListResponse propuestas de una solicitud.
type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}
