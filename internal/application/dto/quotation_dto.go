package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestItemInput línea solicitada.
type RequestItemInput struct {
	ProductID   string          `json:"product_id" validate:"omitempty,uuid"`
	Description string          `json:"description" validate:"required_without=ProductID,max=500"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string" example:"10"`
	UnitMeasure string          `json:"unit_measure" validate:"omitempty,max=10"`
}

// CreateQuotationRequest entrada para crear una solicitud de cotización (queda en DRAFT).
type CreateQuotationRequest struct {
	Title       string             `json:"title" validate:"required,min=1,max=200"`
	Description string             `json:"description"`
	Deadline    *time.Time         `json:"deadline"`
	Items       []RequestItemInput `json:"items" validate:"required,min=1,dive"`
	SupplierIDs []string           `json:"supplier_ids" validate:"omitempty,dive,uuid"`
}

// UpdateQuotationRequest reemplaza los datos de un borrador. Campos nil no cambian.
type UpdateQuotationRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description"`
	Deadline    *time.Time         `json:"deadline"`
	Items       []RequestItemInput `json:"items" validate:"omitempty,dive"`
	SupplierIDs []string           `json:"supplier_ids" validate:"omitempty,dive,uuid"`
}

// RequestItemResponse línea de la solicitud.
type RequestItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitMeasure string          `json:"unit_measure"`
	Position    int             `json:"position"`
}

// RequestSupplierResponse proveedor invitado y estado de su invitación.
type RequestSupplierResponse struct {
	SupplierID   string     `json:"supplier_id"`
	SupplierName string     `json:"supplier_name,omitempty"`
	Email        string     `json:"email,omitempty"`
	Status       string     `json:"status"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

// QuotationResponse salida de una solicitud de cotización.
type QuotationResponse struct {
	ID          string                    `json:"id"`
	CompanyID   string                    `json:"company_id"`
	Number      string                    `json:"number"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Status      string                    `json:"status"`
	Deadline    *time.Time                `json:"deadline,omitempty"`
	CreatedBy   string                    `json:"created_by"`
	Items       []RequestItemResponse     `json:"items"`
	Suppliers   []RequestSupplierResponse `json:"suppliers"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// QuotationListResponse lista paginada de solicitudes (sin ítems).
type QuotationListResponse struct {
	Items []QuotationResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// SendResult resultado del envío a un proveedor.
type SendResult struct {
	SupplierID string `json:"supplier_id"`
	Email      string `json:"email"`
	Sent       bool   `json:"sent"`
	Error      string `json:"error,omitempty"`
}

// SendQuotationResponse resultado del envío de la solicitud a los proveedores.
type SendQuotationResponse struct {
	Request QuotationResponse `json:"request"`
	Results []SendResult      `json:"results"`
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
}
