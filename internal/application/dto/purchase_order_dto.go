package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de generación de órdenes.
const (
	OrderModeOptimized = "OPTIMIZED"
	OrderModeSingle    = "SINGLE"
	OrderModeCustom    = "CUSTOM"
)

// GenerateOrdersRequest genera las órdenes de compra de una solicitud.
// SINGLE usa SupplierID (o el mejor proveedor único si está vacío); CUSTOM usa Selections.
type GenerateOrdersRequest struct {
	Mode       string          `json:"mode" validate:"required,oneof=OPTIMIZED SINGLE CUSTOM"`
	SupplierID string          `json:"supplier_id" validate:"omitempty,uuid"`
	Selections []ItemSelection `json:"selections" validate:"omitempty,dive"`
	Notes      string          `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateOrderStatusRequest cambio de estado de una orden.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SENT CONFIRMED RECEIVED CANCELLED"`
}

// PurchaseOrderItemResponse línea de la orden.
type PurchaseOrderItemResponse struct {
	ID            string          `json:"id"`
	RequestItemID string          `json:"request_item_id"`
	ProductID     string          `json:"product_id,omitempty"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitPrice     decimal.Decimal `json:"unit_price" swaggertype:"string"`
	TotalPrice    decimal.Decimal `json:"total_price" swaggertype:"string"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID           string                      `json:"id"`
	Number       string                      `json:"number"`
	RequestID    string                      `json:"request_id"`
	ProposalID   string                      `json:"proposal_id"`
	SupplierID   string                      `json:"supplier_id"`
	SupplierName string                      `json:"supplier_name,omitempty"`
	Status       string                      `json:"status"`
	Total        decimal.Decimal             `json:"total" swaggertype:"string"`
	Notes        string                      `json:"notes"`
	CreatedBy    string                      `json:"created_by"`
	Items        []PurchaseOrderItemResponse `json:"items,omitempty"`
	SentAt       *time.Time                  `json:"sent_at,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// PurchaseOrderListResponse lista paginada de órdenes.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// GenerateOrdersResponse órdenes emitidas para la solicitud.
type GenerateOrdersResponse struct {
	RequestID string                  `json:"request_id"`
	Mode      string                  `json:"mode"`
	Orders    []PurchaseOrderResponse `json:"orders"`
	Total     decimal.Decimal         `json:"total" swaggertype:"string"`
	// UnorderedItemIDs ítems de la solicitud que no quedaron en ninguna orden
	// (nadie los cotizó o el proveedor único elegido no los cotizó).
	UnorderedItemIDs []string `json:"unordered_item_ids"`
}
