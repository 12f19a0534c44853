package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedPriceDTO línea de precio detectada en un correo.
type ExtractedPriceDTO struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string"`
	TotalPrice  decimal.Decimal `json:"total_price" swaggertype:"string"`
}

// EmailResponse salida de un correo del buzón de compras.
type EmailResponse struct {
	ID              string              `json:"id"`
	MessageID       string              `json:"message_id"`
	FromAddress     string              `json:"from_address"`
	FromName        string              `json:"from_name"`
	Subject         string              `json:"subject"`
	Body            string              `json:"body,omitempty"`
	ReceivedAt      time.Time           `json:"received_at"`
	Status          string              `json:"status"`
	RequestID       string              `json:"request_id,omitempty"`
	SupplierID      string              `json:"supplier_id,omitempty"`
	ProposalID      string              `json:"proposal_id,omitempty"`
	Category        string              `json:"category,omitempty"`
	Confidence      float64             `json:"confidence"`
	Reasoning       string              `json:"reasoning,omitempty"`
	ExtractedItems  []ExtractedPriceDTO `json:"extracted_items,omitempty"`
	ProcessingError string              `json:"processing_error,omitempty"`
}

// EmailListResponse lista paginada de correos.
type EmailListResponse struct {
	Items []EmailResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// SyncResponse resultado de una sincronización del buzón.
type SyncResponse struct {
	Fetched    int `json:"fetched"`
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Matched    int `json:"matched"`
}

// ConvertEmailRequest datos opcionales para convertir un correo en propuesta.
// Si se omiten, se usan la solicitud y el proveedor detectados.
type ConvertEmailRequest struct {
	RequestID  string `json:"request_id" validate:"omitempty,uuid"`
	SupplierID string `json:"supplier_id" validate:"omitempty,uuid"`
}
