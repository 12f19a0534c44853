package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmailClassificationDTO respuesta estructurada del LLM para un correo de proveedor.
type EmailClassificationDTO struct {
	Category       string              `json:"category"`
	RequestNumber  string              `json:"request_number"`
	Confidence     float64             `json:"confidence"`
	Reasoning      string              `json:"reasoning"`
	DeliveryDays   int                 `json:"delivery_days"`
	PaymentTerms   string              `json:"payment_terms"`
	Freight        decimal.Decimal     `json:"freight" swaggertype:"string"`
	ExtractedItems []ExtractedPriceDTO `json:"items"`
}

// AIUsageDTO movimiento de créditos.
type AIUsageDTO struct {
	Operation string    `json:"operation"`
	Credits   int       `json:"credits"`
	UserID    string    `json:"user_id,omitempty"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AICreditsResponse saldo y consumo reciente.
type AICreditsResponse struct {
	CompanyID   string       `json:"company_id"`
	Balance     int          `json:"balance"`
	RecentUsage []AIUsageDTO `json:"recent_usage"`
}

// AddCreditsRequest recarga de créditos (solo admin).
type AddCreditsRequest struct {
	Credits int    `json:"credits" validate:"required,min=1,max=100000"`
	Note    string `json:"note" validate:"omitempty,max=200"`
}
