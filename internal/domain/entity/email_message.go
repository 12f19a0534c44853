package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de procesamiento de un correo entrante.
const (
	EmailStatusPending    = "PENDING"
	EmailStatusClassified = "CLASSIFIED"
	EmailStatusProcessed  = "PROCESSED"
	EmailStatusIgnored    = "IGNORED"
	EmailStatusFailed     = "FAILED"
)

// Categorías de clasificación.
const (
	EmailCategoryProposal = "PROPOSAL"
	EmailCategoryQuestion = "QUESTION"
	EmailCategoryOther    = "OTHER"
)

// EmailMessage correo recibido en el buzón de compras.
type EmailMessage struct {
	ID          string
	CompanyID   string
	MessageID   string // cabecera Message-ID, única por empresa
	FromAddress string
	FromName    string
	Subject     string
	Body        string
	ReceivedAt  time.Time
	Status      string

	// Asociaciones detectadas (por coincidencia o por la IA)
	RequestID  string
	SupplierID string
	ProposalID string

	// Resultado de la clasificación
	Category        string
	Confidence      float64
	Reasoning       string
	ExtractedItems  []ExtractedPrice
	DeliveryDays    int
	PaymentTerms    string
	Freight         decimal.Decimal
	ProcessingError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExtractedPrice línea de precio que la IA encontró en el cuerpo del correo.
type ExtractedPrice struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}
