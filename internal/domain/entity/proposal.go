package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una propuesta.
const (
	ProposalStatusReceived = "RECEIVED"
	ProposalStatusAccepted = "ACCEPTED"
	ProposalStatusRejected = "REJECTED"
)

// Origen de la propuesta.
const (
	ProposalSourceManual = "MANUAL"
	ProposalSourceEmail  = "EMAIL"
)

// Proposal respuesta con precios de un proveedor a una solicitud.
type Proposal struct {
	ID           string
	CompanyID    string
	RequestID    string
	SupplierID   string
	Status       string
	Source       string
	DeliveryDays int
	PaymentTerms string
	ValidUntil   *time.Time
	Freight      decimal.Decimal
	Notes        string
	EmailID      string // correo del que se extrajo, si Source = EMAIL
	Items        []ProposalItem
	ReceivedAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProposalItem precio cotizado para un ítem de la solicitud.
type ProposalItem struct {
	ID            string
	ProposalID    string
	RequestItemID string
	UnitPrice     decimal.Decimal
	Quantity      decimal.Decimal
	TotalPrice    decimal.Decimal
	Notes         string
}

// EffectiveTotal precio total del ítem: TotalPrice si viene informado,
// si no UnitPrice × Quantity.
func (i ProposalItem) EffectiveTotal() decimal.Decimal {
	if !i.TotalPrice.IsZero() {
		return i.TotalPrice
	}
	return i.UnitPrice.Mul(i.Quantity)
}

// Total suma de los ítems cotizados (sin flete).
func (p *Proposal) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.EffectiveTotal())
	}
	return total
}
