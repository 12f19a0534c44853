package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	OrderStatusIssued    = "ISSUED"
	OrderStatusSent      = "SENT"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusReceived  = "RECEIVED"
	OrderStatusCancelled = "CANCELLED"
)

// PurchaseOrder orden emitida a un proveedor a partir del análisis de una solicitud.
type PurchaseOrder struct {
	ID         string
	CompanyID  string
	Number     string // OC-000001, correlativo por empresa
	RequestID  string
	ProposalID string
	SupplierID string
	Status     string
	Total      decimal.Decimal
	Notes      string
	CreatedBy  string
	Items      []PurchaseOrderItem
	SentAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderItem línea de la orden.
type PurchaseOrderItem struct {
	ID             string
	OrderID        string
	RequestItemID  string
	ProposalItemID string
	ProductID      string
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TotalPrice     decimal.Decimal
}

var orderTransitions = map[string][]string{
	OrderStatusIssued:    {OrderStatusSent, OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusSent:      {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusReceived, OrderStatusCancelled},
}

// CanTransitionTo informa si el cambio de estado es válido.
func (o *PurchaseOrder) CanTransitionTo(next string) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}
