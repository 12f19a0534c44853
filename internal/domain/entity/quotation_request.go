package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de cotización.
const (
	RequestStatusDraft      = "DRAFT"
	RequestStatusSent       = "SENT"
	RequestStatusInAnalysis = "IN_ANALYSIS"
	RequestStatusCompleted  = "COMPLETED"
	RequestStatusCancelled  = "CANCELLED"
)

// Estados del envío a cada proveedor invitado.
const (
	InviteStatusPending   = "PENDING"
	InviteStatusSent      = "SENT"
	InviteStatusFailed    = "FAILED"
	InviteStatusResponded = "RESPONDED"
)

// QuotationRequest solicitud de cotización (RFQ) enviada a varios proveedores.
type QuotationRequest struct {
	ID          string
	CompanyID   string
	Number      string // SC-000001, correlativo por empresa
	Title       string
	Description string
	Status      string
	Deadline    *time.Time
	CreatedBy   string
	Items       []RequestItem
	Suppliers   []RequestSupplier
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RequestItem línea solicitada. Position fija el orden de la solicitud.
type RequestItem struct {
	ID          string
	RequestID   string
	ProductID   string // opcional: ítems libres no están en catálogo
	Description string
	Quantity    decimal.Decimal
	UnitMeasure string
	Position    int
}

// RequestSupplier proveedor invitado a la solicitud.
type RequestSupplier struct {
	RequestID  string
	SupplierID string
	Status     string
	SentAt     *time.Time
	LastError  string
}

var requestTransitions = map[string][]string{
	RequestStatusDraft:      {RequestStatusSent, RequestStatusCancelled},
	RequestStatusSent:       {RequestStatusInAnalysis, RequestStatusCancelled},
	RequestStatusInAnalysis: {RequestStatusCompleted, RequestStatusCancelled},
}

// CanTransitionTo informa si el cambio de estado es válido.
func (r *QuotationRequest) CanTransitionTo(next string) bool {
	for _, s := range requestTransitions[r.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsEditable solo los borradores admiten cambios de ítems y proveedores.
func (r *QuotationRequest) IsEditable() bool {
	return r.Status == RequestStatusDraft
}

// AcceptsProposals informa si aún se pueden registrar propuestas.
func (r *QuotationRequest) AcceptsProposals() bool {
	return r.Status == RequestStatusSent || r.Status == RequestStatusInAnalysis
}

// HasSupplier informa si el proveedor fue invitado.
func (r *QuotationRequest) HasSupplier(supplierID string) bool {
	for _, s := range r.Suppliers {
		if s.SupplierID == supplierID {
			return true
		}
	}
	return false
}

// Item busca un ítem por ID.
func (r *QuotationRequest) Item(id string) (RequestItem, bool) {
	for _, it := range r.Items {
		if it.ID == id {
			return it, true
		}
	}
	return RequestItem{}, false
}
