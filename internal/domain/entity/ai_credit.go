package entity

import "time"

// Operaciones sobre el saldo de créditos de IA.
const (
	AIOperationEmailClassification = "email_classification"
	AIOperationTopUp               = "top_up" // recarga
	AIOperationRefund              = "refund" // devolución por fallo del proveedor de IA
)

// CreditsPerClassification costo de clasificar un correo.
const CreditsPerClassification = 1

// AICreditBalance saldo de créditos de IA de una empresa.
type AICreditBalance struct {
	CompanyID string
	Balance   int
	UpdatedAt time.Time
}

// AIUsage movimiento de créditos: consumo, recarga o devolución. Credits siempre positivo;
// Operation indica el sentido.
type AIUsage struct {
	ID        string
	CompanyID string
	UserID    string
	Operation string
	Credits   int
	Reference string
	CreatedAt time.Time
}
