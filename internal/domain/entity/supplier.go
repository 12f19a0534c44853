package entity

import "time"

// Supplier proveedor invitado a cotizar.
type Supplier struct {
	ID          string
	CompanyID   string
	Name        string
	TaxID       string // único por empresa
	Email       string // destino de las solicitudes y remitente esperado de las propuestas
	Phone       string
	ContactName string
	Status      string // active, inactive
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
