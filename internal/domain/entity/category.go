package entity

import "time"

// Category agrupa productos y orienta a qué proveedores invitar.
type Category struct {
	ID        string
	CompanyID string
	ParentID  string // vacío si es raíz
	Name      string
	Code      string // único por empresa
	Status    string // active, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
