package entity

import "time"

// Product ítem del catálogo de compras. Los precios no viven aquí: vienen de las propuestas.
type Product struct {
	ID          string
	CompanyID   string
	CategoryID  string // vacío = sin categoría
	SKU         string // único por empresa
	Name        string
	Description string
	UnitMeasure string // UN, KG, CX...
	Status      string // active, inactive
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
