package dto

import "time"

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string `json:"sku" validate:"required,min=1,max=100"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id" validate:"omitempty,uuid"`
	UnitMeasure string `json:"unit_measure" validate:"omitempty,max=10"`
}

// UpdateProductRequest entrada para actualizar un producto.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	UnitMeasure *string `json:"unit_measure" validate:"omitempty,max=10"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	CategoryID  string    `json:"category_id,omitempty"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnitMeasure string    `json:"unit_measure"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
