package dto

import "github.com/shopspring/decimal"

// QuoteDTO precio de un proveedor para un ítem.
type QuoteDTO struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	ProposalID   string          `json:"proposal_id"`
	UnitPrice    decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Quantity     decimal.Decimal `json:"quantity" swaggertype:"string"`
	TotalPrice   decimal.Decimal `json:"total_price" swaggertype:"string"`
}

// ItemAnalysisDTO comparación de precios de un ítem.
type ItemAnalysisDTO struct {
	RequestItemID string          `json:"request_item_id"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity" swaggertype:"string"`
	Best          *QuoteDTO       `json:"best,omitempty"`
	Quotes        []QuoteDTO      `json:"quotes"`
}

// SupplierTotalDTO compra completa a un proveedor.
type SupplierTotalDTO struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	ProposalID   string          `json:"proposal_id"`
	Total        decimal.Decimal `json:"total" swaggertype:"string"`
	ItemsQuoted  int             `json:"items_quoted"`
	ItemsWon     int             `json:"items_won"`
	CoversAll    bool            `json:"covers_all"`
}

// AllocationDTO ítems asignados a un proveedor.
type AllocationDTO struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	ProposalID   string          `json:"proposal_id"`
	Items        []string        `json:"request_item_ids"`
	Subtotal     decimal.Decimal `json:"subtotal" swaggertype:"string"`
}

// AnalysisResponse análisis optimizado de una solicitud.
type AnalysisResponse struct {
	RequestID         string             `json:"request_id"`
	RequestNumber     string             `json:"request_number"`
	ProposalCount     int                `json:"proposal_count"`
	Items             []ItemAnalysisDTO  `json:"items"`
	UnquotedItems     []string           `json:"unquoted_items"`
	OptimalTotal      decimal.Decimal    `json:"optimal_total" swaggertype:"string"`
	SupplierTotals    []SupplierTotalDTO `json:"supplier_totals"`
	BestSingle        *SupplierTotalDTO  `json:"best_single,omitempty"`
	ComparableOptimal decimal.Decimal    `json:"comparable_optimal" swaggertype:"string"`
	Savings           decimal.Decimal    `json:"savings" swaggertype:"string"`
	SavingsPct        decimal.Decimal    `json:"savings_pct" swaggertype:"string"`
	Allocations       []AllocationDTO    `json:"allocations"`
	Recommendation    string             `json:"recommendation"`
}

// ItemSelection asignación manual de un ítem a un proveedor.
type ItemSelection struct {
	RequestItemID string `json:"request_item_id" validate:"required"`
	SupplierID    string `json:"supplier_id" validate:"required"`
}

// SelectionRequest selección manual (modo personalizado).
type SelectionRequest struct {
	Selections []ItemSelection `json:"selections" validate:"dive"`
}

// SelectedItemDTO ítem dentro de la selección.
type SelectedItemDTO struct {
	RequestItemID string          `json:"request_item_id"`
	Description   string          `json:"description"`
	Chosen        QuoteDTO        `json:"chosen"`
	Optimal       QuoteDTO        `json:"optimal"`
	Overridden    bool            `json:"overridden"`
	Difference    decimal.Decimal `json:"difference" swaggertype:"string"`
}

// SelectionResponse plan resultante de una selección manual.
type SelectionResponse struct {
	RequestID       string            `json:"request_id"`
	Items           []SelectedItemDTO `json:"items"`
	Total           decimal.Decimal   `json:"total" swaggertype:"string"`
	OptimalTotal    decimal.Decimal   `json:"optimal_total" swaggertype:"string"`
	ExtraCost       decimal.Decimal   `json:"extra_cost" swaggertype:"string"`
	SavingsVsSingle decimal.Decimal   `json:"savings_vs_single" swaggertype:"string"`
	Overrides       int               `json:"overrides"`
	Allocations     []AllocationDTO   `json:"allocations"`
}
