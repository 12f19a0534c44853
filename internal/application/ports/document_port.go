package ports

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/purchasing"
)

// PurchaseOrderDocument datos necesarios para representar una orden de compra.
type PurchaseOrderDocument struct {
	Order    *entity.PurchaseOrder
	Company  *entity.Company
	Supplier *entity.Supplier
	Request  *entity.QuotationRequest
}

// PurchaseOrderPDFGenerator genera la representación impresa de la orden.
type PurchaseOrderPDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, doc PurchaseOrderDocument) ([]byte, error)
}

// PurchaseOrderXMLExporter exporta la orden en XML para integrar con el ERP.
type PurchaseOrderXMLExporter interface {
	ExportPurchaseOrderXML(ctx context.Context, doc PurchaseOrderDocument) ([]byte, error)
}

// AnalysisReport datos del mapa comparativo.
type AnalysisReport struct {
	Company  *entity.Company
	Request  *entity.QuotationRequest
	Analysis purchasing.Analysis
}

// AnalysisSpreadsheetGenerator genera el mapa comparativo en XLSX.
type AnalysisSpreadsheetGenerator interface {
	GenerateAnalysisXLSX(ctx context.Context, report AnalysisReport) ([]byte, error)
}
