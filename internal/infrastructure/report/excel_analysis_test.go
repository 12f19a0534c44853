package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/purchasing"
)

func quote(item, price string) purchasing.Quote {
	p := decimal.RequireFromString(price)
	return purchasing.Quote{RequestItemID: item, UnitPrice: p, Quantity: decimal.NewFromInt(1), TotalPrice: p}
}

func TestGenerateAnalysisXLSX(t *testing.T) {
	items := []purchasing.ItemRef{
		{RequestItemID: "i1", Description: "Papel A4", Quantity: decimal.NewFromInt(1)},
		{RequestItemID: "i2", Description: "Toner", Quantity: decimal.NewFromInt(1)},
	}
	analysis := purchasing.Analyze(items, []purchasing.ProposalQuotes{
		{ProposalID: "pa", SupplierID: "a", SupplierName: "Andina", Quotes: []purchasing.Quote{quote("i1", "100"), quote("i2", "200")}},
		{ProposalID: "pb", SupplierID: "b", SupplierName: "Bolívar", Quotes: []purchasing.Quote{quote("i1", "90"), quote("i2", "250")}},
	})

	out, err := NewExcelGenerator().GenerateAnalysisXLSX(context.Background(), ports.AnalysisReport{
		Company:  &entity.Company{Name: "Acme"},
		Request:  &entity.QuotationRequest{Number: "SC-000001", Title: "Papelería"},
		Analysis: analysis,
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetMap, sheetSummary}, f.GetSheetList())
	v, _ := f.GetCellValue(sheetMap, "A4")
	assert.Equal(t, "Papel A4", v)
	v, _ = f.GetCellValue(sheetMap, "C3")
	assert.Equal(t, "Andina (unitario)", v)
	// mejor proveedor del papel: Bolívar
	v, _ = f.GetCellValue(sheetMap, "G4")
	assert.Equal(t, "Bolívar", v)
	v, _ = f.GetCellValue(sheetSummary, "B1")
	assert.Equal(t, "SC-000001", v)
}

func TestGenerateAnalysisXLSX_NoRequest(t *testing.T) {
	_, err := NewExcelGenerator().GenerateAnalysisXLSX(context.Background(), ports.AnalysisReport{})
	assert.Error(t, err)
}
