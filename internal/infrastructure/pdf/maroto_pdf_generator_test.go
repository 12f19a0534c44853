package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "950", formatMoney("950"))
	assert.Equal(t, "25.000", formatMoney("25000"))
	assert.Equal(t, "1.000.000", formatMoney("1000000"))
	assert.Equal(t, "-1.500", formatMoney("-1500"))
}

func TestGeneratePurchaseOrderPDF(t *testing.T) {
	doc := ports.PurchaseOrderDocument{
		Company:  &entity.Company{Name: "Acme", TaxID: "900123"},
		Supplier: &entity.Supplier{Name: "Andina", Email: "ventas@andina.test"},
		Request: &entity.QuotationRequest{Number: "SC-000001", Title: "Papelería",
			Items: []entity.RequestItem{{ID: "i1", UnitMeasure: "RESMA"}}},
		Order: &entity.PurchaseOrder{
			Number: "OC-000001", Total: decimal.NewFromInt(120000), Notes: "Entregar en bodega",
			CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			Items: []entity.PurchaseOrderItem{{
				RequestItemID: "i1", Description: "Papel A4", Quantity: decimal.NewFromInt(10),
				UnitPrice: decimal.NewFromInt(12000), TotalPrice: decimal.NewFromInt(120000),
			}},
		},
	}
	out, err := NewMarotoPDFGenerator().GeneratePurchaseOrderPDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewMarotoPDFGenerator().GeneratePurchaseOrderPDF(context.Background(), ports.PurchaseOrderDocument{})
	assert.Error(t, err)
}
