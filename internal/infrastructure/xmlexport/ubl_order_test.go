package xmlexport

import (
	"context"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

func TestExportPurchaseOrderXML(t *testing.T) {
	doc := ports.PurchaseOrderDocument{
		Company:  &entity.Company{Name: "Acme", TaxID: "900123"},
		Supplier: &entity.Supplier{Name: "Andina", TaxID: "800197268", Email: "ventas@andina.test"},
		Request: &entity.QuotationRequest{Number: "SC-000001", Title: "Papelería",
			Items: []entity.RequestItem{{ID: "i1", UnitMeasure: "RESMA"}, {ID: "i2"}}},
		Order: &entity.PurchaseOrder{
			ID: "o1", Number: "OC-000001", Total: decimal.NewFromInt(290),
			CreatedAt: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
			Items: []entity.PurchaseOrderItem{
				{RequestItemID: "i1", Description: "Papel A4", Quantity: decimal.NewFromInt(10),
					UnitPrice: decimal.NewFromInt(9), TotalPrice: decimal.NewFromInt(90)},
				{RequestItemID: "i2", Description: "Toner", Quantity: decimal.NewFromInt(1),
					UnitPrice: decimal.NewFromInt(200), TotalPrice: decimal.NewFromInt(200)},
			},
		},
	}
	out, err := NewUBLOrderExporter().ExportPurchaseOrderXML(context.Background(), doc)
	require.NoError(t, err)

	parsed := etree.NewDocument()
	require.NoError(t, parsed.ReadFromBytes(out))
	root := parsed.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Order", root.Tag)
	assert.Equal(t, "OC-000001", root.FindElement("./cbc:ID").Text())
	assert.Equal(t, "2026-10-01", root.FindElement("./cbc:IssueDate").Text())
	assert.Equal(t, "SC-000001", root.FindElement("./cac:QuotationDocumentReference/cbc:ID").Text())
	assert.Equal(t, "Andina", root.FindElement("./cac:SellerSupplierParty/cac:Party/cac:PartyName/cbc:Name").Text())
	sellerID := root.FindElement("./cac:SellerSupplierParty/cac:Party/cac:PartyTaxScheme/cbc:CompanyID")
	require.NotNil(t, sellerID)
	assert.Equal(t, "4", sellerID.SelectAttrValue("schemeID", ""))
	buyerID := root.FindElement("./cac:BuyerCustomerParty/cac:Party/cac:PartyTaxScheme/cbc:CompanyID")
	assert.Equal(t, "", buyerID.SelectAttrValue("schemeID", ""))
	assert.Equal(t, "290.00", root.FindElement("./cac:AnticipatedMonetaryTotal/cbc:PayableAmount").Text())

	lines := root.FindElements("./cac:OrderLine")
	require.Len(t, lines, 2)
	qty := lines[0].FindElement("./cac:LineItem/cbc:Quantity")
	assert.Equal(t, "RESMA", qty.SelectAttrValue("unitCode", ""))
	assert.Equal(t, "UN", lines[1].FindElement("./cac:LineItem/cbc:Quantity").SelectAttrValue("unitCode", ""))
}

func TestExportPurchaseOrderXML_Incomplete(t *testing.T) {
	_, err := NewUBLOrderExporter().ExportPurchaseOrderXML(context.Background(), ports.PurchaseOrderDocument{})
	assert.Error(t, err)
}
