// Package xmlexport exporta órdenes de compra como UBL 2.1 Order para integrar con el ERP.
package xmlexport

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/pkg/nit"
)

var _ ports.PurchaseOrderXMLExporter = (*UBLOrderExporter)(nil)

// Namespaces UBL 2.1.
const (
	NsOrder = "urn:oasis:names:specification:ubl:schema:xsd:Order-2"
	NsCac   = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc   = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	currency = "COP"
)

// UBLOrderExporter construye el XML con etree.
type UBLOrderExporter struct{}

// NewUBLOrderExporter crea el exportador.
func NewUBLOrderExporter() *UBLOrderExporter { return &UBLOrderExporter{} }

// ExportPurchaseOrderXML genera el documento <Order> con comprador, proveedor, líneas y total.
func (e *UBLOrderExporter) ExportPurchaseOrderXML(_ context.Context, d ports.PurchaseOrderDocument) ([]byte, error) {
	if d.Order == nil || d.Company == nil || d.Supplier == nil {
		return nil, fmt.Errorf("xml: faltan orden, empresa o proveedor")
	}
	o := d.Order

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("Order")
	root.CreateAttr("xmlns", NsOrder)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	root.CreateElement("cbc:UBLVersionID").SetText("2.1")
	root.CreateElement("cbc:ID").SetText(o.Number)
	root.CreateElement("cbc:UUID").SetText(o.ID)
	root.CreateElement("cbc:IssueDate").SetText(o.CreatedAt.Format("2006-01-02"))
	root.CreateElement("cbc:IssueTime").SetText(o.CreatedAt.Format("15:04:05-07:00"))
	if o.Notes != "" {
		root.CreateElement("cbc:Note").SetText(o.Notes)
	}
	root.CreateElement("cbc:DocumentCurrencyCode").SetText(currency)
	if d.Request != nil {
		ref := root.CreateElement("cac:QuotationDocumentReference")
		ref.CreateElement("cbc:ID").SetText(d.Request.Number)
		if d.Request.Title != "" {
			ref.CreateElement("cbc:DocumentDescription").SetText(d.Request.Title)
		}
	}

	party(root.CreateElement("cac:BuyerCustomerParty"), d.Company.Name, d.Company.TaxID, d.Company.Email, d.Company.Phone)
	party(root.CreateElement("cac:SellerSupplierParty"), d.Supplier.Name, d.Supplier.TaxID, d.Supplier.Email, d.Supplier.Phone)

	total := root.CreateElement("cac:AnticipatedMonetaryTotal")
	amount(total.CreateElement("cbc:LineExtensionAmount"), o.Total)
	amount(total.CreateElement("cbc:PayableAmount"), o.Total)

	for i, it := range o.Items {
		orderLine(root, i+1, it, unitCode(d.Request, it.RequestItemID))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xml: serializar: %w", err)
	}
	return out, nil
}

func party(el *etree.Element, name, taxID, email, phone string) {
	p := el.CreateElement("cac:Party")
	p.CreateElement("cac:PartyName").CreateElement("cbc:Name").SetText(name)
	if taxID != "" {
		tax := p.CreateElement("cac:PartyTaxScheme")
		tax.CreateElement("cbc:RegistrationName").SetText(name)
		id := tax.CreateElement("cbc:CompanyID")
		id.CreateAttr("schemeAgencyID", "195")
		if dv := nit.SchemeDigit(taxID); dv != "" {
			id.CreateAttr("schemeID", dv)
		}
		id.SetText(taxID)
	}
	if email != "" || phone != "" {
		c := p.CreateElement("cac:Contact")
		if phone != "" {
			c.CreateElement("cbc:Telephone").SetText(phone)
		}
		if email != "" {
			c.CreateElement("cbc:ElectronicMail").SetText(email)
		}
	}
}

func orderLine(root *etree.Element, n int, it entity.PurchaseOrderItem, unit string) {
	li := root.CreateElement("cac:OrderLine").CreateElement("cac:LineItem")
	li.CreateElement("cbc:ID").SetText(strconv.Itoa(n))
	q := li.CreateElement("cbc:Quantity")
	q.CreateAttr("unitCode", unit)
	q.SetText(it.Quantity.String())
	amount(li.CreateElement("cbc:LineExtensionAmount"), it.TotalPrice)

	price := li.CreateElement("cac:Price")
	amount(price.CreateElement("cbc:PriceAmount"), it.UnitPrice)

	item := li.CreateElement("cac:Item")
	item.CreateElement("cbc:Description").SetText(it.Description)
	if it.ProductID != "" {
		item.CreateElement("cac:SellersItemIdentification").CreateElement("cbc:ID").SetText(it.ProductID)
	}
}

func amount(el *etree.Element, v decimal.Decimal) {
	el.CreateAttr("currencyID", currency)
	el.SetText(v.StringFixed(2))
}

// unitCode unidad del ítem en la solicitud; UN (C62 en UN/ECE) cuando no se informó.
func unitCode(req *entity.QuotationRequest, itemID string) string {
	if req != nil {
		for _, it := range req.Items {
			if it.ID == itemID && it.UnitMeasure != "" {
				return it.UnitMeasure
			}
		}
	}
	return "UN"
}
