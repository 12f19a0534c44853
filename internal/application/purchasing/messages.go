package purchasing

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// quotationEmail arma el correo de la solicitud. El número va en el asunto para que
// la respuesta del proveedor se pueda asociar a la solicitud.
func quotationEmail(company *entity.Company, req *entity.QuotationRequest, s *entity.Supplier) ports.OutboundEmail {
	var b strings.Builder
	greeting := s.ContactName
	if greeting == "" {
		greeting = s.Name
	}
	fmt.Fprintf(&b, "Estimado(a) %s,\n\n", greeting)
	fmt.Fprintf(&b, "%s solicita su cotización para los siguientes ítems (solicitud %s):\n\n", company.Name, req.Number)
	for _, it := range req.Items {
		fmt.Fprintf(&b, "%d. %s - Cantidad: %s %s\n", it.Position, it.Description, it.Quantity.String(), it.UnitMeasure)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "\nObservaciones: %s\n", req.Description)
	}
	if req.Deadline != nil {
		fmt.Fprintf(&b, "\nFecha límite de respuesta: %s\n", req.Deadline.Format("02/01/2006"))
	}
	fmt.Fprintf(&b, "\nPor favor responda este correo conservando el número %s en el asunto e indique, "+
		"para cada ítem, precio unitario y precio total, además del plazo de entrega y las condiciones de pago.\n", req.Number)
	fmt.Fprintf(&b, "\nAtentamente,\n%s\n", company.Name)

	return ports.OutboundEmail{
		To:       []string{s.Email},
		ReplyTo:  company.Email,
		Subject:  fmt.Sprintf("[%s] Solicitud de cotización - %s", req.Number, req.Title),
		TextBody: b.String(),
	}
}

// purchaseOrderEmail arma el correo de envío de una orden con el PDF adjunto.
func purchaseOrderEmail(company *entity.Company, order *entity.PurchaseOrder, s *entity.Supplier, pdf []byte) ports.OutboundEmail {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimado(a) %s,\n\n", s.Name)
	fmt.Fprintf(&b, "Adjuntamos la orden de compra %s por un total de %s.\n", order.Number, order.Total.StringFixed(2))
	fmt.Fprintf(&b, "Le agradecemos confirmar la recepción y la fecha estimada de entrega.\n\nAtentamente,\n%s\n", company.Name)

	return ports.OutboundEmail{
		To:       []string{s.Email},
		ReplyTo:  company.Email,
		Subject:  fmt.Sprintf("[%s] Orden de compra - %s", order.Number, company.Name),
		TextBody: b.String(),
		Attachments: []ports.Attachment{{
			Filename:    order.Number + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
}
