package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/purchasing"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// PurchaseOrderHandler emisión, consulta, documentos y envío de órdenes de compra.
type PurchaseOrderHandler struct {
	uc *purchasing.PurchaseOrderUseCase
}

func NewPurchaseOrderHandler(uc *purchasing.PurchaseOrderUseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// Generate godoc
// @Summary      Generar órdenes de compra
// @Description  Emite una orden por proveedor según la recomendación (OPTIMIZED), un proveedor único (SINGLE) o una selección manual (CUSTOM).
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string                     true  "ID de la solicitud"
// @Param        body  body  dto.GenerateOrdersRequest  true  "Modo de adjudicación"
// @Success      201   {object}  dto.GenerateOrdersResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/purchase-orders [post]
func (h *PurchaseOrderHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateOrdersRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Generate(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchase-orders
// @Produce      json
// @Security     Bearer
// @Param        status       query  string  false  "ISSUED | SENT | CONFIRMED | RECEIVED | CANCELLED"
// @Param        request_id   query  string  false  "Filtrar por solicitud"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Param        limit        query  int     false  "Límite (máx. 100)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.PurchaseOrderListResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	f := repository.PurchaseOrderFilter{
		Status:     c.Query("status"),
		RequestID:  c.Query("request_id"),
		SupplierID: c.Query("supplier_id"),
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), f, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener orden de compra
// @Tags         purchase-orders
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la orden
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string                        true  "ID"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/status [patch]
func (h *PurchaseOrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descargar PDF de la orden
// @Tags         purchase-orders
// @Produce      application/pdf
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/pdf [get]
func (h *PurchaseOrderHandler) PDF(c *fiber.Ctx) error {
	content, name, err := h.uc.PDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, content, name, "application/pdf")
}

// XML godoc
// @Summary      Descargar XML UBL de la orden
// @Tags         purchase-orders
// @Produce      application/xml
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/xml [get]
func (h *PurchaseOrderHandler) XML(c *fiber.Ctx) error {
	content, name, err := h.uc.XML(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, content, name, fiber.MIMEApplicationXMLCharsetUTF8)
}

// Send godoc
// @Summary      Enviar orden al proveedor
// @Description  Envía la orden por correo con el PDF adjunto y la marca como SENT.
// @Tags         purchase-orders
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/send [post]
func (h *PurchaseOrderHandler) Send(c *fiber.Ctx) error {
	out, err := h.uc.Send(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
