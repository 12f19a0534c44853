package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/purchasing"
)

// QuotationHandler solicitudes de cotización (RFQ): CRUD, envío y cancelación.
type QuotationHandler struct {
	uc *purchasing.QuotationUseCase
}

func NewQuotationHandler(uc *purchasing.QuotationUseCase) *QuotationHandler {
	return &QuotationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de cotización
// @Description  Crea la solicitud en BORRADOR con sus ítems y proveedores invitados.
// @Tags         quotation-requests
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.CreateQuotationRequest  true  "Solicitud"
// @Success      201   {object}  dto.QuotationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/quotation-requests [post]
func (h *QuotationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuotationRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener solicitud de cotización
// @Tags         quotation-requests
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.QuotationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id} [get]
func (h *QuotationHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar solicitudes de cotización
// @Tags         quotation-requests
// @Produce      json
// @Security     Bearer
// @Param        status  query  string  false  "DRAFT | SENT | IN_ANALYSIS | COMPLETED | CANCELLED"
// @Param        limit   query  int     false  "Límite (máx. 100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.QuotationListResponse
// @Router       /api/quotation-requests [get]
func (h *QuotationHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar solicitud en borrador
// @Tags         quotation-requests
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string                      true  "ID"
// @Param        body  body  dto.UpdateQuotationRequest  true  "Cambios"
// @Success      200   {object}  dto.QuotationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id} [put]
func (h *QuotationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateQuotationRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar solicitud en borrador
// @Tags         quotation-requests
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id} [delete]
func (h *QuotationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Send godoc
// @Summary      Enviar solicitud a proveedores
// @Description  Envía el correo de cotización a cada proveedor invitado. Devuelve el resultado por proveedor.
// @Tags         quotation-requests
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.SendQuotationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/send [post]
func (h *QuotationHandler) Send(c *fiber.Ctx) error {
	out, err := h.uc.Send(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar solicitud
// @Tags         quotation-requests
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.QuotationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/cancel [post]
func (h *QuotationHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
