package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/purchasing"
)

// ProposalHandler propuestas de proveedores, anidadas bajo la solicitud.
type ProposalHandler struct {
	uc *purchasing.ProposalUseCase
}

func NewProposalHandler(uc *purchasing.ProposalUseCase) *ProposalHandler {
	return &ProposalHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar propuesta manual
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string                     true  "ID de la solicitud"
// @Param        body  body  dto.CreateProposalRequest  true  "Propuesta"
// @Success      201   {object}  dto.ProposalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/proposals [post]
func (h *ProposalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProposalRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Propuestas de la solicitud
// @Tags         proposals
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ProposalListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/proposals [get]
func (h *ProposalHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener propuesta
// @Tags         proposals
// @Produce      json
// @Security     Bearer
// @Param        id           path  string  true  "ID de la solicitud"
// @Param        proposal_id  path  string  true  "ID de la propuesta"
// @Success      200  {object}  dto.ProposalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/proposals/{proposal_id} [get]
func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("proposal_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Corregir propuesta
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id           path  string                     true  "ID de la solicitud"
// @Param        proposal_id  path  string                     true  "ID de la propuesta"
// @Param        body         body  dto.UpdateProposalRequest  true  "Cambios"
// @Success      200  {object}  dto.ProposalResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/proposals/{proposal_id} [put]
func (h *ProposalHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProposalRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("proposal_id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar propuesta
// @Tags         proposals
// @Security     Bearer
// @Param        id           path  string  true  "ID de la solicitud"
// @Param        proposal_id  path  string  true  "ID de la propuesta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/proposals/{proposal_id} [delete]
func (h *ProposalHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("proposal_id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
