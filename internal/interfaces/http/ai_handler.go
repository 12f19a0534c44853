package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/usecase"
)

// AIHandler saldo y recarga de créditos IA de la empresa.
type AIHandler struct {
	uc *usecase.AIUseCase
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *usecase.AIUseCase) *AIHandler {
	return &AIHandler{uc: uc}
}

// Credits godoc
// @Summary      Saldo de créditos IA
// @Description  Saldo actual y últimos movimientos (consumos y recargas).
// @Tags         ai
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AICreditsResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/ai/credits [get]
func (h *AIHandler) Credits(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Credits(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddCredits godoc
// @Summary      Recargar créditos IA
// @Tags         ai
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCreditsRequest  true  "Créditos a sumar"
// @Success      200   {object}  dto.AICreditsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/ai/credits [post]
func (h *AIHandler) AddCredits(c *fiber.Ctx) error {
	var in dto.AddCreditsRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddCredits(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
