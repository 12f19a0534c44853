package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/purchasing"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalysisHandler mapa comparativo y recomendación de compra.
type AnalysisHandler struct {
	uc *purchasing.AnalysisUseCase
}

func NewAnalysisHandler(uc *purchasing.AnalysisUseCase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

// Analyze godoc
// @Summary      Analizar propuestas
// @Description  Compara precios por ítem, totales por proveedor y recomienda compra única o dividida.
// @Tags         analysis
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.AnalysisResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/analysis [get]
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	out, err := h.uc.Analyze(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Select godoc
// @Summary      Validar selección manual
// @Description  Valida que cada ítem apunte a un proveedor que lo cotizó y devuelve los totales resultantes.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string                true  "ID de la solicitud"
// @Param        body  body  dto.SelectionRequest  true  "Selección ítem → proveedor"
// @Success      200   {object}  dto.SelectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/analysis/selection [post]
func (h *AnalysisHandler) Select(c *fiber.Ctx) error {
	var in dto.SelectionRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Select(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar mapa comparativo
// @Tags         analysis
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     Bearer
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {file}  file
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotation-requests/{id}/analysis/export [get]
func (h *AnalysisHandler) Export(c *fiber.Ctx) error {
	content, name, err := h.uc.Export(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, content, name, xlsxContentType)
}

