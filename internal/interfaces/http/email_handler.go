package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/email"
)

// EmailHandler buzón de cotizaciones: sincronización IMAP, clasificación IA y conversión a propuesta.
type EmailHandler struct {
	uc        *email.UseCase
	aiTimeout time.Duration
}

// NewEmailHandler aiTimeout acota la llamada al modelo en Classify; 0 usa 30 s.
func NewEmailHandler(uc *email.UseCase, aiTimeout time.Duration) *EmailHandler {
	if aiTimeout <= 0 {
		aiTimeout = 30 * time.Second
	}
	return &EmailHandler{uc: uc, aiTimeout: aiTimeout}
}

// Sync godoc
// @Summary      Sincronizar buzón
// @Description  Descarga los correos no leídos por IMAP y los guarda como PENDING, descartando Message-ID repetidos.
// @Tags         emails
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  dto.SyncResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/emails/sync [post]
func (h *EmailHandler) Sync(c *fiber.Ctx) error {
	out, err := h.uc.Sync(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar correos
// @Tags         emails
// @Produce      json
// @Security     Bearer
// @Param        status  query  string  false  "PENDING | CLASSIFIED | PROCESSED | IGNORED | FAILED"
// @Param        limit   query  int     false  "Límite (máx. 100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.EmailListResponse
// @Router       /api/emails [get]
func (h *EmailHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener correo
// @Tags         emails
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.EmailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/emails/{id} [get]
func (h *EmailHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Classify godoc
// @Summary      Clasificar correo con IA
// @Description  Consume créditos IA, extrae categoría, solicitud y precios cotizados.
// @Tags         emails
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.EmailResponse
// @Failure      402  {object}  dto.ErrorResponse
// @Failure      408  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/emails/{id}/classify [post]
func (h *EmailHandler) Classify(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.aiTimeout)
	defer cancel()
	out, err := h.uc.Classify(ctx, GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Convert godoc
// @Summary      Convertir correo en propuesta
// @Tags         emails
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string                   true   "ID"
// @Param        body  body  dto.ConvertEmailRequest  false  "Solicitud y proveedor si no se detectaron"
// @Success      201   {object}  dto.ProposalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/emails/{id}/convert [post]
func (h *EmailHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertEmailRequest
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &in); !ok {
			return err
		}
	}
	out, err := h.uc.Convert(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Ignore godoc
// @Summary      Descartar correo
// @Tags         emails
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.EmailResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/emails/{id}/ignore [post]
func (h *EmailHandler) Ignore(c *fiber.Ctx) error {
	out, err := h.uc.Ignore(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
