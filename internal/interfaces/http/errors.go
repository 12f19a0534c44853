package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorTable orden importa: el primer errors.Is que coincide gana.
var errorTable = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidSelection, fiber.StatusBadRequest, "INVALID_SELECTION"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInvalidStatus, fiber.StatusConflict, "INVALID_STATUS"},
	{domain.ErrNoProposals, fiber.StatusConflict, "NO_PROPOSALS"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrInsufficientCredits, fiber.StatusPaymentRequired, "INSUFFICIENT_CREDITS"},
	{domain.ErrAIUnavailable, fiber.StatusServiceUnavailable, "AI_UNAVAILABLE"},
	{domain.ErrMailUnavailable, fiber.StatusServiceUnavailable, "MAIL_UNAVAILABLE"},
	{context.DeadlineExceeded, fiber.StatusRequestTimeout, "TIMEOUT"},
}

// respondError traduce errores de dominio a status + dto.ErrorResponse.
// Los errores no mapeados se registran y responden 500 sin filtrar detalles internos.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("company_id", GetCompanyID(c)).
		Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// ErrorHandler manejador global de fiber: rutas inexistentes, cuerpos gigantes, pánicos recuperados.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: codeForStatus(fe.Code), Message: fe.Message})
	}
	return respondError(c, err)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL"
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
}
