package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Compras-api/internal/application/dto"
)

// moduleChecker lo implementa *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// RequireModule corta la petición si la empresa del token no tiene el módulo activo.
// Va después de AuthMiddleware. Responde 403 MODULE_DISABLED o 503 si la consulta falla.
func RequireModule(module string, checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return unauthorized(c)
		}

		active, err := checker.HasActiveModule(c.UserContext(), companyID, module)
		switch {
		case err != nil:
			log.Error().Err(err).
				Str("company_id", companyID).
				Str("module", module).
				Msg("no se pudo verificar el módulo")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code: "MODULE_CHECK_FAILED", Message: "no se pudo verificar el módulo, intente más tarde",
			})
		case !active:
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code: "MODULE_DISABLED", Message: "módulo " + module + " no activo para la empresa",
			})
		}
		return c.Next()
	}
}
