package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/domain"
)

func TestRespondError_Mapeo(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("solicitud: %w", domain.ErrNotFound), fiber.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: cantidad", domain.ErrInvalidInput), fiber.StatusBadRequest, "VALIDATION"},
		{domain.ErrInvalidSelection, fiber.StatusBadRequest, "INVALID_SELECTION"},
		{fmt.Errorf("%w: DRAFT", domain.ErrInvalidStatus), fiber.StatusConflict, "INVALID_STATUS"},
		{domain.ErrNoProposals, fiber.StatusConflict, "NO_PROPOSALS"},
		{domain.ErrInsufficientCredits, fiber.StatusPaymentRequired, "INSUFFICIENT_CREDITS"},
		{domain.ErrAIUnavailable, fiber.StatusServiceUnavailable, "AI_UNAVAILABLE"},
		{domain.ErrMailUnavailable, fiber.StatusServiceUnavailable, "MAIL_UNAVAILABLE"},
		{fmt.Errorf("llm: %w", context.DeadlineExceeded), fiber.StatusRequestTimeout, "TIMEOUT"},
		{fmt.Errorf("pgx: conexión rechazada"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, string(body), `"code":"`+tc.code+`"`)
		})
	}
}

func TestRespondError_NoFiltraDetalleInterno(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, fmt.Errorf("password authentication failed for user compras"))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "password")
}

func TestPage_Topes(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		limit, offset := page(c)
		return c.JSON(fiber.Map{"limit": limit, "offset": offset})
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-3", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"limit":100,"offset":0}`, string(body))
}
