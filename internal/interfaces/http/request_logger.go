package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// httpObserver lo implementa *metrics.Prometheus.
type httpObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
	InFlight(delta float64)
}

// RequestLogger access log estructurado; si obs no es nil también alimenta las métricas HTTP.
func RequestLogger(logger zerolog.Logger, obs httpObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if obs != nil {
			obs.InFlight(1)
			defer obs.InFlight(-1)
		}

		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler escriba la respuesta antes de leer el status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path
		if obs != nil {
			obs.ObserveHTTP(c.Method(), route, status, elapsed)
		}

		ev := logger.Info()
		switch {
		case status >= 500:
			ev = logger.Error()
		case status >= 400:
			ev = logger.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("company_id", GetCompanyID(c)).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}
