package ports

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/application/dto"
)

// OpenRequestContext solicitud abierta que el LLM puede reconocer en el correo.
type OpenRequestContext struct {
	Number string
	Title  string
	Items  []string // descripciones, en el orden de la solicitud
}

// EmailClassificationInput datos del correo que se envían al modelo.
type EmailClassificationInput struct {
	FromAddress  string
	FromName     string
	Subject      string
	Body         string
	OpenRequests []OpenRequestContext
}

// LLMService define el puerto de salida para los servicios de inteligencia artificial.
// Cualquier adaptador (Anthropic, Gemini, mock) debe implementar esta interfaz.
type LLMService interface {
	// ClassifyEmail decide si el correo es una propuesta, una pregunta u otra cosa,
	// identifica la solicitud a la que responde y extrae los precios cotizados.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	ClassifyEmail(ctx context.Context, in EmailClassificationInput) (*dto.EmailClassificationDTO, error)
}
