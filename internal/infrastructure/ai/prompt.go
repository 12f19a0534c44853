package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
)

const classificationPrompt = `Eres un asistente del área de compras. Recibes un correo de un proveedor y la lista
de solicitudes de cotización abiertas de la empresa. Devuelve ÚNICAMENTE un objeto JSON (sin markdown) con esta estructura exacta:
{
  "category": "<PROPOSAL | QUESTION | OTHER>",
  "request_number": "<número de la solicitud a la que responde, ej. SC-000012, o vacío>",
  "confidence": <número decimal entre 0.0 y 1.0>,
  "reasoning": "<explicación concisa en español, máximo 200 caracteres>",
  "delivery_days": <entero, plazo de entrega en días, 0 si no se indica>,
  "payment_terms": "<condición de pago, ej. 30 días, o vacío>",
  "freight": <número, valor del flete, 0 si no se indica>,
  "items": [
    {"description": "<ítem tal como aparece en la solicitud>", "quantity": <número>, "unit_price": <número>, "total_price": <número>}
  ]
}

Reglas:
- PROPOSAL: el correo trae precios para una solicitud. QUESTION: el proveedor pide aclaraciones. OTHER: cualquier otra cosa.
- request_number debe ser uno de los números listados; si no hay certeza, déjalo vacío.
- items sólo para PROPOSAL; usa la descripción del ítem de la solicitud, no la del proveedor.
- Los números van sin separador de miles y con punto decimal.
- No incluyas texto fuera del JSON.`

// classificationPayload JSON que esperamos del modelo.
type classificationPayload struct {
	Category      string          `json:"category"`
	RequestNumber string          `json:"request_number"`
	Confidence    float64         `json:"confidence"`
	Reasoning     string          `json:"reasoning"`
	DeliveryDays  int             `json:"delivery_days"`
	PaymentTerms  string          `json:"payment_terms"`
	Freight       decimal.Decimal `json:"freight"`
	Items         []struct {
		Description string          `json:"description"`
		Quantity    decimal.Decimal `json:"quantity"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
		TotalPrice  decimal.Decimal `json:"total_price"`
	} `json:"items"`
}

// buildUserPrompt arma el mensaje de usuario: solicitudes abiertas y el correo.
func buildUserPrompt(in ports.EmailClassificationInput) string {
	var b strings.Builder
	b.WriteString("Solicitudes abiertas:\n")
	if len(in.OpenRequests) == 0 {
		b.WriteString("(ninguna)\n")
	}
	for _, r := range in.OpenRequests {
		fmt.Fprintf(&b, "- %s: %s\n", r.Number, r.Title)
		for _, it := range r.Items {
			fmt.Fprintf(&b, "    * %s\n", it)
		}
	}
	b.WriteString("\nCorreo:\n")
	if in.FromName != "" {
		fmt.Fprintf(&b, "De: %s <%s>\n", in.FromName, in.FromAddress)
	} else {
		fmt.Fprintf(&b, "De: %s\n", in.FromAddress)
	}
	fmt.Fprintf(&b, "Asunto: %s\n\n%s", in.Subject, in.Body)
	return b.String()
}

// parseClassification decodifica la respuesta del modelo; tolera bloques markdown alrededor del JSON.
func parseClassification(raw string) (*dto.EmailClassificationDTO, error) {
	clean := extractJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON válido en la respuesta del modelo (respuesta: %s)", raw)
	}
	var p classificationPayload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de clasificación: %w (JSON extraído: %s)", err, clean)
	}

	confidence := p.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	days := p.DeliveryDays
	if days < 0 {
		days = 0
	}

	out := &dto.EmailClassificationDTO{
		Category:      strings.ToUpper(strings.TrimSpace(p.Category)),
		RequestNumber: strings.TrimSpace(p.RequestNumber),
		Confidence:    confidence,
		Reasoning:     p.Reasoning,
		DeliveryDays:  days,
		PaymentTerms:  strings.TrimSpace(p.PaymentTerms),
		Freight:       p.Freight,
	}
	for _, it := range p.Items {
		if strings.TrimSpace(it.Description) == "" {
			continue
		}
		out.ExtractedItems = append(out.ExtractedItems, dto.ExtractedPriceDTO{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return out, nil
}

// jsonBlockRe extrae el primer objeto JSON del texto aunque el modelo lo envuelva en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON extrae el primer objeto JSON bien formado de un texto libre.
// Estrategia en dos pasos:
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque { … }.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
