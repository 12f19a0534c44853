package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jhoicas/Compras-api/internal/domain"
)

const maxResponseBytes = 256 * 1024

// apiError respuesta no 200 del proveedor. 429 y 5xx se consideran indisponibilidad.
type apiError struct {
	provider string
	status   int
	detail   string
}

func (e *apiError) Error() string {
	if e.detail == "" {
		return fmt.Sprintf("AI: %s HTTP %d", e.provider, e.status)
	}
	return fmt.Sprintf("AI: %s HTTP %d: %s", e.provider, e.status, e.detail)
}

func (e *apiError) Unwrap() error {
	if e.status == http.StatusTooManyRequests || e.status >= 500 {
		return domain.ErrAIUnavailable
	}
	return nil
}

// postJSON envía payload como JSON y decodifica la respuesta 200 en out.
// errDetail extrae el mensaje de error propio de cada proveedor.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string,
	payload, out any, errDetail func([]byte) string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("AI: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("%w: %s: llamada HTTP fallida: %v", domain.ErrAIUnavailable, provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("AI: leer respuesta %s: %w", provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &apiError{provider: provider, status: resp.StatusCode, detail: errDetail(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("AI: deserializar respuesta %s: %w", provider, err)
	}
	return nil
}
