package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
)

var _ ports.LLMService = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// AnthropicService clasifica correos con la Messages API de Claude.
type AnthropicService struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador. Sin apiKey cada llamada devuelve ErrAIUnavailable.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	return &AnthropicService{
		apiKey:     apiKey,
		model:      model,
		url:        anthropicMessagesURL,
		httpClient: &http.Client{Timeout: 25 * time.Second},
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// ClassifyEmail envía el correo y las solicitudes abiertas a Claude.
func (s *AnthropicService) ClassifyEmail(ctx context.Context, in ports.EmailClassificationInput) (*dto.EmailClassificationDTO, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY no configurado", domain.ErrAIUnavailable)
	}

	req := anthropicRequest{
		Model:       s.model,
		MaxTokens:   2048,
		Temperature: 0.1,
		System:      classificationPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: buildUserPrompt(in)}},
	}
	headers := map[string]string{
		"x-api-key":         s.apiKey,
		"anthropic-version": anthropicVersion,
	}
	var resp anthropicResponse
	if err := postJSON(ctx, s.httpClient, "Anthropic", s.url, headers, req, &resp, anthropicErrorDetail); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("AI: Claude devolvió respuesta vacía (stop_reason=%s)", resp.StopReason)
	}
	return parseClassification(text.String())
}

func anthropicErrorDetail(raw []byte) string {
	var body struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil || body.Error.Type == "" {
		return ""
	}
	return body.Error.Type + ": " + body.Error.Message
}
