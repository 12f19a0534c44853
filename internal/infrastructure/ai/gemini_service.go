package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
)

var _ ports.LLMService = (*GeminiService)(nil)

// geminiURL recibe el modelo; la API key viaja en la cabecera x-goog-api-key.
const geminiURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// GeminiService clasifica correos con la API generateContent de Gemini.
type GeminiService struct {
	apiKey     string
	model      string
	urlFormat  string
	httpClient *http.Client
}

// NewGeminiService construye el adaptador. model suele ser "gemini-1.5-flash".
func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{
		apiKey:     apiKey,
		model:      model,
		urlFormat:  geminiURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// ClassifyEmail llama a Gemini pidiendo JSON puro (responseMimeType).
func (s *GeminiService) ClassifyEmail(ctx context.Context, in ports.EmailClassificationInput) (*dto.EmailClassificationDTO, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY no configurado", domain.ErrAIUnavailable)
	}

	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: classificationPrompt}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: buildUserPrompt(in)}}}},
		GenerationConfig: genConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0.1,
			MaxOutputTokens:  2048,
		},
	}
	var resp geminiResponse
	url := fmt.Sprintf(s.urlFormat, s.model)
	headers := map[string]string{"x-goog-api-key": s.apiKey}
	if err := postJSON(ctx, s.httpClient, "Gemini", url, headers, req, &resp, geminiErrorDetail); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("AI: Gemini devolvió respuesta vacía")
	}
	return parseClassification(resp.Candidates[0].Content.Parts[0].Text)
}

func geminiErrorDetail(raw []byte) string {
	var body struct {
		Error struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil || body.Error.Message == "" {
		return ""
	}
	return body.Error.Status + ": " + body.Error.Message
}
