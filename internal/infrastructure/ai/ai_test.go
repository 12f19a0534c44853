package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
)

const modelReply = `{"category":"proposal","request_number":"SC-000007","confidence":1.4,"reasoning":"trae precios",
"delivery_days":5,"payment_terms":"30 días","freight":"15000",
"items":[{"description":"Papel A4","quantity":10,"unit_price":12000,"total_price":120000},{"description":"  ","unit_price":1}]}`

func sampleInput() ports.EmailClassificationInput {
	return ports.EmailClassificationInput{
		FromAddress: "ventas@andina.test",
		FromName:    "Andina",
		Subject:     "Cotización SC-7",
		Body:        "Adjuntamos precios",
		OpenRequests: []ports.OpenRequestContext{
			{Number: "SC-000007", Title: "Papelería", Items: []string{"Papel A4", "Toner"}},
		},
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`Claro: {"a":1} saludos`))
	assert.Equal(t, "", extractJSON("sin json"))
}

func TestParseClassification(t *testing.T) {
	out, err := parseClassification("```json\n" + modelReply + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "PROPOSAL", out.Category)
	assert.Equal(t, "SC-000007", out.RequestNumber)
	assert.Equal(t, 1.0, out.Confidence)
	assert.Equal(t, 5, out.DeliveryDays)
	assert.True(t, out.Freight.Equal(decimal.NewFromInt(15000)))
	require.Len(t, out.ExtractedItems, 1)
	assert.True(t, out.ExtractedItems[0].UnitPrice.Equal(decimal.NewFromInt(12000)))

	_, err = parseClassification("no sé")
	assert.Error(t, err)
}

func TestBuildUserPrompt(t *testing.T) {
	p := buildUserPrompt(sampleInput())
	assert.Contains(t, p, "- SC-000007: Papelería")
	assert.Contains(t, p, "* Toner")
	assert.Contains(t, p, "De: Andina <ventas@andina.test>")
	assert.Contains(t, p, "Asunto: Cotización SC-7")
}

func TestAnthropicService_ClassifyEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, classificationPrompt, req.System)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": modelReply}},
		})
	}))
	defer srv.Close()

	s := NewAnthropicService("key", "claude")
	s.url = srv.URL
	out, err := s.ClassifyEmail(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "PROPOSAL", out.Category)
}

func TestAnthropicService_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	s := NewAnthropicService("key", "claude")
	s.url = srv.URL
	_, err := s.ClassifyEmail(context.Background(), sampleInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
	assert.ErrorIs(t, err, domain.ErrAIUnavailable, "429 es indisponibilidad temporal")
}

func TestGeminiService_BadRequestNoEsIndisponibilidad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"bad model"}}`))
	}))
	defer srv.Close()

	s := NewGeminiService("k", "m")
	s.urlFormat = srv.URL + "/%s"
	_, err := s.ClassifyEmail(context.Background(), sampleInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT: bad model")
	assert.False(t, errors.Is(err, domain.ErrAIUnavailable))
}

func TestGeminiService_ClassifyEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "/gemini-1.5-flash", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": modelReply}}}},
			},
		})
	}))
	defer srv.Close()

	s := NewGeminiService("k", "gemini-1.5-flash")
	s.urlFormat = srv.URL + "/%s"
	out, err := s.ClassifyEmail(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "30 días", out.PaymentTerms)
}

func TestMissingAPIKey(t *testing.T) {
	_, err := NewGeminiService("", "m").ClassifyEmail(context.Background(), sampleInput())
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)
	_, err = NewAnthropicService("", "m").ClassifyEmail(context.Background(), sampleInput())
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)
}
