package email_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Compras-api/internal/application/email"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "papel bond carta", email.Normalize("  Papel   BOND  Carta "))
	assert.Equal(t, "cotizacion toner", email.Normalize("Cotización Tóner"))
	assert.Equal(t, "", email.Normalize("   "))
}

func TestExtractRequestNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"canónico", "Re: [SC-000012] Solicitud de cotización", []string{"SC-000012"}},
		{"sin ceros", "respuesta a la sc 12", []string{"SC-000012"}},
		{"numeral", "Cotización SC#7 adjunta", []string{"SC-000007"}},
		{"varios sin repetir", "SC-1, SC-000001 y SC_2", []string{"SC-000001", "SC-000002"}},
		{"palabra que contiene sc", "disco 12 y fiscal 3", nil},
		{"cero no es número válido", "SC-000000", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, email.ExtractRequestNumbers(tt.text))
		})
	}
}

func TestMatchRequestNumber(t *testing.T) {
	open := []string{"SC-000003", "SC-000010"}

	assert.Equal(t, "SC-000010", email.MatchRequestNumber("Re: sc 10 precios", open))
	assert.Equal(t, "SC-000003", email.MatchRequestNumber("ver SC-99 y SC-3", open))
	assert.Equal(t, "", email.MatchRequestNumber("SC-000004", open))
	assert.Equal(t, "", email.MatchRequestNumber("SC-000003", nil))
}

func TestSimilarDescriptions(t *testing.T) {
	assert.True(t, email.SimilarDescriptions("Papel A4", "papel a4"))
	assert.True(t, email.SimilarDescriptions("Tóner HP 85A", "toner hp 85a negro"))
	assert.False(t, email.SimilarDescriptions("Grapas", "Papel"))
	assert.False(t, email.SimilarDescriptions("", "Papel"))
}
