package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/ports"
)

const multipartMsg = "From: \"Andina S.A.\" <Ventas@Andina.test>\r\n" +
	"To: compras@acme.test\r\n" +
	"Subject: =?UTF-8?Q?Cotizaci=C3=B3n_SC-000001?=\r\n" +
	"Date: Tue, 06 Oct 2026 10:00:00 -0500\r\n" +
	"Message-ID: <abc123@andina.test>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Papel A4: 12000 c/u\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Papel A4: <b>12000</b></p>\r\n" +
	"--b1--\r\n"

const htmlOnlyMsg = "From: ventas@andina.test\r\n" +
	"Subject: precios\r\n" +
	"Content-Type: text/html; charset=iso-8859-1\r\n" +
	"\r\n" +
	"<html><head><style>p{}</style></head><body><table><tr><td>Papel A4</td><td>12000</td></tr>" +
	"<tr><td>T\xf3ner</td><td>85000</td></tr></table></body></html>\r\n"

func TestParseMessage_Multipart(t *testing.T) {
	in, err := parseMessage(strings.NewReader(multipartMsg))
	require.NoError(t, err)
	assert.Equal(t, "<abc123@andina.test>", in.MessageID)
	assert.Equal(t, "ventas@andina.test", in.FromAddress)
	assert.Equal(t, "Andina S.A.", in.FromName)
	assert.Equal(t, "Cotización SC-000001", in.Subject)
	assert.Equal(t, "Papel A4: 12000 c/u", in.Body)
	assert.Equal(t, 2026, in.ReceivedAt.Year())
}

func TestParseMessage_HTMLOnly(t *testing.T) {
	in, err := parseMessage(strings.NewReader(htmlOnlyMsg))
	require.NoError(t, err)
	assert.Empty(t, in.MessageID)
	assert.Contains(t, in.Body, "| Papel A4 | 12000")
	assert.Contains(t, in.Body, "| Tóner | 85000")
	assert.NotContains(t, in.Body, "p{}")
}

func TestBuildMessage(t *testing.T) {
	m := buildMessage("compras@acme.test", ports.OutboundEmail{
		To:       []string{"ventas@andina.test"},
		ReplyTo:  "buzon@acme.test",
		Subject:  "Solicitud SC-000001",
		TextBody: "Hola",
		HTMLBody: "<p>Hola</p>",
		Attachments: []ports.Attachment{
			{Filename: "OC-000001.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		},
	})
	assert.Equal(t, []string{"ventas@andina.test"}, m.GetHeader("To"))
	assert.Equal(t, []string{"buzon@acme.test"}, m.GetHeader("Reply-To"))

	var sb strings.Builder
	_, err := m.WriteTo(&sb)
	require.NoError(t, err)
	raw := sb.String()
	assert.Contains(t, raw, "multipart/mixed")
	assert.Contains(t, raw, "OC-000001.pdf")
}
