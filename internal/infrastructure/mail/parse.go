package mail

import (
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/net/html"

	"github.com/jhoicas/Compras-api/internal/application/ports"
)

// maxPartSize límite de lectura por parte; los adjuntos no se leen.
const maxPartSize = 1 << 20

// parseMessage decodifica un RFC 5322 a texto plano. Prefiere text/plain; si sólo hay HTML lo convierte.
func parseMessage(r io.Reader) (ports.InboundEmail, error) {
	var out ports.InboundEmail
	mr, err := mail.CreateReader(r)
	if err != nil {
		return out, fmt.Errorf("leer cabeceras: %w", err)
	}
	defer mr.Close()

	h := mr.Header
	if id, err := h.MessageID(); err == nil && id != "" {
		out.MessageID = "<" + id + ">"
	}
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		out.FromAddress = strings.ToLower(from[0].Address)
		out.FromName = from[0].Name
	}
	if subject, err := h.Subject(); err == nil {
		out.Subject = subject
	}
	if date, err := h.Date(); err == nil {
		out.ReceivedAt = date
	}

	var plain, htmlBody string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("leer parte: %w", err)
		}
		ih, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := ih.ContentType()
		data, err := io.ReadAll(io.LimitReader(p.Body, maxPartSize))
		if err != nil {
			return out, fmt.Errorf("leer cuerpo: %w", err)
		}
		switch ct {
		case "text/plain", "":
			if plain == "" {
				plain = string(data)
			}
		case "text/html":
			if htmlBody == "" {
				htmlBody = string(data)
			}
		}
	}
	switch {
	case strings.TrimSpace(plain) != "":
		out.Body = strings.TrimSpace(plain)
	case htmlBody != "":
		out.Body = htmlToText(htmlBody)
	}
	return out, nil
}

// htmlToText aplana el HTML: saltos en bloques, " | " entre celdas para conservar las tablas de precios.
func htmlToText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head":
				return
			case "p", "div", "br", "tr", "li", "table", "h1", "h2", "h3", "h4":
				b.WriteByte('\n')
			case "td", "th":
				b.WriteString("| ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
