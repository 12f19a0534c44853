// Package mail adaptadores SMTP (envío de solicitudes y órdenes) e IMAP (lectura de propuestas).
package mail

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/pkg/config"
)

var _ ports.EmailSender = (*SMTPSender)(nil)

// SMTPSender envía correos con gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

// NewSMTPSender construye el adaptador desde la configuración SMTP.
func NewSMTPSender(cfg config.SMTPConfig, log zerolog.Logger) *SMTPSender {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
		log:    log.With().Str("component", "smtp").Logger(),
	}
}

// Send arma el mensaje (texto, HTML alternativo y adjuntos) y lo entrega.
// gomail no acepta contexto: sólo se verifica la cancelación antes de conectar.
func (s *SMTPSender) Send(ctx context.Context, msg ports.OutboundEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("smtp: sin destinatarios")
	}
	m := buildMessage(s.from, msg)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: enviar a %v: %w", msg.To, err)
	}
	s.log.Debug().Strs("to", msg.To).Str("subject", msg.Subject).Msg("correo enviado")
	return nil
}

func buildMessage(from string, msg ports.OutboundEmail) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}
	for _, a := range msg.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		m.Attach(a.Filename, settings...)
	}
	return m
}
