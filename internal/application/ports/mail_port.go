package ports

import (
	"context"
	"time"
)

// Attachment adjunto de un correo saliente.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// OutboundEmail correo a enviar a un proveedor.
type OutboundEmail struct {
	To          []string
	ReplyTo     string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// EmailSender puerto de salida SMTP.
type EmailSender interface {
	Send(ctx context.Context, msg OutboundEmail) error
}

// InboundEmail correo leído del buzón, ya decodificado a texto.
type InboundEmail struct {
	UID         uint32 // identificador en el buzón, para MarkSeen
	MessageID   string
	FromAddress string
	FromName    string
	Subject     string
	Body        string
	ReceivedAt  time.Time
}

// InboxFetcher puerto de entrada del buzón (IMAP). FetchUnseen no altera los flags:
// el llamador marca con MarkSeen solo lo que ya quedó registrado.
type InboxFetcher interface {
	FetchUnseen(ctx context.Context) ([]InboundEmail, error)
	MarkSeen(ctx context.Context, uids []uint32) error
}
