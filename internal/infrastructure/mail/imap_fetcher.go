package mail

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/pkg/config"
)

var _ ports.InboxFetcher = (*IMAPFetcher)(nil)

// maxFetch mensajes por sincronización; el resto queda para la siguiente.
const maxFetch = 50

// IMAPFetcher lee los correos no leídos del buzón de compras.
type IMAPFetcher struct {
	cfg config.IMAPConfig
	log zerolog.Logger
}

// NewIMAPFetcher construye el adaptador.
func NewIMAPFetcher(cfg config.IMAPConfig, log zerolog.Logger) *IMAPFetcher {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	return &IMAPFetcher{cfg: cfg, log: log.With().Str("component", "imap").Logger()}
}

func (f *IMAPFetcher) dial() (*client.Client, error) {
	addr := net.JoinHostPort(f.cfg.Host, strconv.Itoa(f.cfg.Port))
	if f.cfg.TLS {
		return client.DialTLS(addr, nil)
	}
	return client.Dial(addr)
}

// session conecta, autentica y selecciona el buzón. El llamador hace Logout.
func (f *IMAPFetcher) session(ctx context.Context) (*client.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := f.dial()
	if err != nil {
		return nil, fmt.Errorf("imap: conectar: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.Timeout = time.Until(deadline)
	}
	if err := c.Login(f.cfg.User, f.cfg.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("imap: login: %w", err)
	}
	if _, err := c.Select(f.cfg.Mailbox, false); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("imap: seleccionar %s: %w", f.cfg.Mailbox, err)
	}
	return c, nil
}

// FetchUnseen descarga los mensajes sin \Seen con BODY.PEEK[], sin marcarlos.
// Los mensajes ilegibles se marcan en el acto porque nunca podrán registrarse.
func (f *IMAPFetcher) FetchUnseen(ctx context.Context) ([]ports.InboundEmail, error) {
	c, err := f.session(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Logout() }()

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap: buscar no leídos: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > maxFetch {
		uids = uids[:maxFetch]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchInternalDate, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	var out []ports.InboundEmail
	var unreadable []uint32
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		in, err := parseMessage(body)
		if err != nil {
			// un mensaje ilegible no frena la sincronización
			f.log.Warn().Err(err).Uint32("uid", msg.Uid).Msg("mensaje descartado")
			unreadable = append(unreadable, msg.Uid)
			continue
		}
		in.UID = msg.Uid
		if in.ReceivedAt.IsZero() {
			in.ReceivedAt = msg.InternalDate
		}
		out = append(out, in)
	}
	if err := <-done; err != nil {
		return out, fmt.Errorf("imap: descargar: %w", err)
	}
	if len(unreadable) > 0 {
		if err := storeSeen(c, unreadable); err != nil {
			f.log.Warn().Err(err).Int("count", len(unreadable)).Msg("no se pudieron marcar mensajes ilegibles")
		}
	}
	f.log.Info().Int("count", len(out)).Str("mailbox", f.cfg.Mailbox).Msg("correos descargados")
	return out, nil
}

// MarkSeen agrega \Seen a los UID indicados en una sesión nueva.
func (f *IMAPFetcher) MarkSeen(ctx context.Context, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	c, err := f.session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Logout() }()
	if err := storeSeen(c, uids); err != nil {
		return err
	}
	f.log.Debug().Int("count", len(uids)).Msg("correos marcados como leídos")
	return nil
}

func storeSeen(c *client.Client, uids []uint32) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := c.UidStore(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("imap: marcar leídos: %w", err)
	}
	return nil
}
