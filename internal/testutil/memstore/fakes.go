package memstore

import (
	"context"
	"sync"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
)

// Mailer registra los correos enviados. FailFor hace fallar el envío a esas direcciones.
type Mailer struct {
	mu      sync.Mutex
	Sent    []ports.OutboundEmail
	FailFor map[string]error
}

func (m *Mailer) Send(_ context.Context, msg ports.OutboundEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, to := range msg.To {
		if err, ok := m.FailFor[to]; ok {
			return err
		}
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Inbox simula un buzón: FetchUnseen devuelve los Messages aún no marcados con MarkSeen.
// Los mensajes sin UID reciben su posición + 1.
type Inbox struct {
	Messages []ports.InboundEmail
	Err      error
	MarkErr  error
	seen     map[uint32]bool
}

func (i *Inbox) FetchUnseen(context.Context) ([]ports.InboundEmail, error) {
	if i.Err != nil {
		return nil, i.Err
	}
	var out []ports.InboundEmail
	for n, m := range i.Messages {
		if m.UID == 0 {
			m.UID = uint32(n + 1)
		}
		if !i.seen[m.UID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (i *Inbox) MarkSeen(_ context.Context, uids []uint32) error {
	if i.MarkErr != nil {
		return i.MarkErr
	}
	if i.seen == nil {
		i.seen = map[uint32]bool{}
	}
	for _, u := range uids {
		i.seen[u] = true
	}
	return nil
}

// Unseen cuántos mensajes siguen sin marcar.
func (i *Inbox) Unseen() int {
	n := 0
	for k, m := range i.Messages {
		uid := m.UID
		if uid == 0 {
			uid = uint32(k + 1)
		}
		if !i.seen[uid] {
			n++
		}
	}
	return n
}

// LLM responde con Result (o Err) y guarda la última entrada recibida.
type LLM struct {
	Result *dto.EmailClassificationDTO
	Err    error
	Calls  int
	Last   ports.EmailClassificationInput
}

func (l *LLM) ClassifyEmail(_ context.Context, in ports.EmailClassificationInput) (*dto.EmailClassificationDTO, error) {
	l.Calls++
	l.Last = in
	if l.Err != nil {
		return nil, l.Err
	}
	out := *l.Result
	return &out, nil
}

// Documents genera PDF, XML y XLSX de prueba con contenido fijo.
type Documents struct{}

func (Documents) GeneratePurchaseOrderPDF(_ context.Context, doc ports.PurchaseOrderDocument) ([]byte, error) {
	return []byte("%PDF " + doc.Order.Number), nil
}

func (Documents) ExportPurchaseOrderXML(_ context.Context, doc ports.PurchaseOrderDocument) ([]byte, error) {
	return []byte("<PurchaseOrder>" + doc.Order.Number + "</PurchaseOrder>"), nil
}

func (Documents) GenerateAnalysisXLSX(_ context.Context, r ports.AnalysisReport) ([]byte, error) {
	return []byte("xlsx " + r.Request.Number), nil
}

var (
	_ ports.EmailSender                  = (*Mailer)(nil)
	_ ports.InboxFetcher                 = (*Inbox)(nil)
	_ ports.LLMService                   = (*LLM)(nil)
	_ ports.PurchaseOrderPDFGenerator    = Documents{}
	_ ports.PurchaseOrderXMLExporter     = Documents{}
	_ ports.AnalysisSpreadsheetGenerator = Documents{}
)
