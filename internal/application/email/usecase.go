// Package email procesa el buzón de compras: descarga los correos de los proveedores,
// los asocia a solicitudes, los clasifica con IA y los convierte en propuestas.
package email

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	apppurchasing "github.com/jhoicas/Compras-api/internal/application/purchasing"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// maxBodyForLLM recorta cuerpos largos (firmas, hilos citados) antes de enviarlos al modelo.
const maxBodyForLLM = 12000

// Classifier clasificación de correos con consumo de créditos. Lo implementa *usecase.AIUseCase.
type Classifier interface {
	ClassifyEmail(ctx context.Context, companyID, userID, reference string, in ports.EmailClassificationInput) (*dto.EmailClassificationDTO, error)
}

// Deps dependencias del procesamiento de correos. Inbox y Classifier pueden ser nil.
type Deps struct {
	Emails     repository.EmailMessageRepository
	Requests   repository.QuotationRequestRepository
	Suppliers  repository.SupplierRepository
	Inbox      ports.InboxFetcher
	Classifier Classifier
	Tx         ports.TxRunner
	Metrics    ports.Metrics
	Log        zerolog.Logger
}

// UseCase casos de uso del buzón de compras.
type UseCase struct {
	d Deps
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	return &UseCase{d: d}
}

// Sync descarga los correos no leídos, descarta los ya registrados (por Message-ID) y
// guarda el resto como PENDING, asociando solicitud y proveedor cuando es posible.
func (uc *UseCase) Sync(ctx context.Context, companyID string) (*dto.SyncResponse, error) {
	res, _, err := uc.sync(ctx, companyID)
	return res, err
}

func (uc *UseCase) sync(ctx context.Context, companyID string) (*dto.SyncResponse, []*entity.EmailMessage, error) {
	if uc.d.Inbox == nil {
		return nil, nil, domain.ErrMailUnavailable
	}
	fetched, err := uc.d.Inbox.FetchUnseen(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("leer buzón: %w", err)
	}
	uc.d.Metrics.EmailsFetched(len(fetched))
	out := &dto.SyncResponse{Fetched: len(fetched)}
	if len(fetched) == 0 {
		return out, nil, nil
	}
	open, err := uc.d.Requests.ListOpen(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}

	// Solo se marcan como leídos los correos ya registrados (o duplicados); si algo falla
	// a mitad, el resto sigue sin leer y entra en la próxima sincronización.
	var handled []uint32
	defer func() { uc.markSeen(ctx, companyID, handled) }()

	var stored []*entity.EmailMessage
	for _, in := range fetched {
		msgID := in.MessageID
		if msgID == "" {
			msgID = syntheticMessageID(in)
		}
		exists, err := uc.d.Emails.ExistsByMessageID(ctx, companyID, msgID)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			out.Duplicates++
			handled = append(handled, in.UID)
			continue
		}
		now := time.Now()
		msg := &entity.EmailMessage{
			ID:          uuid.New().String(),
			CompanyID:   companyID,
			MessageID:   msgID,
			FromAddress: strings.ToLower(strings.TrimSpace(in.FromAddress)),
			FromName:    in.FromName,
			Subject:     in.Subject,
			Body:        in.Body,
			ReceivedAt:  in.ReceivedAt,
			Status:      entity.EmailStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if msg.ReceivedAt.IsZero() {
			msg.ReceivedAt = now
		}
		if req := matchOpenRequest(open, msg.Subject+"\n"+msg.Body); req != nil {
			msg.RequestID = req.ID
			out.Matched++
		}
		if msg.FromAddress != "" {
			s, err := uc.d.Suppliers.GetByEmail(ctx, companyID, msg.FromAddress)
			if err != nil {
				return nil, nil, err
			}
			if s != nil {
				msg.SupplierID = s.ID
			}
		}
		if err := uc.d.Emails.Create(ctx, msg); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				out.Duplicates++
				handled = append(handled, in.UID)
				continue
			}
			return nil, nil, err
		}
		handled = append(handled, in.UID)
		out.Stored++
		stored = append(stored, msg)
		uc.d.Log.Debug().
			Str("company_id", companyID).Str("message_id", msgID).
			Str("request_id", msg.RequestID).Str("supplier_id", msg.SupplierID).
			Msg("correo registrado")
	}
	uc.d.Log.Info().
		Str("company_id", companyID).
		Int("fetched", out.Fetched).Int("stored", out.Stored).Int("duplicates", out.Duplicates).
		Msg("buzón sincronizado")
	return out, stored, nil
}

// markSeen marca en el buzón los correos ya registrados. Un fallo solo se registra:
// la siguiente sincronización los vuelve a leer y el Message-ID los descarta.
func (uc *UseCase) markSeen(ctx context.Context, companyID string, uids []uint32) {
	if len(uids) == 0 {
		return
	}
	if err := uc.d.Inbox.MarkSeen(ctx, uids); err != nil {
		uc.d.Log.Warn().Err(err).Str("company_id", companyID).Int("count", len(uids)).
			Msg("no se pudieron marcar correos como leídos")
	}
}

// Classify pide al LLM la clasificación del correo (consume un crédito). Un fallo del
// proveedor de IA deja el correo en FAILED con el motivo; la falta de créditos o de
// proveedor se devuelve como error sin tocar el correo.
func (uc *UseCase) Classify(ctx context.Context, companyID, userID, emailID string) (*dto.EmailResponse, error) {
	if uc.d.Classifier == nil {
		return nil, domain.ErrAIUnavailable
	}
	msg, err := uc.load(ctx, companyID, emailID)
	if err != nil {
		return nil, err
	}
	if msg.Status != entity.EmailStatusPending && msg.Status != entity.EmailStatusFailed {
		return nil, fmt.Errorf("%w: el correo ya está %s", domain.ErrInvalidStatus, msg.Status)
	}
	if err := uc.classify(ctx, companyID, userID, msg); err != nil {
		return nil, err
	}
	return toEmailResponse(msg, true), nil
}

func (uc *UseCase) classify(ctx context.Context, companyID, userID string, msg *entity.EmailMessage) error {
	open, err := uc.d.Requests.ListOpen(ctx, companyID)
	if err != nil {
		return err
	}
	in := ports.EmailClassificationInput{
		FromAddress:  msg.FromAddress,
		FromName:     msg.FromName,
		Subject:      msg.Subject,
		Body:         truncate(msg.Body, maxBodyForLLM),
		OpenRequests: make([]ports.OpenRequestContext, 0, len(open)),
	}
	for _, r := range open {
		rc := ports.OpenRequestContext{Number: r.Number, Title: r.Title}
		for _, it := range r.Items {
			rc.Items = append(rc.Items, it.Description)
		}
		in.OpenRequests = append(in.OpenRequests, rc)
	}

	result, err := uc.d.Classifier.ClassifyEmail(ctx, companyID, userID, msg.ID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) || errors.Is(err, domain.ErrAIUnavailable) {
			return err
		}
		msg.Status = entity.EmailStatusFailed
		msg.ProcessingError = err.Error()
		msg.UpdatedAt = time.Now()
		uc.d.Metrics.EmailProcessed(msg.Status)
		uc.d.Log.Warn().Err(err).Str("company_id", companyID).Str("message_id", msg.MessageID).Msg("clasificación fallida")
		return uc.d.Emails.Update(ctx, msg)
	}

	msg.Status = entity.EmailStatusClassified
	msg.Category = normalizeCategory(result.Category)
	msg.Confidence = result.Confidence
	msg.Reasoning = result.Reasoning
	msg.DeliveryDays = result.DeliveryDays
	msg.PaymentTerms = result.PaymentTerms
	msg.Freight = result.Freight
	msg.ProcessingError = ""
	msg.ExtractedItems = msg.ExtractedItems[:0]
	for _, it := range result.ExtractedItems {
		msg.ExtractedItems = append(msg.ExtractedItems, entity.ExtractedPrice{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	if msg.RequestID == "" && result.RequestNumber != "" {
		numbers := make([]string, 0, len(open))
		for _, r := range open {
			numbers = append(numbers, r.Number)
		}
		if n := MatchRequestNumber(result.RequestNumber, numbers); n != "" {
			for _, r := range open {
				if r.Number == n {
					msg.RequestID = r.ID
					break
				}
			}
		}
	}
	msg.UpdatedAt = time.Now()
	uc.d.Metrics.EmailProcessed(msg.Status)
	return uc.d.Emails.Update(ctx, msg)
}

// Convert crea una propuesta (origen EMAIL) con los precios extraídos del correo. La
// solicitud y el proveedor detectados pueden sustituirse en la petición.
func (uc *UseCase) Convert(ctx context.Context, companyID, emailID string, in dto.ConvertEmailRequest) (*dto.ProposalResponse, error) {
	msg, err := uc.load(ctx, companyID, emailID)
	if err != nil {
		return nil, err
	}
	if msg.Status != entity.EmailStatusClassified {
		return nil, fmt.Errorf("%w: solo se convierten correos clasificados (estado %s)", domain.ErrInvalidStatus, msg.Status)
	}
	requestID := firstNonEmpty(in.RequestID, msg.RequestID)
	supplierID := firstNonEmpty(in.SupplierID, msg.SupplierID)
	if requestID == "" || supplierID == "" {
		return nil, fmt.Errorf("%w: no se pudo determinar la solicitud o el proveedor del correo", domain.ErrInvalidInput)
	}
	req, err := uc.d.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	supplier, err := uc.d.Suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil || supplier.CompanyID != companyID {
		return nil, fmt.Errorf("%w: proveedor %s no existe", domain.ErrInvalidInput, supplierID)
	}

	lines := MatchExtractedItems(req, msg.ExtractedItems)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: el correo no tiene precios asociables a los ítems de %s", domain.ErrInvalidInput, req.Number)
	}
	items, err := apppurchasing.BuildProposalItems(req, lines)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p := &entity.Proposal{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		RequestID:    req.ID,
		SupplierID:   supplier.ID,
		Status:       entity.ProposalStatusReceived,
		Source:       entity.ProposalSourceEmail,
		DeliveryDays: msg.DeliveryDays,
		PaymentTerms: msg.PaymentTerms,
		Freight:      msg.Freight,
		Notes:        msg.Subject,
		EmailID:      msg.ID,
		Items:        items,
		ReceivedAt:   msg.ReceivedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.d.Tx.RunPurchasing(ctx, func(repos ports.PurchasingRepos) error {
		if err := apppurchasing.RecordProposal(ctx, repos, req, p); err != nil {
			return err
		}
		msg.Status = entity.EmailStatusProcessed
		msg.RequestID = req.ID
		msg.SupplierID = supplier.ID
		msg.ProposalID = p.ID
		msg.UpdatedAt = now
		return repos.Emails.Update(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	uc.d.Metrics.EmailProcessed(entity.EmailStatusProcessed)
	uc.d.Metrics.ProposalRecorded(p.Source)
	uc.d.Log.Info().
		Str("company_id", companyID).Str("message_id", msg.MessageID).
		Str("request_id", req.ID).Str("supplier_id", supplier.ID).
		Int("items", len(items)).
		Msg("correo convertido en propuesta")

	return apppurchasing.ToProposalResponse(p, supplier.Name), nil
}

// Ignore descarta el correo. Un correo ya convertido en propuesta no se puede ignorar.
func (uc *UseCase) Ignore(ctx context.Context, companyID, emailID string) (*dto.EmailResponse, error) {
	msg, err := uc.load(ctx, companyID, emailID)
	if err != nil {
		return nil, err
	}
	if msg.Status == entity.EmailStatusProcessed {
		return nil, fmt.Errorf("%w: el correo ya generó una propuesta", domain.ErrInvalidStatus)
	}
	msg.Status = entity.EmailStatusIgnored
	msg.UpdatedAt = time.Now()
	if err := uc.d.Emails.Update(ctx, msg); err != nil {
		return nil, err
	}
	uc.d.Metrics.EmailProcessed(msg.Status)
	return toEmailResponse(msg, false), nil
}

// Get devuelve el correo con su cuerpo.
func (uc *UseCase) Get(ctx context.Context, companyID, emailID string) (*dto.EmailResponse, error) {
	msg, err := uc.load(ctx, companyID, emailID)
	if err != nil {
		return nil, err
	}
	return toEmailResponse(msg, true), nil
}

// List correos de la empresa; status vacío = todos.
func (uc *UseCase) List(ctx context.Context, companyID, status string, limit, offset int) (*dto.EmailListResponse, error) {
	list, err := uc.d.Emails.ListByCompany(ctx, companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := &dto.EmailListResponse{
		Items: make([]dto.EmailResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, *toEmailResponse(m, false))
	}
	return out, nil
}

// ProcessInbox sincroniza el buzón y clasifica los correos nuevos. Se detiene al
// quedarse sin créditos o sin proveedor de IA. Lo usa la tarea programada.
func (uc *UseCase) ProcessInbox(ctx context.Context, companyID string) (*dto.SyncResponse, int, error) {
	res, stored, err := uc.sync(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}
	if uc.d.Classifier == nil {
		return res, 0, nil
	}
	classified := 0
	for _, msg := range stored {
		if err := uc.classify(ctx, companyID, "", msg); err != nil {
			if errors.Is(err, domain.ErrInsufficientCredits) || errors.Is(err, domain.ErrAIUnavailable) {
				uc.d.Log.Warn().Err(err).Str("company_id", companyID).Msg("clasificación automática detenida")
				break
			}
			return res, classified, err
		}
		if msg.Status == entity.EmailStatusClassified {
			classified++
		}
	}
	return res, classified, nil
}

func (uc *UseCase) load(ctx context.Context, companyID, id string) (*entity.EmailMessage, error) {
	msg, err := uc.d.Emails.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

// matchOpenRequest busca en el texto el número de alguna solicitud abierta.
func matchOpenRequest(open []*entity.QuotationRequest, text string) *entity.QuotationRequest {
	numbers := make([]string, 0, len(open))
	for _, r := range open {
		numbers = append(numbers, r.Number)
	}
	n := MatchRequestNumber(text, numbers)
	if n == "" {
		return nil
	}
	for _, r := range open {
		if r.Number == n {
			return r
		}
	}
	return nil
}

// MatchExtractedItems asocia los precios extraídos con los ítems de la solicitud: primero
// por descripción (sin acentos ni mayúsculas); los restantes por posición cuando el
// correo trae tantas líneas como la solicitud.
func MatchExtractedItems(req *entity.QuotationRequest, extracted []entity.ExtractedPrice) []dto.ProposalItemInput {
	used := make(map[string]bool, len(req.Items))
	assigned := make([]string, len(extracted))
	for i, ex := range extracted {
		for _, it := range req.Items {
			if used[it.ID] {
				continue
			}
			if SimilarDescriptions(ex.Description, it.Description) {
				assigned[i] = it.ID
				used[it.ID] = true
				break
			}
		}
	}
	if len(extracted) == len(req.Items) {
		for i := range extracted {
			if assigned[i] == "" && !used[req.Items[i].ID] {
				assigned[i] = req.Items[i].ID
				used[req.Items[i].ID] = true
			}
		}
	}

	var out []dto.ProposalItemInput
	for i, ex := range extracted {
		if assigned[i] == "" {
			continue
		}
		if !ex.TotalPrice.IsPositive() && !ex.UnitPrice.IsPositive() {
			continue
		}
		out = append(out, dto.ProposalItemInput{
			RequestItemID: assigned[i],
			UnitPrice:     ex.UnitPrice,
			Quantity:      ex.Quantity,
			TotalPrice:    ex.TotalPrice,
		})
	}
	return out
}

func normalizeCategory(c string) string {
	switch strings.ToUpper(strings.TrimSpace(c)) {
	case entity.EmailCategoryProposal:
		return entity.EmailCategoryProposal
	case entity.EmailCategoryQuestion:
		return entity.EmailCategoryQuestion
	default:
		return entity.EmailCategoryOther
	}
}

// syntheticMessageID identificador estable para correos sin cabecera Message-ID.
func syntheticMessageID(in ports.InboundEmail) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		strings.ToLower(in.FromAddress), in.Subject, in.ReceivedAt.UTC().Format(time.RFC3339),
	}, "|")))
	return "<" + hex.EncodeToString(h[:16]) + "@compras.local>"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if s != "" {
			return s
		}
	}
	return ""
}
