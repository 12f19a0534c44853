package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.EmailMessageRepository = (*EmailMessageRepo)(nil)

// EmailMessageRepo implementación del puerto EmailMessageRepository sobre PostgreSQL.
type EmailMessageRepo struct {
	q Querier
}

// NewEmailMessageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmailMessageRepository(q Querier) *EmailMessageRepo {
	return &EmailMessageRepo{q: q}
}

const emailColumns = `id, company_id, message_id, from_address, from_name, subject, body, received_at, status,
	COALESCE(request_id::text, ''), COALESCE(supplier_id::text, ''), COALESCE(proposal_id::text, ''),
	category, confidence, reasoning, extracted_items, delivery_days, payment_terms, freight, processing_error,
	created_at, updated_at`

// listado sin cuerpo: el cuerpo sólo viaja en GetByID
const emailListColumns = `id, company_id, message_id, from_address, from_name, subject, '', received_at, status,
	COALESCE(request_id::text, ''), COALESCE(supplier_id::text, ''), COALESCE(proposal_id::text, ''),
	category, confidence, reasoning, extracted_items, delivery_days, payment_terms, freight, processing_error,
	created_at, updated_at`

func scanEmail(row interface{ Scan(...any) error }) (*entity.EmailMessage, error) {
	var m entity.EmailMessage
	var items []byte
	err := row.Scan(&m.ID, &m.CompanyID, &m.MessageID, &m.FromAddress, &m.FromName, &m.Subject, &m.Body,
		&m.ReceivedAt, &m.Status, &m.RequestID, &m.SupplierID, &m.ProposalID,
		&m.Category, &m.Confidence, &m.Reasoning, &items, &m.DeliveryDays, &m.PaymentTerms, &m.Freight,
		&m.ProcessingError, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &m.ExtractedItems); err != nil {
			return nil, fmt.Errorf("decode extracted_items: %w", err)
		}
	}
	return &m, nil
}

func encodeItems(items []entity.ExtractedPrice) ([]byte, error) {
	if items == nil {
		items = []entity.ExtractedPrice{}
	}
	return json.Marshal(items)
}

// Create persiste el correo. Message-ID repetido en la empresa → domain.ErrDuplicate.
func (r *EmailMessageRepo) Create(ctx context.Context, m *entity.EmailMessage) error {
	items, err := encodeItems(m.ExtractedItems)
	if err != nil {
		return fmt.Errorf("encode extracted_items: %w", err)
	}
	query := `
		INSERT INTO email_messages (id, company_id, message_id, from_address, from_name, subject, body, received_at,
		                            status, request_id, supplier_id, proposal_id, category, confidence, reasoning,
		                            extracted_items, delivery_days, payment_terms, freight, processing_error,
		                            created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid, NULLIF($11, '')::uuid, NULLIF($12, '')::uuid,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err = r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.MessageID, m.FromAddress, m.FromName, m.Subject, m.Body, m.ReceivedAt,
		m.Status, m.RequestID, m.SupplierID, m.ProposalID, m.Category, m.Confidence, m.Reasoning,
		items, m.DeliveryDays, m.PaymentTerms, m.Freight, m.ProcessingError, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert email message: %w", err)
	}
	return nil
}

// GetByID obtiene el correo con su cuerpo.
func (r *EmailMessageRepo) GetByID(ctx context.Context, id string) (*entity.EmailMessage, error) {
	m, err := scanEmail(r.q.QueryRow(ctx, `SELECT `+emailColumns+` FROM email_messages WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get email message: %w", err)
	}
	return m, nil
}

// ExistsByMessageID indica si el Message-ID ya fue importado para la empresa.
func (r *EmailMessageRepo) ExistsByMessageID(ctx context.Context, companyID, messageID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM email_messages WHERE company_id = $1 AND message_id = $2)`,
		companyID, messageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists email message: %w", err)
	}
	return exists, nil
}

// Update persiste estado, asociaciones y clasificación.
func (r *EmailMessageRepo) Update(ctx context.Context, m *entity.EmailMessage) error {
	items, err := encodeItems(m.ExtractedItems)
	if err != nil {
		return fmt.Errorf("encode extracted_items: %w", err)
	}
	query := `
		UPDATE email_messages SET status = $2, request_id = NULLIF($3, '')::uuid, supplier_id = NULLIF($4, '')::uuid,
		       proposal_id = NULLIF($5, '')::uuid, category = $6, confidence = $7, reasoning = $8,
		       extracted_items = $9, delivery_days = $10, payment_terms = $11, freight = $12,
		       processing_error = $13, updated_at = $14
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		m.ID, m.Status, m.RequestID, m.SupplierID, m.ProposalID, m.Category, m.Confidence, m.Reasoning,
		items, m.DeliveryDays, m.PaymentTerms, m.Freight, m.ProcessingError, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update email message: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista correos sin cuerpo, más recientes primero. status vacío = todos.
func (r *EmailMessageRepo) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.EmailMessage, error) {
	query := `SELECT ` + emailListColumns + ` FROM email_messages
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY received_at DESC, id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list email messages: %w", err)
	}
	defer rows.Close()
	var list []*entity.EmailMessage
	for rows.Next() {
		m, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email message: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
