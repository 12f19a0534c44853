package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.ProposalRepository = (*ProposalRepo)(nil)

// ProposalRepo implementación del puerto ProposalRepository sobre PostgreSQL.
type ProposalRepo struct {
	q Querier
}

// NewProposalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProposalRepository(q Querier) *ProposalRepo {
	return &ProposalRepo{q: q}
}

const proposalColumns = `id, company_id, request_id, supplier_id, status, source, delivery_days, payment_terms,
	valid_until, freight, notes, COALESCE(email_id::text, ''), received_at, created_at, updated_at`

func scanProposal(row interface{ Scan(...any) error }) (*entity.Proposal, error) {
	var p entity.Proposal
	err := row.Scan(&p.ID, &p.CompanyID, &p.RequestID, &p.SupplierID, &p.Status, &p.Source, &p.DeliveryDays,
		&p.PaymentTerms, &p.ValidUntil, &p.Freight, &p.Notes, &p.EmailID, &p.ReceivedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste la propuesta con sus ítems. Un segundo envío del mismo proveedor → domain.ErrDuplicate.
func (r *ProposalRepo) Create(ctx context.Context, p *entity.Proposal) error {
	return inTx(ctx, r.q, func(q Querier) error {
		query := `
			INSERT INTO proposals (id, company_id, request_id, supplier_id, status, source, delivery_days, payment_terms,
			                       valid_until, freight, notes, email_id, received_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, '')::uuid, $13, $14, $15)`
		_, err := q.Exec(ctx, query,
			p.ID, p.CompanyID, p.RequestID, p.SupplierID, p.Status, p.Source, p.DeliveryDays, p.PaymentTerms,
			p.ValidUntil, p.Freight, p.Notes, p.EmailID, p.ReceivedAt, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert proposal: %w", err)
		}
		return insertProposalItems(ctx, q, p)
	})
}

func insertProposalItems(ctx context.Context, q Querier, p *entity.Proposal) error {
	const query = `
		INSERT INTO proposal_items (id, proposal_id, request_item_id, unit_price, quantity, total_price, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range p.Items {
		if _, err := q.Exec(ctx, query, it.ID, p.ID, it.RequestItemID, it.UnitPrice, it.Quantity, it.TotalPrice, it.Notes); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: ítem %s repetido en la propuesta", domain.ErrInvalidInput, it.RequestItemID)
			}
			return fmt.Errorf("insert proposal item: %w", err)
		}
	}
	return nil
}

func (r *ProposalRepo) loadItems(ctx context.Context, list []*entity.Proposal) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Proposal, len(list))
	ids := make([]string, 0, len(list))
	for _, p := range list {
		p.Items = nil
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT pi.id, pi.proposal_id, pi.request_item_id, pi.unit_price, pi.quantity, pi.total_price, pi.notes
		  FROM proposal_items pi
		  JOIN quotation_request_items ri ON ri.id = pi.request_item_id
		 WHERE pi.proposal_id::text = ANY($1)
		 ORDER BY ri.position`, ids)
	if err != nil {
		return fmt.Errorf("list proposal items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ProposalItem
		if err := rows.Scan(&it.ID, &it.ProposalID, &it.RequestItemID, &it.UnitPrice, &it.Quantity, &it.TotalPrice, &it.Notes); err != nil {
			return fmt.Errorf("scan proposal item: %w", err)
		}
		if p, ok := byID[it.ProposalID]; ok {
			p.Items = append(p.Items, it)
		}
	}
	return rows.Err()
}

func (r *ProposalRepo) findOne(ctx context.Context, where string, args ...any) (*entity.Proposal, error) {
	p, err := scanProposal(r.q.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Proposal{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID obtiene la propuesta con sus ítems.
func (r *ProposalRepo) GetByID(ctx context.Context, id string) (*entity.Proposal, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// GetByRequestAndSupplier propuesta del proveedor para la solicitud, si existe.
func (r *ProposalRepo) GetByRequestAndSupplier(ctx context.Context, requestID, supplierID string) (*entity.Proposal, error) {
	return r.findOne(ctx, `request_id = $1 AND supplier_id = $2`, requestID, supplierID)
}

// ListByRequest propuestas de la solicitud por orden de recepción, con ítems.
func (r *ProposalRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.Proposal, error) {
	rows, err := r.q.Query(ctx, `SELECT `+proposalColumns+` FROM proposals
		WHERE request_id = $1 ORDER BY received_at, created_at, id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	var list []*entity.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Update reemplaza condiciones e ítems.
func (r *ProposalRepo) Update(ctx context.Context, p *entity.Proposal) error {
	return inTx(ctx, r.q, func(q Querier) error {
		query := `
			UPDATE proposals SET delivery_days = $2, payment_terms = $3, valid_until = $4, freight = $5,
			       notes = $6, status = $7, updated_at = $8
			WHERE id = $1`
		cmd, err := q.Exec(ctx, query, p.ID, p.DeliveryDays, p.PaymentTerms, p.ValidUntil, p.Freight, p.Notes, p.Status, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update proposal: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := q.Exec(ctx, `DELETE FROM proposal_items WHERE proposal_id = $1`, p.ID); err != nil {
			return fmt.Errorf("replace proposal items: %w", err)
		}
		return insertProposalItems(ctx, q, p)
	})
}

// UpdateStatus cambia el estado de la propuesta.
func (r *ProposalRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE proposals SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la propuesta. Si ya originó una orden → domain.ErrConflict.
func (r *ProposalRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM proposals WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete proposal: %w", err)
	}
	return nil
}
