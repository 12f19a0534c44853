package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.QuotationRequestRepository = (*QuotationRequestRepo)(nil)

// QuotationRequestRepo implementación del puerto QuotationRequestRepository sobre PostgreSQL.
// Cabecera, ítems e invitaciones viven en tablas separadas.
type QuotationRequestRepo struct {
	q Querier
}

// NewQuotationRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuotationRequestRepository(q Querier) *QuotationRequestRepo {
	return &QuotationRequestRepo{q: q}
}

const requestColumns = `id, company_id, number, title, description, status, deadline,
	COALESCE(created_by::text, ''), created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (*entity.QuotationRequest, error) {
	var q entity.QuotationRequest
	err := row.Scan(&q.ID, &q.CompanyID, &q.Number, &q.Title, &q.Description, &q.Status, &q.Deadline,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// NextNumber reserva el siguiente SC-000001 de la empresa.
func (r *QuotationRequestRepo) NextNumber(ctx context.Context, companyID string) (string, error) {
	return nextSequence(ctx, r.q, companyID, "SC")
}

// Create persiste la solicitud con sus ítems e invitaciones en una transacción.
func (r *QuotationRequestRepo) Create(ctx context.Context, req *entity.QuotationRequest) error {
	return inTx(ctx, r.q, func(q Querier) error {
		return (&QuotationRequestRepo{q: q}).create(ctx, req)
	})
}

func (r *QuotationRequestRepo) create(ctx context.Context, req *entity.QuotationRequest) error {
	query := `
		INSERT INTO quotation_requests (id, company_id, number, title, description, status, deadline, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')::uuid, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.CompanyID, req.Number, req.Title, req.Description, req.Status, req.Deadline,
		req.CreatedBy, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quotation request: %w", err)
	}
	if err := r.insertItems(ctx, req); err != nil {
		return err
	}
	return r.insertSuppliers(ctx, req)
}

func (r *QuotationRequestRepo) insertItems(ctx context.Context, req *entity.QuotationRequest) error {
	const query = `
		INSERT INTO quotation_request_items (id, request_id, product_id, description, quantity, unit_measure, position)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7)`
	for _, it := range req.Items {
		if _, err := r.q.Exec(ctx, query, it.ID, req.ID, it.ProductID, it.Description, it.Quantity, it.UnitMeasure, it.Position); err != nil {
			return fmt.Errorf("insert quotation item: %w", err)
		}
	}
	return nil
}

func (r *QuotationRequestRepo) insertSuppliers(ctx context.Context, req *entity.QuotationRequest) error {
	const query = `
		INSERT INTO quotation_request_suppliers (request_id, supplier_id, status, sent_at, last_error)
		VALUES ($1, $2, $3, $4, $5)`
	for _, s := range req.Suppliers {
		if _, err := r.q.Exec(ctx, query, req.ID, s.SupplierID, s.Status, s.SentAt, s.LastError); err != nil {
			return fmt.Errorf("insert quotation supplier: %w", err)
		}
	}
	return nil
}

// loadChildren completa Items y Suppliers.
func (r *QuotationRequestRepo) loadChildren(ctx context.Context, req *entity.QuotationRequest) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, request_id, COALESCE(product_id::text, ''), description, quantity, unit_measure, position
		  FROM quotation_request_items WHERE request_id = $1 ORDER BY position`, req.ID)
	if err != nil {
		return fmt.Errorf("list quotation items: %w", err)
	}
	req.Items = req.Items[:0]
	for rows.Next() {
		var it entity.RequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.ProductID, &it.Description, &it.Quantity, &it.UnitMeasure, &it.Position); err != nil {
			rows.Close()
			return fmt.Errorf("scan quotation item: %w", err)
		}
		req.Items = append(req.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.Query(ctx, `
		SELECT request_id, supplier_id, status, sent_at, last_error
		  FROM quotation_request_suppliers WHERE request_id = $1 ORDER BY supplier_id`, req.ID)
	if err != nil {
		return fmt.Errorf("list quotation suppliers: %w", err)
	}
	defer rows.Close()
	req.Suppliers = req.Suppliers[:0]
	for rows.Next() {
		var s entity.RequestSupplier
		if err := rows.Scan(&s.RequestID, &s.SupplierID, &s.Status, &s.SentAt, &s.LastError); err != nil {
			return fmt.Errorf("scan quotation supplier: %w", err)
		}
		req.Suppliers = append(req.Suppliers, s)
	}
	return rows.Err()
}

func (r *QuotationRequestRepo) findOne(ctx context.Context, where string, args ...any) (*entity.QuotationRequest, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM quotation_requests WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quotation request: %w", err)
	}
	if err := r.loadChildren(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetByID obtiene la solicitud con ítems e invitaciones.
func (r *QuotationRequestRepo) GetByID(ctx context.Context, id string) (*entity.QuotationRequest, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindOpenByNumber busca una solicitud SENT o IN_ANALYSIS por número.
func (r *QuotationRequestRepo) FindOpenByNumber(ctx context.Context, companyID, number string) (*entity.QuotationRequest, error) {
	return r.findOne(ctx, `company_id = $1 AND number = $2 AND status IN ('SENT', 'IN_ANALYSIS')`, companyID, number)
}

func (r *QuotationRequestRepo) list(ctx context.Context, withChildren bool, query string, args ...any) ([]*entity.QuotationRequest, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotation requests: %w", err)
	}
	var list []*entity.QuotationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan quotation request: %w", err)
		}
		list = append(list, req)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if withChildren {
		for _, req := range list {
			if err := r.loadChildren(ctx, req); err != nil {
				return nil, err
			}
		}
	}
	return list, nil
}

// ListOpen solicitudes que aceptan propuestas, con sus ítems (contexto para el buzón).
func (r *QuotationRequestRepo) ListOpen(ctx context.Context, companyID string) ([]*entity.QuotationRequest, error) {
	return r.list(ctx, true, `SELECT `+requestColumns+` FROM quotation_requests
		WHERE company_id = $1 AND status IN ('SENT', 'IN_ANALYSIS') ORDER BY created_at`, companyID)
}

// ListByCompany lista cabeceras con ítems e invitaciones; status vacío = todas.
func (r *QuotationRequestRepo) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.QuotationRequest, error) {
	return r.list(ctx, true, `SELECT `+requestColumns+` FROM quotation_requests
		WHERE company_id = $1 AND ($2 = '' OR status = $2) ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		companyID, status, limit, offset)
}

// Update reemplaza cabecera, ítems e invitaciones en una transacción.
func (r *QuotationRequestRepo) Update(ctx context.Context, req *entity.QuotationRequest) error {
	return inTx(ctx, r.q, func(q Querier) error {
		return (&QuotationRequestRepo{q: q}).update(ctx, req)
	})
}

func (r *QuotationRequestRepo) update(ctx context.Context, req *entity.QuotationRequest) error {
	query := `
		UPDATE quotation_requests SET title = $2, description = $3, status = $4, deadline = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, req.ID, req.Title, req.Description, req.Status, req.Deadline, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update quotation request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM quotation_request_items WHERE request_id = $1`, req.ID); err != nil {
		return fmt.Errorf("replace quotation items: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM quotation_request_suppliers WHERE request_id = $1`, req.ID); err != nil {
		return fmt.Errorf("replace quotation suppliers: %w", err)
	}
	if err := r.insertItems(ctx, req); err != nil {
		return err
	}
	return r.insertSuppliers(ctx, req)
}

// TransitionStatus cambia el estado condicionado al actual. Dentro de una transacción
// la fila queda bloqueada, así que dos emisiones simultáneas no pueden completar la misma solicitud.
func (r *QuotationRequestRepo) TransitionStatus(ctx context.Context, id, from, to string) error {
	const query = `
		UPDATE quotation_requests SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`
	cmd, err := r.q.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("transition quotation status: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var current string
	err = r.q.QueryRow(ctx, `SELECT status FROM quotation_requests WHERE id = $1`, id).Scan(&current)
	if isNoRows(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read quotation status: %w", err)
	}
	return fmt.Errorf("%w: la solicitud está en %s, se esperaba %s", domain.ErrInvalidStatus, current, from)
}

// UpdateSupplierStatus actualiza la invitación; sentAt nil conserva la fecha de envío previa.
func (r *QuotationRequestRepo) UpdateSupplierStatus(ctx context.Context, requestID, supplierID, status string, sentAt *time.Time, lastError string) error {
	const query = `
		UPDATE quotation_request_suppliers
		   SET status = $3, sent_at = COALESCE($4, sent_at), last_error = $5
		 WHERE request_id = $1 AND supplier_id = $2`
	cmd, err := r.q.Exec(ctx, query, requestID, supplierID, status, sentAt, lastError)
	if err != nil {
		return fmt.Errorf("update quotation supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddSupplier invita un proveedor; si ya estaba invitado no hace nada.
func (r *QuotationRequestRepo) AddSupplier(ctx context.Context, requestID, supplierID, status string) error {
	const query = `
		INSERT INTO quotation_request_suppliers (request_id, supplier_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id, supplier_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, requestID, supplierID, status); err != nil {
		return fmt.Errorf("add quotation supplier: %w", err)
	}
	return nil
}

// Delete elimina la solicitud (ítems e invitaciones en cascada).
func (r *QuotationRequestRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM quotation_requests WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete quotation request: %w", err)
	}
	return nil
}
