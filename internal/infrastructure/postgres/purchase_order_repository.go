package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación del puerto PurchaseOrderRepository sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const orderColumns = `id, company_id, number, request_id, proposal_id, supplier_id, status, total, notes,
	COALESCE(created_by::text, ''), sent_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	err := row.Scan(&o.ID, &o.CompanyID, &o.Number, &o.RequestID, &o.ProposalID, &o.SupplierID, &o.Status,
		&o.Total, &o.Notes, &o.CreatedBy, &o.SentAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// NextNumber reserva el siguiente OC-000001 de la empresa.
func (r *PurchaseOrderRepo) NextNumber(ctx context.Context, companyID string) (string, error) {
	return nextSequence(ctx, r.q, companyID, "OC")
}

// Create persiste la orden con sus ítems.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	return inTx(ctx, r.q, func(q Querier) error {
		query := `
			INSERT INTO purchase_orders (id, company_id, number, request_id, proposal_id, supplier_id, status, total, notes,
			                             created_by, sent_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid, $11, $12, $13)`
		_, err := q.Exec(ctx, query,
			o.ID, o.CompanyID, o.Number, o.RequestID, o.ProposalID, o.SupplierID, o.Status, o.Total, o.Notes,
			o.CreatedBy, o.SentAt, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert purchase order: %w", err)
		}
		const itemQuery = `
			INSERT INTO purchase_order_items (id, order_id, request_item_id, proposal_item_id, product_id, description,
			                                  quantity, unit_price, total_price)
			VALUES ($1, $2, $3, NULLIF($4, '')::uuid, NULLIF($5, '')::uuid, $6, $7, $8, $9)`
		for _, it := range o.Items {
			if _, err := q.Exec(ctx, itemQuery,
				it.ID, o.ID, it.RequestItemID, it.ProposalItemID, it.ProductID, it.Description,
				it.Quantity, it.UnitPrice, it.TotalPrice,
			); err != nil {
				return fmt.Errorf("insert purchase order item: %w", err)
			}
		}
		return nil
	})
}

// orderItemsQuery líneas de la orden en el orden de la solicitud (PDF y XML las listan así).
const orderItemsQuery = `
	SELECT oi.id, oi.order_id, oi.request_item_id, COALESCE(oi.proposal_item_id::text, ''),
	       COALESCE(oi.product_id::text, ''), oi.description, oi.quantity, oi.unit_price, oi.total_price
	  FROM purchase_order_items oi
	  LEFT JOIN quotation_request_items ri ON ri.id = oi.request_item_id
	 WHERE oi.order_id = $1
	 ORDER BY ri.position NULLS LAST, oi.description`

func (r *PurchaseOrderRepo) loadItems(ctx context.Context, o *entity.PurchaseOrder) error {
	rows, err := r.q.Query(ctx, orderItemsQuery, o.ID)
	if err != nil {
		return fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()
	o.Items = nil
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.RequestItemID, &it.ProposalItemID, &it.ProductID,
			&it.Description, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return fmt.Errorf("scan purchase order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

// GetByID obtiene la orden con sus ítems.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PurchaseOrderRepo) list(ctx context.Context, query string, args ...any) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ListByCompany lista cabeceras (sin ítems) con filtros opcionales.
func (r *PurchaseOrderRepo) ListByCompany(ctx context.Context, companyID string, f repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, error) {
	where := []string{"company_id = $1"}
	args := []any{companyID}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.RequestID != "" {
		args = append(args, f.RequestID)
		where = append(where, fmt.Sprintf("request_id = $%d", len(args)))
	}
	if f.SupplierID != "" {
		args = append(args, f.SupplierID)
		where = append(where, fmt.Sprintf("supplier_id = $%d", len(args)))
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM purchase_orders WHERE %s ORDER BY created_at DESC, number DESC LIMIT $%d OFFSET $%d`,
		orderColumns, strings.Join(where, " AND "), len(args)-1, len(args))
	return r.list(ctx, query, args...)
}

// ListByRequest órdenes emitidas para una solicitud.
func (r *PurchaseOrderRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.PurchaseOrder, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE request_id = $1 ORDER BY number`, requestID)
}

// UpdateStatus cambia el estado; sentAt nil conserva la fecha de envío previa.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id, status string, sentAt *time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $2, sent_at = COALESCE($3, sent_at), updated_at = now()
		WHERE id = $1`, id, status, sentAt)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
