package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación del puerto SupplierRepository sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de persistencia para proveedores.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, company_id, name, tax_id, email, phone, contact_name, status, created_at, updated_at`

func scanSupplier(row interface{ Scan(...any) error }) (*entity.Supplier, error) {
	var s entity.Supplier
	err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &s.TaxID, &s.Email, &s.Phone, &s.ContactName,
		&s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un proveedor. NIT repetido en la empresa → domain.ErrDuplicate.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CompanyID, s.Name, s.TaxID, strings.ToLower(s.Email), s.Phone, s.ContactName,
		s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) findOne(ctx context.Context, where string, args ...any) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

// GetByID obtiene un proveedor por ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// GetByCompanyAndTaxID obtiene un proveedor por NIT.
func (r *SupplierRepo) GetByCompanyAndTaxID(ctx context.Context, companyID, taxID string) (*entity.Supplier, error) {
	return r.findOne(ctx, `company_id = $1 AND tax_id = $2`, companyID, taxID)
}

// GetByEmail busca por remitente; si varios proveedores comparten email gana el más antiguo.
func (r *SupplierRepo) GetByEmail(ctx context.Context, companyID, email string) (*entity.Supplier, error) {
	return r.findOne(ctx, `company_id = $1 AND lower(email) = lower($2) ORDER BY created_at LIMIT 1`, companyID, email)
}

// Update actualiza el proveedor.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	query := `
		UPDATE suppliers SET name = $2, tax_id = $3, email = $4, phone = $5, contact_name = $6, status = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.TaxID, strings.ToLower(s.Email), s.Phone, s.ContactName, s.Status, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplierRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListByCompany lista proveedores; search filtra por nombre o NIT.
func (r *SupplierRepo) ListByCompany(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Supplier, error) {
	if search == "" {
		return r.list(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
			companyID, limit, offset)
	}
	return r.list(ctx, `SELECT `+supplierColumns+` FROM suppliers
		WHERE company_id = $1 AND (name ILIKE $2 OR tax_id ILIKE $2) ORDER BY name LIMIT $3 OFFSET $4`,
		companyID, "%"+search+"%", limit, offset)
}

// ListByIDs devuelve los proveedores indicados de la empresa.
func (r *SupplierRepo) ListByIDs(ctx context.Context, companyID string, ids []string) ([]*entity.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE company_id = $1 AND id::text = ANY($2)`,
		companyID, ids)
}

// Delete elimina el proveedor. Si tiene solicitudes o propuestas → domain.ErrConflict.
func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}
