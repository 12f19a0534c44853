package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de persistencia para categorías.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const categoryColumns = `id, company_id, COALESCE(parent_id::text, ''), code, name, status, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.CompanyID, &c.ParentID, &c.Code, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una categoría. Código repetido en la empresa → domain.ErrDuplicate.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (id, company_id, parent_id, code, name, status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, c.ID, c.CompanyID, c.ParentID, c.Code, c.Name, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) findOne(ctx context.Context, where string, args ...any) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// GetByCompanyAndCode obtiene una categoría por código.
func (r *CategoryRepo) GetByCompanyAndCode(ctx context.Context, companyID, code string) (*entity.Category, error) {
	return r.findOne(ctx, `company_id = $1 AND code = $2`, companyID, code)
}

// Update actualiza la categoría.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	query := `
		UPDATE categories SET parent_id = NULLIF($2, '')::uuid, code = $3, name = $4, status = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, c.ID, c.ParentID, c.Code, c.Name, c.Status, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var list []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListByCompany lista categorías de la empresa por código.
func (r *CategoryRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories WHERE company_id = $1 ORDER BY code LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
}

// ListByParent subcategorías directas; parentID vacío = raíces.
func (r *CategoryRepo) ListByParent(ctx context.Context, companyID, parentID string) ([]*entity.Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE company_id = $1 AND parent_id IS NOT DISTINCT FROM NULLIF($2, '')::uuid ORDER BY code`,
		companyID, parentID)
}

// Delete elimina la categoría. Si aún tiene subcategorías → domain.ErrConflict.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
