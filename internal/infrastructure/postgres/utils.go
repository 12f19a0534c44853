package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx: los repositorios funcionan igual
// dentro o fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: la fila aún es referenciada (o referencia algo inexistente).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// nextSequence reserva el siguiente correlativo (kind = SC, OC) de la empresa y lo
// devuelve formateado: SC-000001. El UPSERT bloquea la fila hasta el fin de la transacción.
func nextSequence(ctx context.Context, q Querier, companyID, kind string) (string, error) {
	const query = `
		INSERT INTO document_sequences (company_id, kind, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, kind) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var n int
	if err := q.QueryRow(ctx, query, companyID, kind).Scan(&n); err != nil {
		return "", fmt.Errorf("next %s number: %w", kind, err)
	}
	return fmt.Sprintf("%s-%06d", kind, n), nil
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// inTx ejecuta fn en una transacción propia. Sobre un pgx.Tx, Begin abre un savepoint,
// así que una escritura de varias tablas es atómica tanto con pool como dentro de TxRunner.
func inTx(ctx context.Context, q Querier, fn func(q Querier) error) error {
	b, ok := q.(beginner)
	if !ok {
		return fn(q)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
