package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/compras?sslmode=disable", pgx5URL("postgres://u:p@db:5432/compras?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/compras", pgx5URL("postgresql://u@db/compras"))
	assert.Equal(t, "pgx5://x", pgx5URL("pgx5://x"))
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS purchase_orders")
	_, err = migrationsFS.ReadFile("migrations/000001_init.down.sql")
	assert.NoError(t, err)
}

func TestCompactSQL(t *testing.T) {
	assert.Equal(t, "SELECT id FROM suppliers WHERE company_id = $1", compactSQL("\n\tSELECT id\n\t  FROM suppliers\n WHERE company_id = $1\n"))

	long := compactSQL(strings.Repeat("x", 300))
	assert.Equal(t, 201, len([]rune(long)))
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/compras", redactDSN("postgres://app:secreto@db:5432/compras"))
	assert.Equal(t, "dsn inválido", redactDSN("sin-esquema"))
}

func TestOrderItemsQuery_SigueElOrdenDeLaSolicitud(t *testing.T) {
	q := compactSQL(orderItemsQuery)
	assert.Contains(t, q, "JOIN quotation_request_items ri ON ri.id = oi.request_item_id")
	assert.True(t, strings.HasSuffix(q, "ORDER BY ri.position NULLS LAST, oi.description"), q)
}
