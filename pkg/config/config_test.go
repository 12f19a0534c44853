package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("AI_PROVIDER", "anthropic")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "INBOX", cfg.IMAP.Mailbox)
	assert.Equal(t, "compras", cfg.Metrics.Namespace)
	assert.False(t, cfg.IMAP.Enabled(), "sin IMAP_HOST el buzón queda desactivado")
	assert.Empty(t, cfg.Jobs.EmailPollCron)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 30, cfg.App.ModuleCacheSeconds)
}

func TestLoad_PoolInconsistente(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "5")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "compras@example.com")
	t.Setenv("AI_PROVIDER", "GEMINI")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("IMAP_HOST", "imap.example.com")
	t.Setenv("IMAP_USER", "propostas@example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, "compras@example.com", cfg.SMTP.From, "SMTP_FROM toma SMTP_USER por defecto")
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.True(t, cfg.IMAP.Enabled())
	assert.Equal(t, "imap.example.com:993", cfg.IMAP.Addr())
}

func TestLoad_ProveedorIAInvalido(t *testing.T) {
	t.Setenv("AI_PROVIDER", "otro")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "compras", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/compras?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otra"
	assert.Equal(t, "postgres://otra", c.ConnectionString())
}
