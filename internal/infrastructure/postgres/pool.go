package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Compras-api/pkg/config"
)

// NewPool abre el pool de PostgreSQL, registra el codec NUMERIC -> decimal.Decimal y
// verifica la conexión con un ping.
// El dial fuerza IPv4 cuando el host lo resuelve (contenedores sin IPv6 contra Supabase).
func NewPool(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.ConnConfig.DialFunc = dialIPv4
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	if cfg.SlowQueryMS > 0 {
		poolConfig.ConnConfig.Tracer = &slowQueryTracer{
			threshold: time.Duration(cfg.SlowQueryMS) * time.Millisecond,
			log:       log,
		}
	}

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB (%s): %w", redactDSN(cfg.ConnectionString()), err)
	}
	log.Info().
		Int32("max_conns", poolConfig.MaxConns).
		Int32("min_conns", poolConfig.MinConns).
		Msg("pool PostgreSQL listo")
	return pool, nil
}

func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if ip := net.ParseIP(host); ip != nil {
		return d.DialContext(ctx, network, addr)
	}
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil || len(ips) == 0 {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ips[0].String(), port))
}

// redactDSN oculta la contraseña para poder loguear el destino de la conexión.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return "dsn inválido"
	}
	return u.Redacted()
}

type traceStartKey struct{}

type traceStart struct {
	at  time.Time
	sql string
}

// slowQueryTracer registra en warn las consultas que superan el umbral.
type slowQueryTracer struct {
	threshold time.Duration
	log       zerolog.Logger
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceStartKey{}, traceStart{at: time.Now(), sql: data.SQL})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	st, ok := ctx.Value(traceStartKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := time.Since(st.at)
	if elapsed < t.threshold {
		return
	}
	ev := t.log.Warn().Dur("elapsed", elapsed).Str("sql", compactSQL(st.sql))
	if data.Err != nil {
		ev = ev.Err(data.Err)
	}
	ev.Msg("consulta lenta")
}

// compactSQL colapsa espacios y recorta a 200 caracteres.
func compactSQL(sql string) string {
	out := make([]rune, 0, len(sql))
	space := false
	for _, r := range sql {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if !space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = true
			continue
		}
		space = false
		out = append(out, r)
	}
	if len(out) > 200 {
		out = append(out[:200], '…')
	}
	return string(out)
}
