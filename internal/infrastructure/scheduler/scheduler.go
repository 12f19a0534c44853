// Package scheduler tareas programadas con robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Compras-api/internal/application/dto"
)

// InboxProcessor sincroniza y clasifica el buzón de una empresa.
type InboxProcessor interface {
	ProcessInbox(ctx context.Context, companyID string) (*dto.SyncResponse, int, error)
}

// Scheduler envuelve cron con logs zerolog y sin ejecuciones solapadas.
type Scheduler struct {
	c   *cron.Cron
	log zerolog.Logger
}

// New crea el scheduler (aún sin arrancar).
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		c: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// AddInboxPolling programa la sincronización del buzón. timeout acota cada ejecución.
func (s *Scheduler) AddInboxPolling(spec, companyID string, p InboxProcessor, timeout time.Duration) error {
	if companyID == "" {
		return fmt.Errorf("scheduler: IMAP_COMPANY_ID requerido para la sincronización programada")
	}
	_, err := s.c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		runInboxPolling(ctx, p, companyID, s.log)
	})
	if err != nil {
		return fmt.Errorf("scheduler: expresión cron %q: %w", spec, err)
	}
	s.log.Info().Str("spec", spec).Str("company_id", companyID).Msg("sincronización de buzón programada")
	return nil
}

func runInboxPolling(ctx context.Context, p InboxProcessor, companyID string, log zerolog.Logger) {
	start := time.Now()
	res, classified, err := p.ProcessInbox(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID).Msg("sincronización de buzón fallida")
		return
	}
	ev := log.Info().Str("company_id", companyID).Int("classified", classified).Dur("elapsed", time.Since(start))
	if res != nil {
		ev = ev.Int("fetched", res.Fetched).Int("stored", res.Stored).Int("duplicates", res.Duplicates)
	}
	ev.Msg("buzón sincronizado")
}

// Start arranca el scheduler en su propia goroutine.
func (s *Scheduler) Start() { s.c.Start() }

// Stop detiene el scheduler y espera las tareas en curso hasta que ctx venza.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("tareas programadas aún en curso al apagar")
	}
}

// cronLogger adapta zerolog a cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
