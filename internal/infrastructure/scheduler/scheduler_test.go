package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/dto"
)

type fakeProcessor struct {
	calls []string
	err   error
}

func (f *fakeProcessor) ProcessInbox(_ context.Context, companyID string) (*dto.SyncResponse, int, error) {
	f.calls = append(f.calls, companyID)
	if f.err != nil {
		return nil, 0, f.err
	}
	return &dto.SyncResponse{Fetched: 3, Stored: 2, Duplicates: 1}, 2, nil
}

func TestAddInboxPolling_Validation(t *testing.T) {
	s := New(zerolog.Nop())
	p := &fakeProcessor{}
	assert.Error(t, s.AddInboxPolling("*/5 * * * *", "", p, time.Minute))
	assert.Error(t, s.AddInboxPolling("no es cron", "c1", p, time.Minute))
	require.NoError(t, s.AddInboxPolling("*/5 * * * *", "c1", p, time.Minute))
	assert.Len(t, s.c.Entries(), 1)
}

func TestRunInboxPolling_Logs(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	p := &fakeProcessor{}
	runInboxPolling(context.Background(), p, "c1", log)
	assert.Equal(t, []string{"c1"}, p.calls)
	assert.Contains(t, buf.String(), `"classified":2`)
	assert.Contains(t, buf.String(), `"stored":2`)

	buf.Reset()
	p.err = errors.New("imap caído")
	runInboxPolling(context.Background(), p, "c1", log)
	assert.Contains(t, buf.String(), "imap caído")
}

func TestStop_Idle(t *testing.T) {
	s := New(zerolog.Nop())
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
