package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/mailer"
	"github.com/t2bot/transfer-repo/pool"
	"github.com/t2bot/transfer-repo/types"
)

type recordingMailer struct {
	lock sync.Mutex
	sent []*mailer.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg *mailer.Message) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg", nil
}

func newTestDispatcher(t *testing.T, m mailer.Mailer) *Dispatcher {
	q, err := pool.NewQueue(2, "test_notifications")
	require.NoError(t, err)
	t.Cleanup(func() { q.Drain(time.Second) })
	cfg := config.NewDefaultConfig()
	return NewDispatcher(q, m, nil, cfg.Email, cfg.Notifications)
}

func testTransfer(sender types.SenderIdentity) *types.Transfer {
	return &types.Transfer{
		Id:        "AbCdEf12",
		Filename:  "holiday.zip",
		SizeBytes: 2048,
		Sender:    sender,
		CreatedAt: time.Now().UTC(),
	}
}

func TestNotifySendsToEmailSender(t *testing.T) {
	m := &recordingMailer{}
	d := newTestDispatcher(t, m)
	ctx := rcontext.Initial(config.NewDefaultConfig())

	scheduled := d.Notify(ctx, EventCreated, testTransfer(types.EmailSender("ann@example.org")), "https://x/d/AbCdEf12")
	assert.True(t, scheduled)
	d.Wait()

	require.Len(t, m.sent, 1)
	assert.Equal(t, "ann@example.org", m.sent[0].To)
	assert.Contains(t, m.sent[0].Html, "holiday.zip")
	assert.Contains(t, m.sent[0].Html, "https://x/d/AbCdEf12")
}

func TestNotifySkipsDisplayNameSender(t *testing.T) {
	m := &recordingMailer{}
	d := newTestDispatcher(t, m)
	ctx := rcontext.Initial(config.NewDefaultConfig())

	scheduled := d.Notify(ctx, EventCreated, testTransfer(types.DisplayNameSender("Ann")), "https://x/d/AbCdEf12")
	assert.False(t, scheduled)
	d.Wait()
	assert.Empty(t, m.sent)
}

func TestNotifyFailureIsReportedNotRaised(t *testing.T) {
	boom := errors.New("provider down")
	d := newTestDispatcher(t, &recordingMailer{err: boom})
	ctx := rcontext.Initial(config.NewDefaultConfig())

	assert.True(t, d.Notify(ctx, EventConfirmed, testTransfer(types.EmailSender("ann@example.org")), "u"))
	d.Wait()

	select {
	case f := <-d.Failures():
		assert.ErrorIs(t, f.Err, boom)
		assert.Equal(t, EventConfirmed, f.Event.Kind)
		assert.Equal(t, "AbCdEf12", f.Event.Transfer.Id)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a failure report")
	}
}

func TestNotifyOutlivesRequestContext(t *testing.T) {
	m := &recordingMailer{}
	d := newTestDispatcher(t, m)
	reqCtx, cancel := context.WithCancel(context.Background())
	ctx := rcontext.Initial(config.NewDefaultConfig()).WithContext(reqCtx)
	cancel()

	d.Notify(ctx, EventCreated, testTransfer(types.EmailSender("ann@example.org")), "u")
	d.Wait()
	assert.Len(t, m.sent, 1)
}
