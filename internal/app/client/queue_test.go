package client

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/syncerr"
	"clipsync/internal/protocol"
)

type fakeSender struct {
	slotErr    error
	historyErr error
	deleteErr  error

	slots     []protocol.SlotUpdate
	histories []protocol.HistoryPush
	deletes   []protocol.HistoryDelete
}

func (f *fakeSender) SendSlotUpdate(_ context.Context, msg protocol.SlotUpdate) error {
	if f.slotErr != nil {
		return f.slotErr
	}
	f.slots = append(f.slots, msg)
	return nil
}

func (f *fakeSender) SendHistoryPush(_ context.Context, msg protocol.HistoryPush) error {
	if f.historyErr != nil {
		return f.historyErr
	}
	f.histories = append(f.histories, msg)
	return nil
}

func (f *fakeSender) SendHistoryDelete(_ context.Context, msg protocol.HistoryDelete) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, msg)
	return nil
}

func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewQueue(store, slog.Default())
}

func TestQueue_ReplayDeliversInOrder(t *testing.T) {
	q := newTestQueue(t)

	require.NoError(t, q.EnqueueSlotUpdate(protocol.NewSlotUpdate(1, "Zmlyc3Q=", 100)))
	require.NoError(t, q.EnqueueSlotUpdate(protocol.NewSlotUpdate(2, "c2Vjb25k", 200)))
	require.NoError(t, q.EnqueueHistoryPush(protocol.NewHistoryPush(uuid.New(), "dGhpcmQ=", "abc")))

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	sender := &fakeSender{}
	require.NoError(t, q.Replay(context.Background(), sender))

	require.Len(t, sender.slots, 2)
	assert.Equal(t, 1, sender.slots[0].SlotNumber)
	assert.Equal(t, 2, sender.slots[1].SlotNumber)
	require.Len(t, sender.histories, 1)

	n, err = q.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQueue_TransportFailureStopsPass(t *testing.T) {
	q := newTestQueue(t)

	require.NoError(t, q.EnqueueSlotUpdate(protocol.NewSlotUpdate(1, "Zmlyc3Q=", 100)))
	require.NoError(t, q.EnqueueHistoryDelete(protocol.NewHistoryDelete(uuid.New(), 200)))

	sender := &fakeSender{slotErr: syncerr.ErrTransport}
	err := q.Replay(context.Background(), sender)
	require.ErrorIs(t, err, syncerr.ErrTransport)

	// Порядок не нарушен: второй элемент не отправлялся
	assert.Empty(t, sender.deletes)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// После восстановления связи проход доставляет оба элемента
	sender.slotErr = nil
	require.NoError(t, q.Replay(context.Background(), sender))
	assert.Len(t, sender.slots, 1)
	assert.Len(t, sender.deletes, 1)
}

func TestQueue_AuthFailureIsFatal(t *testing.T) {
	q := newTestQueue(t)

	require.NoError(t, q.EnqueueSlotUpdate(protocol.NewSlotUpdate(1, "Zmlyc3Q=", 100)))

	sender := &fakeSender{slotErr: syncerr.ErrAuth}
	err := q.Replay(context.Background(), sender)
	require.ErrorIs(t, err, syncerr.ErrAuth)

	// Элемент остается в очереди без инкремента до dead-letter
	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestQueue_DeadLetterAfterMaxAttempts(t *testing.T) {
	q := newTestQueue(t)
	q.maxAttempts = 3

	require.NoError(t, q.EnqueueSlotUpdate(protocol.NewSlotUpdate(1, "Zmlyc3Q=", 100)))
	require.NoError(t, q.EnqueueSlotUpdate(protocol.NewSlotUpdate(2, "c2Vjb25k", 200)))

	sender := &fakeSender{slotErr: syncerr.ErrTransport}
	for i := 0; i < 2; i++ {
		require.Error(t, q.Replay(context.Background(), sender))
	}

	// Третья неудача переводит первый элемент в dead-letter,
	// проход продолжается и упирается во второй элемент
	err := q.Replay(context.Background(), sender)
	require.ErrorIs(t, err, syncerr.ErrTransport)

	dead, err := q.Dead()
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, 3, dead[0].Attempts)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestQueue_RetryDeadReturnsItemToQueue(t *testing.T) {
	q := newTestQueue(t)
	q.maxAttempts = 1

	require.NoError(t, q.EnqueueSlotUpdate(protocol.NewSlotUpdate(1, "Zmlyc3Q=", 100)))

	sender := &fakeSender{slotErr: syncerr.ErrTransport}
	require.NoError(t, q.Replay(context.Background(), sender))

	dead, err := q.Dead()
	require.NoError(t, err)
	require.Len(t, dead, 1)

	require.NoError(t, q.RetryDead(dead[0].Seq))

	sender.slotErr = nil
	require.NoError(t, q.Replay(context.Background(), sender))
	assert.Len(t, sender.slots, 1)

	dead, err = q.Dead()
	require.NoError(t, err)
	assert.Empty(t, dead)
}

func TestQueue_DiscardDead(t *testing.T) {
	q := newTestQueue(t)
	q.maxAttempts = 1

	require.NoError(t, q.EnqueueHistoryPush(protocol.NewHistoryPush(uuid.New(), "Zmlyc3Q=", "abc")))

	sender := &fakeSender{historyErr: syncerr.ErrTransport}
	require.NoError(t, q.Replay(context.Background(), sender))

	dead, err := q.Dead()
	require.NoError(t, err)
	require.Len(t, dead, 1)

	require.NoError(t, q.DiscardDead(dead[0].Seq))

	dead, err = q.Dead()
	require.NoError(t, err)
	assert.Empty(t, dead)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQueue_HistoryPushKeepsIDAcrossRetry(t *testing.T) {
	q := newTestQueue(t)

	id := uuid.New()
	require.NoError(t, q.EnqueueHistoryPush(protocol.NewHistoryPush(id, "Zmlyc3Q=", "abc")))

	sender := &fakeSender{historyErr: syncerr.ErrTransport}
	require.Error(t, q.Replay(context.Background(), sender))

	sender.historyErr = nil
	require.NoError(t, q.Replay(context.Background(), sender))

	require.Len(t, sender.histories, 1)
	assert.Equal(t, id, sender.histories[0].ID)
}
