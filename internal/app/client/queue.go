package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/syncerr"
	"clipsync/internal/protocol"
)

const defaultMaxAttempts = 10

// Sender доставляет мутацию на релей. Успешный возврат — это ack:
// элемент можно удалять из очереди.
type Sender interface {
	SendSlotUpdate(ctx context.Context, msg protocol.SlotUpdate) error
	SendHistoryPush(ctx context.Context, msg protocol.HistoryPush) error
	SendHistoryDelete(ctx context.Context, msg protocol.HistoryDelete) error
}

// Queue — durable FIFO исходящих мутаций поверх sync_queue.
// Постановка синхронна: мутация сначала на диске, потом в сети.
type Queue struct {
	store       *SQLiteStorage
	log         *slog.Logger
	maxAttempts int
}

func NewQueue(store *SQLiteStorage, log *slog.Logger) *Queue {
	return &Queue{
		store:       store,
		log:         log,
		maxAttempts: defaultMaxAttempts,
	}
}

// EnqueueSlotUpdate ставит изменение слота в очередь
func (q *Queue) EnqueueSlotUpdate(msg protocol.SlotUpdate) error {
	payload, err := protocol.Marshal(msg)
	if err != nil {
		return err
	}
	return q.store.EnqueueMutation(uuid.NewString(), QueueKindSlotUpdate, payload)
}

// EnqueueHistoryPush ставит новый элемент истории в очередь.
// ID элемента фиксируется до отправки и переживает ретраи.
func (q *Queue) EnqueueHistoryPush(msg protocol.HistoryPush) error {
	payload, err := protocol.Marshal(msg)
	if err != nil {
		return err
	}
	return q.store.EnqueueMutation(msg.ID.String(), QueueKindHistoryPush, payload)
}

// EnqueueHistoryDelete ставит удаление элемента истории в очередь
func (q *Queue) EnqueueHistoryDelete(msg protocol.HistoryDelete) error {
	payload, err := protocol.Marshal(msg)
	if err != nil {
		return err
	}
	return q.store.EnqueueMutation(msg.ID.String(), QueueKindHistoryDelete, payload)
}

// Replay прогоняет очередь строго по порядку. Успешная доставка
// удаляет элемент; транспортный сбой останавливает проход, чтобы
// не нарушить порядок; исчерпавший попытки элемент уходит
// в dead-letter, и проход продолжается.
func (q *Queue) Replay(ctx context.Context, sender Sender) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		item, err := q.store.PeekQueue()
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := q.send(ctx, sender, item); err != nil {
			// Ошибка аутентификации фатальна для всей сессии
			if errors.Is(err, syncerr.ErrAuth) {
				return err
			}

			attempts, berr := q.store.BumpAttempts(item.Seq)
			if berr != nil {
				return berr
			}
			if attempts >= q.maxAttempts {
				q.log.Warn("queue item dead-lettered",
					"seq", item.Seq, "kind", item.Kind, "attempts", attempts)
				if derr := q.store.MarkDead(item.Seq); derr != nil {
					return derr
				}
				continue
			}
			return err
		}

		if err := q.store.DequeueItem(item.Seq); err != nil {
			return err
		}
	}
}

func (q *Queue) send(ctx context.Context, sender Sender, item QueueItem) error {
	msg, err := protocol.Decode(item.Payload)
	if err != nil {
		// Нечитаемый payload не имеет шансов на доставку
		return fmt.Errorf("%w: %v", syncerr.ErrIntegrity, err)
	}

	switch m := msg.(type) {
	case protocol.SlotUpdate:
		return sender.SendSlotUpdate(ctx, m)
	case protocol.HistoryPush:
		return sender.SendHistoryPush(ctx, m)
	case protocol.HistoryDelete:
		return sender.SendHistoryDelete(ctx, m)
	default:
		return fmt.Errorf("%w: unexpected queue item kind %s", syncerr.ErrIntegrity, item.Kind)
	}
}

// Len возвращает число живых элементов в очереди
func (q *Queue) Len() (int, error) {
	return q.store.QueueLen()
}

// Dead возвращает dead-letter элементы
func (q *Queue) Dead() ([]QueueItem, error) {
	return q.store.ListDead()
}

// RetryDead возвращает dead-letter элемент в очередь
func (q *Queue) RetryDead(seq int64) error {
	return q.store.ReviveDead(seq)
}

// DiscardDead окончательно удаляет dead-letter элемент
func (q *Queue) DiscardDead(seq int64) error {
	return q.store.DequeueItem(seq)
}
