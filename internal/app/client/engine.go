package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/crypto"
	"clipsync/internal/app/client/syncerr"
	"clipsync/internal/domain/conflict"
	"clipsync/internal/domain/syncdata"
	"clipsync/internal/protocol"
)

// State — состояние движка синхронизации
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateSyncing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSyncing:
		return "syncing"
	default:
		return "disconnected"
	}
}

// Status — обновление состояния для UI
type Status struct {
	State State
	Err   error
}

const (
	defaultBackoffBase = 1 * time.Second
	defaultBackoffCap  = 30 * time.Second
	replayInterval     = 15 * time.Second
	historyPageSize    = 200
)

// relayConn — абстракция WebSocket-соединения с релеем
type relayConn interface {
	Messages() <-chan any
	Close()
}

// remote — серверные операции, нужные движку
type remote interface {
	Sender
	GetSlots(ctx context.Context) ([]syncdata.Slot, error)
	GetHistory(ctx context.Context, limit, offset int) ([]syncdata.HistoryItem, error)
}

// Engine — движок синхронизации: примиряет локальное состояние
// с серверным при подключении, прогоняет очередь и применяет
// сообщения релея в реальном времени
type Engine struct {
	store    *SQLiteStorage
	queue    *Queue
	remote   remote
	dial     func(ctx context.Context) (relayConn, error)
	cipher   *crypto.Cipher
	deviceID string
	log      *slog.Logger

	status chan Status

	backoffBase time.Duration
	backoffCap  time.Duration
}

func NewEngine(
	store *SQLiteStorage,
	queue *Queue,
	rem remote,
	dial func(ctx context.Context) (relayConn, error),
	cipher *crypto.Cipher,
	deviceID string,
	log *slog.Logger,
) *Engine {
	return &Engine{
		store:       store,
		queue:       queue,
		remote:      rem,
		dial:        dial,
		cipher:      cipher,
		deviceID:    deviceID,
		log:         log,
		status:      make(chan Status, 8),
		backoffBase: defaultBackoffBase,
		backoffCap:  defaultBackoffCap,
	}
}

// Status отдает обновления состояния. Канал буферизован,
// движок никогда не блокируется на нем.
func (e *Engine) Status() <-chan Status {
	return e.status
}

// Run крутит цикл подключения до отмены контекста. Возвращается
// досрочно только при фатальной ошибке аутентификации: дальше
// нужен повторный логин, реконнект не поможет.
func (e *Engine) Run(ctx context.Context) error {
	attempt := 0
	for {
		e.setStatus(StateConnecting, nil)

		conn, err := e.dial(ctx)
		if err != nil {
			if errors.Is(err, syncerr.ErrAuth) {
				e.setStatus(StateDisconnected, err)
				return err
			}
			e.setStatus(StateDisconnected, err)
			if werr := e.wait(ctx, e.backoff(attempt)); werr != nil {
				return werr
			}
			attempt++
			continue
		}

		synced, err := e.serve(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			e.setStatus(StateDisconnected, nil)
			return ctx.Err()
		}
		if errors.Is(err, syncerr.ErrAuth) {
			e.setStatus(StateDisconnected, err)
			return err
		}

		if synced {
			attempt = 0
		} else {
			attempt++
		}

		e.setStatus(StateDisconnected, err)
		if werr := e.wait(ctx, e.backoff(attempt)); werr != nil {
			return werr
		}
	}
}

// serve выполняет полный цикл на одном соединении: примирение
// состояния, прогон очереди, затем применение сообщений релея.
// Возвращает synced=true, если начальное примирение прошло.
func (e *Engine) serve(ctx context.Context, conn relayConn) (bool, error) {
	if err := e.reconcile(ctx); err != nil {
		return false, err
	}
	if err := e.queue.Replay(ctx, e.remote); err != nil {
		return false, err
	}

	e.setStatus(StateSyncing, nil)

	ticker := time.NewTicker(replayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-conn.Messages():
			if !ok {
				return true, fmt.Errorf("%w: соединение с релеем закрыто", syncerr.ErrTransport)
			}
			if err := e.apply(msg); err != nil {
				return true, err
			}
		case <-ticker.C:
			if err := e.queue.Replay(ctx, e.remote); err != nil {
				if errors.Is(err, syncerr.ErrAuth) {
					return true, err
				}
				// Транспортный сбой дождется следующего тика
				e.log.Debug("Прогон очереди не прошел", "error", err)
			}
		}
	}
}

// reconcile приводит локальное состояние к согласию с сервером:
// слоты сливаются детерминированно, история доливается по хешам
func (e *Engine) reconcile(ctx context.Context) error {
	slots, err := e.remote.GetSlots(ctx)
	if err != nil {
		return err
	}
	for _, s := range slots {
		if err := e.mergeRemoteSlot(s); err != nil {
			return err
		}
	}

	if !e.historySyncEnabled() {
		return nil
	}
	return e.reconcileHistory(ctx)
}

func (e *Engine) reconcileHistory(ctx context.Context) error {
	hashes, err := e.store.ListHistoryHashes()
	if err != nil {
		return err
	}

	for offset := 0; ; offset += historyPageSize {
		items, err := e.remote.GetHistory(ctx, historyPageSize, offset)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		for _, item := range items {
			if !conflict.HistoryWanted(hashes, item.ContentHash) {
				continue
			}
			if _, err := e.cipher.DecryptString(item.EncryptedBlob); err != nil {
				e.quarantine(item.ID.String(), item.EncryptedBlob, "история не расшифровывается")
				continue
			}
			if _, err := e.store.SaveHistoryItem(LocalHistoryItem{
				ID:          item.ID.String(),
				Encrypted:   item.EncryptedBlob,
				ContentHash: item.ContentHash,
				DeviceID:    item.CreatedBy.String(),
				CreatedAt:   item.CreatedAt.UnixMilli(),
			}); err != nil {
				return err
			}
			hashes[item.ContentHash] = struct{}{}
		}

		if len(items) < historyPageSize {
			return nil
		}
	}
}

// mergeRemoteSlot сливает серверную версию слота с локальной.
// Проигравшая версия не теряется, а уходит в локальную историю.
func (e *Engine) mergeRemoteSlot(s syncdata.Slot) error {
	local, err := e.store.GetSlot(s.SlotNumber)
	hasLocal := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	remoteV := conflict.SlotVersion{
		EncryptedBlob: s.EncryptedBlob,
		Timestamp:     s.Timestamp,
		DeviceID:      s.UpdatedBy.String(),
	}

	if !hasLocal {
		return e.takeRemoteSlot(s.SlotNumber, remoteV)
	}

	localV := conflict.SlotVersion{
		EncryptedBlob: local.Encrypted,
		Timestamp:     local.UpdatedAt,
		DeviceID:      local.UpdatedBy,
	}

	res := conflict.MergeSlot(localV, remoteV)
	if res.Decision == conflict.KeepLocal {
		e.preserveLoser(res.Loser)
		return nil
	}

	if err := e.takeRemoteSlot(s.SlotNumber, remoteV); err != nil {
		return err
	}
	e.preserveLoser(res.Loser)
	return nil
}

func (e *Engine) takeRemoteSlot(slotNumber int, v conflict.SlotVersion) error {
	if _, err := e.cipher.DecryptString(v.EncryptedBlob); err != nil {
		e.quarantine(fmt.Sprintf("slot-%d", slotNumber), v.EncryptedBlob, "слот не расшифровывается")
		return nil
	}
	return e.store.SaveSlot(LocalSlot{
		SlotNumber: slotNumber,
		Encrypted:  v.EncryptedBlob,
		UpdatedAt:  v.Timestamp,
		UpdatedBy:  v.DeviceID,
	})
}

// preserveLoser сохраняет проигравшую версию слота в локальную
// историю. Сбой здесь не останавливает синхронизацию.
func (e *Engine) preserveLoser(v conflict.SlotVersion) {
	if v.EncryptedBlob == "" {
		return
	}

	plaintext, err := e.cipher.DecryptString(v.EncryptedBlob)
	if err != nil {
		e.quarantine(uuid.NewString(), v.EncryptedBlob, "проигравшая версия не расшифровывается")
		return
	}

	if _, err := e.store.SaveHistoryItem(LocalHistoryItem{
		ID:          uuid.NewString(),
		Encrypted:   v.EncryptedBlob,
		ContentHash: crypto.ContentHash(plaintext),
		DeviceID:    v.DeviceID,
		CreatedAt:   v.Timestamp,
	}); err != nil {
		e.log.Warn("Не удалось сохранить проигравшую версию", "error", err)
	}
}

// apply обрабатывает одно сообщение релея
func (e *Engine) apply(msg any) error {
	switch m := msg.(type) {
	case protocol.SlotUpdated:
		if m.UpdatedBy.String() == e.deviceID {
			return nil
		}
		return e.mergeRemoteSlot(syncdata.Slot{
			SlotNumber:    m.SlotNumber,
			EncryptedBlob: m.EncryptedBlob,
			Timestamp:     m.Timestamp,
			UpdatedBy:     m.UpdatedBy,
		})

	case protocol.HistoryNew:
		if m.DeviceID.String() == e.deviceID {
			return nil
		}
		if !e.historySyncEnabled() {
			return nil
		}
		if _, err := e.cipher.DecryptString(m.EncryptedBlob); err != nil {
			e.quarantine(m.ID.String(), m.EncryptedBlob, "история не расшифровывается")
			return nil
		}
		// Время создания берется от устройства-автора: tombstone
		// сравнивается именно с ним, а не с моментом получения
		createdAt := m.CreatedAt
		if createdAt <= 0 {
			createdAt = time.Now().UnixMilli()
		}
		_, err := e.store.SaveHistoryItem(LocalHistoryItem{
			ID:          m.ID.String(),
			Encrypted:   m.EncryptedBlob,
			ContentHash: m.ContentHash,
			DeviceID:    m.DeviceID.String(),
			CreatedAt:   createdAt,
		})
		return err

	case protocol.HistoryDeleted:
		item, err := e.store.GetHistoryItem(m.ID.String())
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !conflict.ResolveTombstone(m.Timestamp, item.CreatedAt) {
			return nil
		}
		return e.store.TombstoneHistoryItem(m.ID.String(), m.Timestamp)

	case protocol.ErrorMessage:
		e.log.Warn("Ошибка от релея", "message", m.Message)
		return nil

	default:
		e.log.Debug("Неожиданное сообщение релея", "type", fmt.Sprintf("%T", msg))
		return nil
	}
}

// quarantine откладывает нечитаемый blob. Карантин не дропается
// молча: пользователь видит его в списке и решает судьбу сам.
func (e *Engine) quarantine(id string, blob string, reason string) {
	e.log.Warn("Blob отправлен в карантин", "id", id, "reason", reason)
	if err := e.store.Quarantine(id, []byte(blob), reason); err != nil {
		e.log.Error("Не удалось сохранить в карантин", "error", err)
	}
}

func (e *Engine) historySyncEnabled() bool {
	val, err := e.store.GetSetting(SettingHistorySyncEnabled)
	if err != nil {
		// По умолчанию история синхронизируется
		return true
	}
	return val != "0" && val != "false"
}

// backoff возвращает задержку реконнекта: экспонента от базы
// до потолка, с джиттером ±20%, чтобы устройства не ломились
// на сервер одновременно
func (e *Engine) backoff(attempt int) time.Duration {
	d := e.backoffBase
	for i := 0; i < attempt && d < e.backoffCap; i++ {
		d *= 2
	}
	if d > e.backoffCap {
		d = e.backoffCap
	}

	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * jitter)
}

func (e *Engine) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) setStatus(state State, err error) {
	select {
	case e.status <- Status{State: state, Err: err}:
	default:
	}
}
