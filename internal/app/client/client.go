package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/config"
	"clipsync/internal/app/client/crypto"
	"clipsync/internal/domain/device"
	"clipsync/internal/protocol"
)

// App собирает клиент целиком: мастер-ключ, локальное хранилище,
// durable-очередь, HTTP-клиент и движок синхронизации
type App struct {
	config     *config.Config
	log        *slog.Logger
	keys       *crypto.MasterKeyManager
	cipher     *crypto.Cipher
	httpClient *httpClient
	storage    *SQLiteStorage
	queue      *Queue
}

// SlotView — расшифрованный слот для вывода пользователю
type SlotView struct {
	SlotNumber int
	Text       string
	UpdatedAt  time.Time
}

// HistoryView — расшифрованный элемент истории
type HistoryView struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	keys, err := crypto.NewMasterKeyManager(cfg.MasterKeyPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации мастер-ключа: %w", err)
	}

	storage, err := NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}

	app := &App{
		config:     cfg,
		log:        log,
		keys:       keys,
		cipher:     crypto.NewCipher(keys),
		httpClient: NewHTTPClient(cfg, log),
		storage:    storage,
		queue:      NewQueue(storage, log),
	}

	// Подхватываем сохраненный токен, если вход уже выполнен
	if token, err := storage.GetSetting(SettingToken); err == nil && token != "" {
		app.httpClient.SetToken(token)
	}

	if keys.IsInitialized() {
		if err := keys.Load(); err != nil {
			log.Warn("Не удалось загрузить мастер-ключ", "error", err)
		}
	}

	return app, nil
}

func (a *App) Close() error {
	a.keys.Lock()
	return a.storage.Close()
}

// IsAuthenticated проверяет наличие сохраненного токена
func (a *App) IsAuthenticated() bool {
	token, err := a.storage.GetSetting(SettingToken)
	return err == nil && token != ""
}

// HasDevice проверяет, зарегистрировано ли это устройство
func (a *App) HasDevice() bool {
	id, err := a.storage.GetSetting(SettingDeviceID)
	return err == nil && id != ""
}

// DeviceID возвращает идентификатор этого устройства
func (a *App) DeviceID() (string, error) {
	id, err := a.storage.GetSetting(SettingDeviceID)
	if err != nil {
		return "", fmt.Errorf("устройство не зарегистрировано. Выполните: clipsync devices register")
	}
	return id, nil
}

// Register создает аккаунт и генерирует мастер-ключ.
// Первое устройство аккаунта всегда проходит этот путь,
// остальные получают ключ через link-код.
func (a *App) Register(ctx context.Context, email, password string) error {
	userID, token, err := a.httpClient.Register(ctx, email, password)
	if err != nil {
		return err
	}

	if err := a.saveSession(userID, token); err != nil {
		return err
	}

	if !a.keys.IsInitialized() {
		if err := a.keys.Generate(); err != nil {
			return fmt.Errorf("ошибка генерации мастер-ключа: %w", err)
		}
		a.log.Info("Мастер-ключ сгенерирован", "path", a.config.MasterKeyPath)
	}

	a.log.Info("Пользователь зарегистрирован", "email", email)
	return nil
}

// Login выполняет вход. Мастер-ключ не передается: он либо уже
// лежит в файле, либо приедет через link-код с другого устройства.
func (a *App) Login(ctx context.Context, email, password string) error {
	userID, token, err := a.httpClient.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := a.saveSession(userID, token); err != nil {
		return err
	}

	a.log.Info("Вход выполнен", "email", email)
	return nil
}

// Logout удаляет токен и блокирует мастер-ключ в памяти.
// Файл ключа остается: данные должны переживать перелогин.
func (a *App) Logout() error {
	for _, key := range []string{SettingToken, SettingUserID, SettingDeviceID} {
		if err := a.storage.DeleteSetting(key); err != nil {
			return err
		}
	}
	a.keys.Lock()
	a.httpClient.SetToken("")
	return nil
}

func (a *App) saveSession(userID uuid.UUID, token string) error {
	if err := a.storage.SetSetting(SettingToken, token); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	if err := a.storage.SetSetting(SettingUserID, userID.String()); err != nil {
		return fmt.Errorf("ошибка сохранения пользователя: %w", err)
	}
	a.httpClient.SetToken(token)
	return nil
}

// RegisterDevice регистрирует это устройство и переключает клиент
// на device-токен. Только с ним доступны мутации и WebSocket.
func (a *App) RegisterDevice(ctx context.Context, name, kind string) error {
	deviceID, token, err := a.httpClient.RegisterDevice(ctx, name, kind)
	if err != nil {
		return err
	}

	if err := a.storage.SetSetting(SettingDeviceID, deviceID.String()); err != nil {
		return fmt.Errorf("ошибка сохранения устройства: %w", err)
	}
	if err := a.storage.SetSetting(SettingToken, token); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	a.httpClient.SetToken(token)

	a.log.Info("Устройство зарегистрировано", "device_id", deviceID, "name", name)
	return nil
}

// Devices возвращает все устройства аккаунта
func (a *App) Devices(ctx context.Context) ([]device.Device, error) {
	return a.httpClient.ListDevices(ctx)
}

// RevokeDevice отзывает устройство и все его сессии
func (a *App) RevokeDevice(ctx context.Context, id uuid.UUID) error {
	return a.httpClient.RevokeDevice(ctx, id)
}

// ==================== Слоты ====================

// SetSlot записывает текст в слот. Прежнее содержимое уходит
// в историю, мутация встает в очередь и доставляется при первой
// возможности — офлайн не ошибка.
func (a *App) SetSlot(ctx context.Context, slotNumber int, text string) error {
	deviceID, err := a.DeviceID()
	if err != nil {
		return err
	}

	blob, err := a.cipher.EncryptString(text)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()

	// Прежнее содержимое слота не теряется
	if old, err := a.storage.GetSlot(slotNumber); err == nil && old.Encrypted != blob {
		if err := a.preserveToHistory(old.Encrypted, old.UpdatedBy, old.UpdatedAt); err != nil {
			a.log.Warn("Не удалось сохранить прежнее содержимое слота", "error", err)
		}
	}

	if err := a.storage.SaveSlot(LocalSlot{
		SlotNumber: slotNumber,
		Encrypted:  blob,
		UpdatedAt:  now,
		UpdatedBy:  deviceID,
	}); err != nil {
		return err
	}

	if err := a.queue.EnqueueSlotUpdate(protocol.NewSlotUpdate(slotNumber, blob, now)); err != nil {
		return err
	}
	a.replayBestEffort(ctx)
	return nil
}

// GetSlot возвращает расшифрованное содержимое слота
func (a *App) GetSlot(slotNumber int) (SlotView, error) {
	slot, err := a.storage.GetSlot(slotNumber)
	if errors.Is(err, ErrNotFound) {
		return SlotView{}, fmt.Errorf("слот %d пуст", slotNumber)
	}
	if err != nil {
		return SlotView{}, err
	}

	text, err := a.cipher.DecryptString(slot.Encrypted)
	if err != nil {
		return SlotView{}, fmt.Errorf("ошибка расшифровки слота: %w", err)
	}

	return SlotView{
		SlotNumber: slotNumber,
		Text:       text,
		UpdatedAt:  time.UnixMilli(slot.UpdatedAt),
	}, nil
}

// ListSlots возвращает все непустые слоты
func (a *App) ListSlots() ([]SlotView, error) {
	slots, err := a.storage.ListSlots()
	if err != nil {
		return nil, err
	}

	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		text, err := a.cipher.DecryptString(slot.Encrypted)
		if err != nil {
			a.log.Warn("Слот не расшифровывается", "slot", slot.SlotNumber, "error", err)
			continue
		}
		views = append(views, SlotView{
			SlotNumber: slot.SlotNumber,
			Text:       text,
			UpdatedAt:  time.UnixMilli(slot.UpdatedAt),
		})
	}
	return views, nil
}

// ==================== История ====================

// PushHistory добавляет текст в историю и ставит его в очередь
func (a *App) PushHistory(ctx context.Context, text string) error {
	deviceID, err := a.DeviceID()
	if err != nil {
		return err
	}

	blob, err := a.cipher.EncryptString(text)
	if err != nil {
		return err
	}

	id := uuid.New()
	inserted, err := a.storage.SaveHistoryItem(LocalHistoryItem{
		ID:          id.String(),
		Encrypted:   blob,
		ContentHash: crypto.ContentHash(text),
		DeviceID:    deviceID,
		CreatedAt:   time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		// Такой текст уже есть, дубликат не отправляем
		return nil
	}

	if err := a.queue.EnqueueHistoryPush(protocol.NewHistoryPush(id, blob, crypto.ContentHash(text))); err != nil {
		return err
	}
	a.replayBestEffort(ctx)
	return nil
}

// History возвращает расшифрованную страницу истории, новые сначала
func (a *App) History(limit, offset int) ([]HistoryView, error) {
	items, err := a.storage.ListHistory(limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]HistoryView, 0, len(items))
	for _, item := range items {
		text, err := a.cipher.DecryptString(item.Encrypted)
		if err != nil {
			a.log.Warn("Элемент истории не расшифровывается", "id", item.ID, "error", err)
			continue
		}
		views = append(views, HistoryView{
			ID:        item.ID,
			Text:      text,
			CreatedAt: time.UnixMilli(item.CreatedAt),
		})
	}
	return views, nil
}

// DeleteHistory ставит tombstone локально и рассылает его
// остальным устройствам через очередь
func (a *App) DeleteHistory(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UnixMilli()
	if err := a.storage.TombstoneHistoryItem(id.String(), now); err != nil {
		return err
	}

	if err := a.queue.EnqueueHistoryDelete(protocol.NewHistoryDelete(id, now)); err != nil {
		return err
	}
	a.replayBestEffort(ctx)
	return nil
}

// SetHistorySync включает или выключает синхронизацию истории.
// Слоты синхронизируются всегда.
func (a *App) SetHistorySync(enabled bool) error {
	val := "1"
	if !enabled {
		val = "0"
	}
	return a.storage.SetSetting(SettingHistorySyncEnabled, val)
}

// ==================== Link ====================

// LinkGenerate создает одноразовый код передачи мастер-ключа.
// Код показывается только пользователю, сервер видит лишь его хеш.
func (a *App) LinkGenerate(ctx context.Context) (code string, expiresAt time.Time, err error) {
	code, err = crypto.GenerateCode()
	if err != nil {
		return "", time.Time{}, err
	}

	pkg, err := a.keys.ExportForLink(code)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("ошибка упаковки мастер-ключа: %w", err)
	}

	expiresAt, err = a.httpClient.LinkCreate(ctx, pkg.CodeHash, pkg.Salt, pkg.EncryptedKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return code, expiresAt, nil
}

// LinkRedeem обменивает код на мастер-ключ с другого устройства.
// Успешный обмен заменяет локальный ключ.
func (a *App) LinkRedeem(ctx context.Context, code string) error {
	salt, encryptedKey, err := a.httpClient.LinkRedeem(ctx, crypto.CodeHash(code))
	if err != nil {
		return err
	}

	if err := a.keys.ImportFromLink(code, salt, encryptedKey); err != nil {
		return fmt.Errorf("ошибка импорта мастер-ключа: %w", err)
	}

	a.log.Info("Мастер-ключ получен по link-коду")
	return nil
}

// ==================== Синхронизация ====================

// RunSync запускает движок синхронизации до отмены контекста
func (a *App) RunSync(ctx context.Context) error {
	deviceID, err := a.DeviceID()
	if err != nil {
		return err
	}
	token, err := a.storage.GetSetting(SettingToken)
	if err != nil {
		return fmt.Errorf("требуется вход: clipsync auth login")
	}

	dial := func(ctx context.Context) (relayConn, error) {
		return dialWS(ctx, a.config.ServerURL, token, a.log)
	}

	engine := NewEngine(a.storage, a.queue, a.httpClient, dial, a.cipher, deviceID, a.log)

	go func() {
		for status := range engine.Status() {
			if status.Err != nil {
				a.log.Warn("Состояние синхронизации", "state", status.State.String(), "error", status.Err)
				continue
			}
			a.log.Info("Состояние синхронизации", "state", status.State.String())
		}
	}()

	return engine.Run(ctx)
}

// SyncOnce прогоняет очередь один раз, без WebSocket
func (a *App) SyncOnce(ctx context.Context) error {
	return a.queue.Replay(ctx, a.httpClient)
}

// QueueLen возвращает число недоставленных мутаций
func (a *App) QueueLen() (int, error) {
	return a.queue.Len()
}

// DeadLetters возвращает мутации, исчерпавшие попытки доставки
func (a *App) DeadLetters() ([]QueueItem, error) {
	return a.queue.Dead()
}

// RetryDead возвращает dead-letter мутацию в очередь
func (a *App) RetryDead(seq int64) error {
	return a.queue.RetryDead(seq)
}

// DiscardDead окончательно удаляет dead-letter мутацию
func (a *App) DiscardDead(seq int64) error {
	return a.queue.DiscardDead(seq)
}

// Quarantined возвращает blob-ы, не прошедшие расшифровку
func (a *App) Quarantined() ([]QuarantineItem, error) {
	return a.storage.ListQuarantine()
}

// CheckConnection проверяет доступность сервера
func (a *App) CheckConnection(ctx context.Context) error {
	return a.httpClient.HealthCheck(ctx)
}

func (a *App) preserveToHistory(blob, deviceID string, ts int64) error {
	text, err := a.cipher.DecryptString(blob)
	if err != nil {
		return err
	}
	_, err = a.storage.SaveHistoryItem(LocalHistoryItem{
		ID:          uuid.NewString(),
		Encrypted:   blob,
		ContentHash: crypto.ContentHash(text),
		DeviceID:    deviceID,
		CreatedAt:   ts,
	})
	return err
}

// replayBestEffort пытается сразу протолкнуть очередь.
// Офлайн не ошибка: мутация дождется следующего подключения.
func (a *App) replayBestEffort(ctx context.Context) {
	if err := a.queue.Replay(ctx, a.httpClient); err != nil {
		a.log.Debug("Очередь будет доставлена позже", "error", err)
	}
}
