package client

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound — элемент отсутствует в локальном хранилище
var ErrNotFound = errors.New("not found")

// SQLiteStorage — локальное состояние клиента: слоты, история,
// durable-очередь исходящих мутаций, карантин и настройки
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS slots (
			slot_number INTEGER PRIMARY KEY,
			encrypted TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			updated_by TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			encrypted TEXT NOT NULL,
			content_hash TEXT NOT NULL UNIQUE,
			device_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			deleted_at INTEGER
		);

		CREATE TABLE IF NOT EXISTS sync_queue (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			dead INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS quarantine (
			id TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			reason TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at DESC);
	`)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// ==================== Слоты ====================

func (s *SQLiteStorage) SaveSlot(slot LocalSlot) error {
	_, err := s.db.Exec(`
		INSERT INTO slots (slot_number, encrypted, updated_at, updated_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slot_number) DO UPDATE SET
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by
	`, slot.SlotNumber, slot.Encrypted, slot.UpdatedAt, slot.UpdatedBy)
	if err != nil {
		return fmt.Errorf("ошибка сохранения слота: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetSlot(slotNumber int) (LocalSlot, error) {
	var slot LocalSlot
	err := s.db.QueryRow(`
		SELECT slot_number, encrypted, updated_at, updated_by
		FROM slots WHERE slot_number = ?
	`, slotNumber).Scan(&slot.SlotNumber, &slot.Encrypted, &slot.UpdatedAt, &slot.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return slot, ErrNotFound
	}
	if err != nil {
		return slot, fmt.Errorf("ошибка чтения слота: %w", err)
	}
	return slot, nil
}

func (s *SQLiteStorage) ListSlots() ([]LocalSlot, error) {
	rows, err := s.db.Query(`
		SELECT slot_number, encrypted, updated_at, updated_by
		FROM slots ORDER BY slot_number
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения слотов: %w", err)
	}
	defer rows.Close()

	var slots []LocalSlot
	for rows.Next() {
		var slot LocalSlot
		if err := rows.Scan(&slot.SlotNumber, &slot.Encrypted, &slot.UpdatedAt, &slot.UpdatedBy); err != nil {
			return nil, fmt.Errorf("ошибка чтения слота: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// ==================== История ====================

// SaveHistoryItem вставляет элемент истории.
// Возвращает false для дубликата по content_hash.
func (s *SQLiteStorage) SaveHistoryItem(item LocalHistoryItem) (bool, error) {
	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO history (id, encrypted, content_hash, device_id, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.ID, item.Encrypted, item.ContentHash, item.DeviceID, item.CreatedAt, item.DeletedAt)
	if err != nil {
		return false, fmt.Errorf("ошибка сохранения элемента истории: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStorage) GetHistoryItem(id string) (LocalHistoryItem, error) {
	var item LocalHistoryItem
	err := s.db.QueryRow(`
		SELECT id, encrypted, content_hash, device_id, created_at, deleted_at
		FROM history WHERE id = ?
	`, id).Scan(&item.ID, &item.Encrypted, &item.ContentHash, &item.DeviceID, &item.CreatedAt, &item.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("ошибка чтения элемента истории: %w", err)
	}
	return item, nil
}

// ListHistory возвращает живые элементы истории, новые сначала
func (s *SQLiteStorage) ListHistory(limit, offset int) ([]LocalHistoryItem, error) {
	rows, err := s.db.Query(`
		SELECT id, encrypted, content_hash, device_id, created_at, deleted_at
		FROM history WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}
	defer rows.Close()

	var items []LocalHistoryItem
	for rows.Next() {
		var item LocalHistoryItem
		if err := rows.Scan(&item.ID, &item.Encrypted, &item.ContentHash, &item.DeviceID, &item.CreatedAt, &item.DeletedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения элемента истории: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListHistoryHashes возвращает хеши всех известных элементов,
// включая погашенные. Используется для дедупликации при слиянии.
func (s *SQLiteStorage) ListHistoryHashes() (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT content_hash FROM history`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения хешей истории: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes[h] = struct{}{}
	}
	return hashes, rows.Err()
}

// TombstoneHistoryItem помечает элемент удаленным с таймстемпом удаления
func (s *SQLiteStorage) TombstoneHistoryItem(id string, deletedAt int64) error {
	_, err := s.db.Exec(`
		UPDATE history SET deleted_at = ? WHERE id = ?
	`, deletedAt, id)
	if err != nil {
		return fmt.Errorf("ошибка пометки элемента удаленным: %w", err)
	}
	return nil
}

// ==================== Очередь ====================

func (s *SQLiteStorage) EnqueueMutation(id, kind string, payload []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_queue (id, kind, payload, created_at)
		VALUES (?, ?, ?, ?)
	`, id, kind, payload, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("ошибка постановки в очередь: %w", err)
	}
	return nil
}

// PeekQueue возвращает старейший живой элемент очереди
func (s *SQLiteStorage) PeekQueue() (QueueItem, error) {
	var item QueueItem
	err := s.db.QueryRow(`
		SELECT seq, id, kind, payload, created_at, attempts, dead
		FROM sync_queue WHERE dead = 0
		ORDER BY seq LIMIT 1
	`).Scan(&item.Seq, &item.ID, &item.Kind, &item.Payload, &item.CreatedAt, &item.Attempts, &item.Dead)
	if errors.Is(err, sql.ErrNoRows) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("ошибка чтения очереди: %w", err)
	}
	return item, nil
}

// DequeueItem удаляет подтвержденный элемент из очереди
func (s *SQLiteStorage) DequeueItem(seq int64) error {
	_, err := s.db.Exec(`DELETE FROM sync_queue WHERE seq = ?`, seq)
	if err != nil {
		return fmt.Errorf("ошибка удаления из очереди: %w", err)
	}
	return nil
}

// BumpAttempts увеличивает счетчик попыток и возвращает новое значение
func (s *SQLiteStorage) BumpAttempts(seq int64) (int, error) {
	_, err := s.db.Exec(`UPDATE sync_queue SET attempts = attempts + 1 WHERE seq = ?`, seq)
	if err != nil {
		return 0, fmt.Errorf("ошибка обновления попыток: %w", err)
	}
	var attempts int
	err = s.db.QueryRow(`SELECT attempts FROM sync_queue WHERE seq = ?`, seq).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения попыток: %w", err)
	}
	return attempts, nil
}

// MarkDead переводит элемент в dead-letter: он больше не ретраится,
// но остается видимым пользователю
func (s *SQLiteStorage) MarkDead(seq int64) error {
	_, err := s.db.Exec(`UPDATE sync_queue SET dead = 1 WHERE seq = ?`, seq)
	if err != nil {
		return fmt.Errorf("ошибка пометки dead-letter: %w", err)
	}
	return nil
}

// ListDead возвращает dead-letter элементы
func (s *SQLiteStorage) ListDead() ([]QueueItem, error) {
	rows, err := s.db.Query(`
		SELECT seq, id, kind, payload, created_at, attempts, dead
		FROM sync_queue WHERE dead = 1 ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения dead-letter: %w", err)
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		var item QueueItem
		if err := rows.Scan(&item.Seq, &item.ID, &item.Kind, &item.Payload, &item.CreatedAt, &item.Attempts, &item.Dead); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReviveDead возвращает dead-letter элемент в очередь с нулевым счетчиком
func (s *SQLiteStorage) ReviveDead(seq int64) error {
	_, err := s.db.Exec(`UPDATE sync_queue SET dead = 0, attempts = 0 WHERE seq = ?`, seq)
	if err != nil {
		return fmt.Errorf("ошибка возврата из dead-letter: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) QueueLen() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sync_queue WHERE dead = 0`).Scan(&n)
	return n, err
}

// ==================== Карантин ====================

func (s *SQLiteStorage) Quarantine(id string, payload []byte, reason string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO quarantine (id, payload, reason, created_at)
		VALUES (?, ?, ?, ?)
	`, id, payload, reason, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("ошибка помещения в карантин: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListQuarantine() ([]QuarantineItem, error) {
	rows, err := s.db.Query(`
		SELECT id, payload, reason, created_at FROM quarantine ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения карантина: %w", err)
	}
	defer rows.Close()

	var items []QuarantineItem
	for rows.Next() {
		var item QuarantineItem
		if err := rows.Scan(&item.ID, &item.Payload, &item.Reason, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ==================== Настройки ====================

func (s *SQLiteStorage) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("ошибка сохранения настройки: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения настройки: %w", err)
	}
	return value, nil
}

func (s *SQLiteStorage) DeleteSetting(key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("ошибка удаления настройки: %w", err)
	}
	return nil
}
