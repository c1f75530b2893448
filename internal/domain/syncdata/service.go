package syncdata

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ServiceConfig — лимиты сервиса синхронизации
type ServiceConfig struct {
	SlotCount   int // количество слотов на пользователя
	MaxBlobSize int // максимальный размер blob-а в байтах (base64)
}

type Servicer interface {
	// UpsertSlot записывает слот и возвращает его сохраненное состояние
	UpsertSlot(ctx context.Context, userID, deviceID uuid.UUID, slotNumber int, blob string, timestamp int64) (Slot, error)

	// ListSlots возвращает все занятые слоты пользователя
	ListSlots(ctx context.Context, userID uuid.UUID) ([]Slot, error)

	// PushHistory добавляет элемент истории.
	// inserted=false означает дубликат по content_hash, не ошибку.
	PushHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, blob, contentHash string) (HistoryItem, bool, error)

	// ListHistory возвращает страницу истории, новые сначала
	ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]HistoryItem, error)

	// DeleteHistory удаляет элемент истории
	DeleteHistory(ctx context.Context, userID, itemID uuid.UUID) error
}

type Service struct {
	repo   Repository
	log    *slog.Logger
	config ServiceConfig
}

func NewService(repo Repository, log *slog.Logger, config ServiceConfig) *Service {
	if config.SlotCount <= 0 {
		config.SlotCount = 10
	}
	if config.MaxBlobSize <= 0 {
		config.MaxBlobSize = 64 * 1024
	}

	return &Service{
		repo:   repo,
		log:    log,
		config: config,
	}
}

// UpsertSlot записывает слот и возвращает его сохраненное состояние
func (s *Service) UpsertSlot(ctx context.Context, userID, deviceID uuid.UUID, slotNumber int, blob string, timestamp int64) (Slot, error) {
	if slotNumber < 1 || slotNumber > s.config.SlotCount {
		return Slot{}, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slotNumber)
	}
	if len(blob) > s.config.MaxBlobSize {
		return Slot{}, fmt.Errorf("%w: %d bytes", ErrBlobTooLarge, len(blob))
	}
	if blob == "" {
		return Slot{}, fmt.Errorf("%w: empty blob", ErrInvalidInput)
	}
	if timestamp <= 0 {
		timestamp = time.Now().UnixMilli()
	}

	slot := Slot{
		UserID:        userID,
		SlotNumber:    slotNumber,
		EncryptedBlob: blob,
		Timestamp:     timestamp,
		UpdatedBy:     deviceID,
		UpdatedAt:     time.Now(),
	}

	if err := s.repo.UpsertSlot(ctx, slot); err != nil {
		return Slot{}, fmt.Errorf("upsert slot: %w", err)
	}

	s.log.Debug("slot updated", "user_id", userID, "slot", slotNumber, "device_id", deviceID)
	return slot, nil
}

// ListSlots возвращает все занятые слоты пользователя
func (s *Service) ListSlots(ctx context.Context, userID uuid.UUID) ([]Slot, error) {
	slots, err := s.repo.ListSlots(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// PushHistory добавляет элемент истории с дедупликацией по content_hash
func (s *Service) PushHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, blob, contentHash string) (HistoryItem, bool, error) {
	if blob == "" || contentHash == "" {
		return HistoryItem{}, false, fmt.Errorf("%w: blob and content_hash required", ErrInvalidInput)
	}
	if len(blob) > s.config.MaxBlobSize {
		return HistoryItem{}, false, fmt.Errorf("%w: %d bytes", ErrBlobTooLarge, len(blob))
	}
	if itemID == uuid.Nil {
		itemID = uuid.New()
	}

	item := HistoryItem{
		ID:            itemID,
		UserID:        userID,
		EncryptedBlob: blob,
		ContentHash:   contentHash,
		CreatedBy:     deviceID,
		CreatedAt:     time.Now(),
	}

	inserted, err := s.repo.InsertHistory(ctx, item)
	if err != nil {
		return HistoryItem{}, false, fmt.Errorf("insert history: %w", err)
	}
	if !inserted {
		s.log.Debug("history item deduplicated", "user_id", userID, "content_hash", contentHash)
	}

	return item, inserted, nil
}

// ListHistory возвращает страницу истории, новые сначала
func (s *Service) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]HistoryItem, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.ListHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

// DeleteHistory удаляет элемент истории
func (s *Service) DeleteHistory(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.repo.DeleteHistory(ctx, userID, itemID); err != nil {
		return err
	}
	s.log.Debug("history item deleted", "user_id", userID, "item_id", itemID)
	return nil
}
