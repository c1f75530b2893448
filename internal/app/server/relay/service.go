package relay

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/syncdata"
	"clipsync/internal/protocol"
)

// Servicer — единый путь мутаций: сначала запись в хранилище, затем
// рассылка остальным устройствам. Через него проходят и REST-запросы,
// и сообщения, пришедшие по WebSocket.
type Servicer interface {
	UpdateSlot(ctx context.Context, userID, deviceID uuid.UUID, slotNumber int, blob string, timestamp int64) (syncdata.Slot, error)
	PushHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, blob, contentHash string) (syncdata.HistoryItem, bool, error)
	DeleteHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, timestamp int64) error
}

type Service struct {
	data syncdata.Servicer
	hub  *Hub
	log  *slog.Logger
}

func NewService(data syncdata.Servicer, hub *Hub, log *slog.Logger) *Service {
	return &Service{
		data: data,
		hub:  hub,
		log:  log,
	}
}

// UpdateSlot сохраняет слот и рассылает slot_updated
func (s *Service) UpdateSlot(ctx context.Context, userID, deviceID uuid.UUID, slotNumber int, blob string, timestamp int64) (syncdata.Slot, error) {
	slot, err := s.data.UpsertSlot(ctx, userID, deviceID, slotNumber, blob, timestamp)
	if err != nil {
		return syncdata.Slot{}, err
	}

	s.hub.Broadcast(userID, deviceID,
		protocol.NewSlotUpdated(slot.SlotNumber, slot.EncryptedBlob, deviceID, slot.Timestamp))
	return slot, nil
}

// PushHistory сохраняет элемент истории и рассылает history_new.
// Дубликат по content_hash не рассылается.
func (s *Service) PushHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, blob, contentHash string) (syncdata.HistoryItem, bool, error) {
	item, inserted, err := s.data.PushHistory(ctx, userID, deviceID, itemID, blob, contentHash)
	if err != nil {
		return syncdata.HistoryItem{}, false, err
	}

	if inserted {
		s.hub.Broadcast(userID, deviceID,
			protocol.NewHistoryNew(item.ID, item.EncryptedBlob, item.ContentHash, deviceID, item.CreatedAt.UnixMilli()))
	}
	return item, inserted, nil
}

// DeleteHistory удаляет элемент истории и рассылает history_deleted
func (s *Service) DeleteHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, timestamp int64) error {
	if err := s.data.DeleteHistory(ctx, userID, itemID); err != nil {
		return err
	}

	if timestamp <= 0 {
		timestamp = time.Now().UnixMilli()
	}
	s.hub.Broadcast(userID, deviceID, protocol.NewHistoryDeleted(itemID, deviceID, timestamp))
	return nil
}
