// Package protocol содержит wire-типы сообщений, общие для клиента и релея.
// Сообщения передаются по постоянному WebSocket-соединению в формате JSON
// с дискриминатором "type". Контент всегда передается как зашифрованный blob
// в base64 — релей его не расшифровывает.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Типы сообщений (значения дискриминатора "type")
const (
	TypeSlotUpdate     = "slot_update"
	TypeSlotUpdated    = "slot_updated"
	TypeHistoryPush    = "history_push"
	TypeHistoryNew     = "history_new"
	TypeHistoryDelete  = "history_delete"
	TypeHistoryDeleted = "history_deleted"
	TypeError          = "error"
)

// Envelope — общая обертка для определения типа входящего сообщения
type Envelope struct {
	Type string `json:"type"`
}

// SlotUpdate — клиент сообщает релею об изменении слота
type SlotUpdate struct {
	Type          string `json:"type"`
	SlotNumber    int    `json:"slot_number"`
	EncryptedBlob string `json:"encrypted_blob"` // base64
	Timestamp     int64  `json:"timestamp"`      // epoch millis по часам устройства
}

// SlotUpdated — релей рассылает изменение слота остальным устройствам
type SlotUpdated struct {
	Type          string    `json:"type"`
	SlotNumber    int       `json:"slot_number"`
	EncryptedBlob string    `json:"encrypted_blob"`
	UpdatedBy     uuid.UUID `json:"updated_by"`
	Timestamp     int64     `json:"timestamp"`
}

// HistoryPush — клиент отправляет новый элемент истории
type HistoryPush struct {
	Type          string    `json:"type"`
	ID            uuid.UUID `json:"id"`
	EncryptedBlob string    `json:"encrypted_blob"`
	ContentHash   string    `json:"content_hash"` // sha256 открытого текста, hex
}

// HistoryNew — релей рассылает новый элемент истории остальным устройствам
type HistoryNew struct {
	Type          string    `json:"type"`
	ID            uuid.UUID `json:"id"`
	EncryptedBlob string    `json:"encrypted_blob"`
	ContentHash   string    `json:"content_hash"`
	DeviceID      uuid.UUID `json:"device_id"`
	CreatedAt     int64     `json:"created_at"` // epoch millis устройства-автора
}

// HistoryDelete — клиент удаляет элемент истории (tombstone с таймстемпом)
type HistoryDelete struct {
	Type      string    `json:"type"`
	ID        uuid.UUID `json:"id"`
	Timestamp int64     `json:"timestamp"`
}

// HistoryDeleted — релей рассылает tombstone остальным устройствам
type HistoryDeleted struct {
	Type      string    `json:"type"`
	ID        uuid.UUID `json:"id"`
	DeviceID  uuid.UUID `json:"device_id"`
	Timestamp int64     `json:"timestamp"`
}

// ErrorMessage — адресная ошибка конкретному соединению
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewSlotUpdate заполняет дискриминатор
func NewSlotUpdate(slot int, blob string, ts int64) SlotUpdate {
	return SlotUpdate{Type: TypeSlotUpdate, SlotNumber: slot, EncryptedBlob: blob, Timestamp: ts}
}

// NewSlotUpdated заполняет дискриминатор
func NewSlotUpdated(slot int, blob string, by uuid.UUID, ts int64) SlotUpdated {
	return SlotUpdated{Type: TypeSlotUpdated, SlotNumber: slot, EncryptedBlob: blob, UpdatedBy: by, Timestamp: ts}
}

// NewHistoryPush заполняет дискриминатор
func NewHistoryPush(id uuid.UUID, blob, hash string) HistoryPush {
	return HistoryPush{Type: TypeHistoryPush, ID: id, EncryptedBlob: blob, ContentHash: hash}
}

// NewHistoryNew заполняет дискриминатор
func NewHistoryNew(id uuid.UUID, blob, hash string, device uuid.UUID, createdAt int64) HistoryNew {
	return HistoryNew{Type: TypeHistoryNew, ID: id, EncryptedBlob: blob, ContentHash: hash, DeviceID: device, CreatedAt: createdAt}
}

// NewHistoryDelete заполняет дискриминатор
func NewHistoryDelete(id uuid.UUID, ts int64) HistoryDelete {
	return HistoryDelete{Type: TypeHistoryDelete, ID: id, Timestamp: ts}
}

// NewHistoryDeleted заполняет дискриминатор
func NewHistoryDeleted(id, device uuid.UUID, ts int64) HistoryDeleted {
	return HistoryDeleted{Type: TypeHistoryDeleted, ID: id, DeviceID: device, Timestamp: ts}
}

// NewError заполняет дискриминатор
func NewError(msg string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: msg}
}

// Marshal сериализует сообщение в JSON
func Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return data, nil
}

// Decode разбирает входящее сообщение по дискриминатору.
// Возвращает одно из типизированных сообщений пакета.
func Decode(data []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case TypeSlotUpdate:
		var m SlotUpdate
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeSlotUpdated:
		var m SlotUpdated
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeHistoryPush:
		var m HistoryPush
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeHistoryNew:
		var m HistoryNew
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeHistoryDelete:
		var m HistoryDelete
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeHistoryDeleted:
		var m HistoryDeleted
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeError:
		var m ErrorMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", env.Type)
	}
}
