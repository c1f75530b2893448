package syncdata

import (
	"time"

	"github.com/google/uuid"
)

// Slot — пронумерованный слот буфера обмена.
// Содержимое хранится зашифрованным blob-ом в base64, сервер его не читает.
type Slot struct {
	UserID        uuid.UUID `json:"-"`
	SlotNumber    int       `json:"slot_number"`
	EncryptedBlob string    `json:"encrypted_blob"`
	Timestamp     int64     `json:"timestamp"` // epoch millis по часам устройства-автора
	UpdatedBy     uuid.UUID `json:"updated_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HistoryItem — элемент истории буфера обмена
type HistoryItem struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"-"`
	EncryptedBlob string    `json:"encrypted_blob"`
	ContentHash   string    `json:"content_hash"` // sha256 открытого текста, hex
	CreatedBy     uuid.UUID `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
