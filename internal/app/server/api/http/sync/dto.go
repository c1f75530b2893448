package sync

import (
	"github.com/google/uuid"

	"clipsync/internal/domain/syncdata"
)

type listSlotsOutput struct {
	Body SlotsResponse
}

type SlotsResponse struct {
	Slots  []syncdata.Slot `json:"slots"`
	Status string          `json:"status"`
}

type updateSlotInput struct {
	Number int `path:"number" doc:"Номер слота, начиная с 1"`
	Body   SlotUpdateRequest
}

type SlotUpdateRequest struct {
	EncryptedBlob string `json:"encrypted_blob" doc:"Зашифрованное содержимое, base64"`
	Timestamp     int64  `json:"timestamp" doc:"Момент изменения на устройстве, epoch millis"`
}

type updateSlotOutput struct {
	Body SlotResponse
}

type SlotResponse struct {
	Slot   syncdata.Slot `json:"slot"`
	Status string        `json:"status"`
}

type listHistoryInput struct {
	Limit  int `query:"limit" doc:"Размер страницы, по умолчанию 50, максимум 200"`
	Offset int `query:"offset" doc:"Смещение от начала, новые сначала"`
}

type listHistoryOutput struct {
	Body HistoryResponse
}

type HistoryResponse struct {
	Items  []syncdata.HistoryItem `json:"items"`
	Status string                 `json:"status"`
}

type pushHistoryInput struct {
	Body HistoryPushRequest
}

type HistoryPushRequest struct {
	ID            uuid.UUID `json:"id,omitempty" doc:"ID элемента, генерируется сервером если пуст"`
	EncryptedBlob string    `json:"encrypted_blob" doc:"Зашифрованное содержимое, base64"`
	ContentHash   string    `json:"content_hash" doc:"sha256 открытого текста, hex"`
}

type pushHistoryOutput struct {
	Status int
	Body   HistoryPushResponse
}

// HistoryPushResponse: Inserted=false означает дубликат по content_hash
type HistoryPushResponse struct {
	Item     syncdata.HistoryItem `json:"item"`
	Inserted bool                 `json:"inserted"`
	Status   string               `json:"status"`
}

type deleteHistoryInput struct {
	ID        uuid.UUID `path:"id" doc:"ID элемента истории"`
	Timestamp int64     `query:"timestamp" doc:"Таймстемп удаления для tombstone, epoch millis"`
}

type deleteHistoryOutput struct {
	Body StatusResponse
}

type StatusResponse struct {
	Status string `json:"status"`
}
