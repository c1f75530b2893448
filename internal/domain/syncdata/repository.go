package syncdata

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// UpsertSlot вставляет или перезаписывает слот пользователя
	UpsertSlot(ctx context.Context, slot Slot) error

	// ListSlots возвращает все занятые слоты пользователя
	ListSlots(ctx context.Context, userID uuid.UUID) ([]Slot, error)

	// InsertHistory вставляет элемент истории.
	// Возвращает false без ошибки, если элемент с таким content_hash
	// у пользователя уже есть (дедупликация).
	InsertHistory(ctx context.Context, item HistoryItem) (bool, error)

	// ListHistory возвращает страницу истории, новые сначала
	ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]HistoryItem, error)

	// DeleteHistory удаляет элемент истории пользователя
	DeleteHistory(ctx context.Context, userID, itemID uuid.UUID) error
}
