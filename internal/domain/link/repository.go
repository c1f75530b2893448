package link

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create сохраняет новую сессию обмена ключом
	Create(ctx context.Context, session Session) error

	// Consume атомарно помечает сессию использованной и возвращает
	// ее содержимое. ErrCodeInvalid, если код не найден, просрочен
	// или уже использован.
	Consume(ctx context.Context, userID uuid.UUID, codeHash string) (Payload, error)

	// DeleteExpired удаляет просроченные сессии
	DeleteExpired(ctx context.Context) error
}
