package device

import (
	"time"

	"github.com/google/uuid"
)

// Device — зарегистрированное устройство пользователя.
// Устройства не удаляются автоматически, только явным отзывом.
type Device struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Kind      string    `json:"device_type"` // macos, windows, linux
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
}
