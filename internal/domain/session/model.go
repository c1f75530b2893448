package session

import (
	"github.com/google/uuid"
)

// Identity — результат проверки bearer-токена: кто и с какого устройства.
// DeviceID равен uuid.Nil для токенов, выданных до регистрации устройства.
type Identity struct {
	UserID   uuid.UUID
	DeviceID uuid.UUID
}

// HasDevice сообщает, привязан ли токен к устройству
func (i Identity) HasDevice() bool {
	return i.DeviceID != uuid.Nil
}
