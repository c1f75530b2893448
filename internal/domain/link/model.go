package link

import (
	"time"

	"github.com/google/uuid"
)

// Session — одноразовая сессия передачи мастер-ключа между устройствами.
// Ключ зашифрован на клиенте ключом, выведенным из короткого кода;
// сервер хранит только sha256 кода и не может расшифровать содержимое.
type Session struct {
	CodeHash     string
	UserID       uuid.UUID
	Salt         string // base64
	EncryptedKey string // base64, nonce||ciphertext
	CreatedAt    time.Time
	ExpiresAt    time.Time
	Consumed     bool
}

// Payload — данные, возвращаемые при успешном обмене кода
type Payload struct {
	Salt         string `json:"salt"`
	EncryptedKey string `json:"encrypted_key"`
}
