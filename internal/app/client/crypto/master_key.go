// Package crypto — криптографическая граница клиента. Все содержимое
// буфера шифруется здесь до того, как покинет машину; релей видит
// только непрозрачные blob-ы.
package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	masterKeyLen         = 32 // AES-256
	masterKeyPermissions = 0600
)

// MasterKeyManager хранит мастер-ключ устройства: 32 случайных байта
// в файле с правами 0600. Один и тот же ключ разделяется всеми
// устройствами пользователя через обмен кодом привязки.
type MasterKeyManager struct {
	keyPath   string
	masterKey []byte
	mu        sync.RWMutex
}

func NewMasterKeyManager(keyPath string) (*MasterKeyManager, error) {
	absPath, err := filepath.Abs(keyPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка определения пути: %w", err)
	}
	return &MasterKeyManager{keyPath: absPath}, nil
}

// Generate создает новый случайный мастер-ключ и сохраняет его в файл.
// Уже существующий ключ не перезаписывается.
func (m *MasterKeyManager) Generate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.keyPath); err == nil {
		return fmt.Errorf("мастер-ключ уже существует: %s", m.keyPath)
	}

	key := make([]byte, masterKeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return fmt.Errorf("ошибка генерации ключа: %w", err)
	}

	if err := os.WriteFile(m.keyPath, key, masterKeyPermissions); err != nil {
		return fmt.Errorf("ошибка записи файла ключа: %w", err)
	}

	m.masterKey = key
	return nil
}

// Load читает мастер-ключ из файла в память
func (m *MasterKeyManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, err := os.ReadFile(m.keyPath)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла ключа: %w", err)
	}
	if len(key) != masterKeyLen {
		return fmt.Errorf("неверная длина мастер-ключа: %d", len(key))
	}

	m.masterKey = key
	return nil
}

// IsInitialized сообщает, существует ли файл ключа
func (m *MasterKeyManager) IsInitialized() bool {
	_, err := os.Stat(m.keyPath)
	return err == nil
}

// Key возвращает копию ключа. Ключ должен быть загружен.
func (m *MasterKeyManager) Key() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.masterKey == nil {
		return nil, fmt.Errorf("мастер-ключ не загружен")
	}
	key := make([]byte, len(m.masterKey))
	copy(key, m.masterKey)
	return key, nil
}

// Replace записывает новый ключ поверх существующего файла.
// Используется при импорте ключа с другого устройства.
func (m *MasterKeyManager) Replace(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(key) != masterKeyLen {
		return fmt.Errorf("неверная длина мастер-ключа: %d", len(key))
	}
	if err := os.WriteFile(m.keyPath, key, masterKeyPermissions); err != nil {
		return fmt.Errorf("ошибка записи файла ключа: %w", err)
	}

	m.zero()
	m.masterKey = make([]byte, len(key))
	copy(m.masterKey, key)
	return nil
}

// Lock затирает ключ в памяти. Файл остается на месте.
func (m *MasterKeyManager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zero()
}

func (m *MasterKeyManager) zero() {
	for i := range m.masterKey {
		m.masterKey[i] = 0
	}
	m.masterKey = nil
}
