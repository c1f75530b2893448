package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id для выведения ключа из короткого кода.
// Код всего шестизначный, поэтому KDF намеренно дорогой.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32

	linkSaltLen = 16
	codeDigits  = 6
)

// LinkPackage — то, что уходит на сервер при открытии сессии привязки.
// Сам код сервер не видит, только его хеш.
type LinkPackage struct {
	CodeHash     string // sha256 кода, hex
	Salt         string // base64
	EncryptedKey string // base64, мастер-ключ под ключом из кода
}

// GenerateCode возвращает криптографически случайный шестизначный код
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("ошибка генерации кода: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

// CodeHash — sha256 кода в hex, ключ сессии привязки на сервере
func CodeHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// deriveCodeKey выводит ключ обертки из кода и соли
func deriveCodeKey(code string, salt []byte) []byte {
	return argon2.IDKey([]byte(code), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// ExportForLink упаковывает мастер-ключ для передачи через сервер:
// генерирует соль, выводит ключ обертки из кода и шифрует им мастер-ключ
func (m *MasterKeyManager) ExportForLink(code string) (LinkPackage, error) {
	masterKey, err := m.Key()
	if err != nil {
		return LinkPackage{}, err
	}
	defer zeroBytes(masterKey)

	salt := make([]byte, linkSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return LinkPackage{}, fmt.Errorf("ошибка генерации соли: %w", err)
	}

	wrapKey := deriveCodeKey(code, salt)
	defer zeroBytes(wrapKey)

	encrypted, err := encryptWithKey(wrapKey, masterKey)
	if err != nil {
		return LinkPackage{}, fmt.Errorf("ошибка шифрования ключа: %w", err)
	}

	return LinkPackage{
		CodeHash:     CodeHash(code),
		Salt:         base64.StdEncoding.EncodeToString(salt),
		EncryptedKey: base64.StdEncoding.EncodeToString(encrypted),
	}, nil
}

// ImportFromLink расшифровывает полученный с сервера мастер-ключ
// и заменяет им локальный файл ключа
func (m *MasterKeyManager) ImportFromLink(code, saltB64, encryptedKeyB64 string) error {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return fmt.Errorf("ошибка декодирования соли: %w", err)
	}
	encrypted, err := base64.StdEncoding.DecodeString(encryptedKeyB64)
	if err != nil {
		return fmt.Errorf("ошибка декодирования ключа: %w", err)
	}

	wrapKey := deriveCodeKey(code, salt)
	defer zeroBytes(wrapKey)

	masterKey, err := decryptWithKey(wrapKey, encrypted)
	if err != nil {
		return fmt.Errorf("ошибка расшифровки мастер-ключа: %w", err)
	}
	defer zeroBytes(masterKey)

	return m.Replace(masterKey)
}
