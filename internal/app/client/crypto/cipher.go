package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// Cipher шифрует содержимое буфера мастер-ключом.
// Формат шифротекста: nonce || ciphertext (AES-256-GCM).
type Cipher struct {
	keys *MasterKeyManager
}

func NewCipher(keys *MasterKeyManager) *Cipher {
	return &Cipher{keys: keys}
}

// EncryptString шифрует открытый текст и возвращает base64-blob для релея
func (c *Cipher) EncryptString(plaintext string) (string, error) {
	key, err := c.keys.Key()
	if err != nil {
		return "", err
	}
	defer zeroBytes(key)

	ciphertext, err := encryptWithKey(key, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString расшифровывает base64-blob, полученный от релея
func (c *Cipher) DecryptString(blob string) (string, error) {
	key, err := c.keys.Key()
	if err != nil {
		return "", err
	}
	defer zeroBytes(key)

	ciphertext, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	plaintext, err := decryptWithKey(key, ciphertext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// ContentHash — sha256 открытого текста в hex.
// По нему релей дедуплицирует историю, не видя сам текст.
func ContentHash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// encryptWithKey шифрует данные с использованием AES-GCM
func encryptWithKey(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decryptWithKey расшифровывает данные с использованием AES-GCM
func decryptWithKey(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("шифротекст слишком короткий")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка расшифровки: %w", err)
	}

	return plaintext, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
