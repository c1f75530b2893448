package crypto

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *MasterKeyManager {
	t.Helper()
	m, err := NewMasterKeyManager(filepath.Join(t.TempDir(), "master.key"))
	require.NoError(t, err)
	require.NoError(t, m.Generate())
	return m
}

func TestMasterKey_GenerateAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.key")

	m, err := NewMasterKeyManager(path)
	require.NoError(t, err)
	assert.False(t, m.IsInitialized())

	require.NoError(t, m.Generate())
	assert.True(t, m.IsInitialized())

	key1, err := m.Key()
	require.NoError(t, err)
	assert.Len(t, key1, masterKeyLen)

	// Повторная генерация поверх существующего ключа запрещена
	assert.Error(t, m.Generate())

	// Второй менеджер читает тот же ключ из файла
	m2, err := NewMasterKeyManager(path)
	require.NoError(t, err)
	require.NoError(t, m2.Load())
	key2, err := m2.Key()
	require.NoError(t, err)
	assert.Equal(t, key1, key2)
}

func TestMasterKey_Lock(t *testing.T) {
	m := newTestManager(t)
	m.Lock()

	_, err := m.Key()
	assert.Error(t, err)

	// Файл остается, ключ можно загрузить снова
	require.NoError(t, m.Load())
	_, err = m.Key()
	assert.NoError(t, err)
}

func TestCipher_RoundTrip(t *testing.T) {
	c := NewCipher(newTestManager(t))

	blob, err := c.EncryptString("секретный текст буфера")
	require.NoError(t, err)
	assert.NotContains(t, blob, "секретный")

	plaintext, err := c.DecryptString(blob)
	require.NoError(t, err)
	assert.Equal(t, "секретный текст буфера", plaintext)
}

func TestCipher_NonceUnique(t *testing.T) {
	c := NewCipher(newTestManager(t))

	// Одинаковый текст дает разные шифротексты
	b1, err := c.EncryptString("same")
	require.NoError(t, err)
	b2, err := c.EncryptString("same")
	require.NoError(t, err)
	assert.NotEqual(t, b1, b2)
}

func TestCipher_WrongKeyFails(t *testing.T) {
	c1 := NewCipher(newTestManager(t))
	c2 := NewCipher(newTestManager(t))

	blob, err := c1.EncryptString("text")
	require.NoError(t, err)

	// Чужой ключ не проходит проверку GCM-тега
	_, err = c2.DecryptString(blob)
	assert.Error(t, err)
}

func TestContentHash_Deterministic(t *testing.T) {
	h1 := ContentHash("clipboard text")
	h2 := ContentHash("clipboard text")
	h3 := ContentHash("other text")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, codeDigits)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestLink_ExportImport(t *testing.T) {
	source := newTestManager(t)
	sourceKey, err := source.Key()
	require.NoError(t, err)

	code, err := GenerateCode()
	require.NoError(t, err)

	pkg, err := source.ExportForLink(code)
	require.NoError(t, err)
	assert.Equal(t, CodeHash(code), pkg.CodeHash)

	// Принимающее устройство со своим собственным ключом
	target := newTestManager(t)
	require.NoError(t, target.ImportFromLink(code, pkg.Salt, pkg.EncryptedKey))

	targetKey, err := target.Key()
	require.NoError(t, err)
	assert.Equal(t, sourceKey, targetKey)
}

func TestLink_WrongCodeFails(t *testing.T) {
	source := newTestManager(t)

	pkg, err := source.ExportForLink("123456")
	require.NoError(t, err)

	target := newTestManager(t)
	err = target.ImportFromLink("654321", pkg.Salt, pkg.EncryptedKey)
	assert.Error(t, err)
}
