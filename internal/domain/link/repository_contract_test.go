package link

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository повторяет контракт SQL-хранилища сессий обмена:
// единственный атомарный consume c проверкой срока, использованности
// и принадлежности пользователю
type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (r *memoryRepository) Create(_ context.Context, session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := session
	r.sessions[session.CodeHash] = &s
	return nil
}

func (r *memoryRepository) Consume(_ context.Context, userID uuid.UUID, codeHash string) (Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[codeHash]
	if !ok || s.UserID != userID || s.Consumed || !s.ExpiresAt.After(r.now()) {
		return Payload{}, ErrCodeInvalid
	}
	s.Consumed = true
	return Payload{Salt: s.Salt, EncryptedKey: s.EncryptedKey}, nil
}

func (r *memoryRepository) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, s := range r.sessions {
		if s.Consumed || !s.ExpiresAt.After(r.now()) {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func TestLinkSession_SingleUse(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo)

	userID := uuid.New()
	codeHash := testCodeHash("123456")

	_, err := service.Create(context.Background(), userID, codeHash, "c2FsdA==", "a2V5")
	require.NoError(t, err)

	payload, err := service.Redeem(context.Background(), userID, codeHash)
	require.NoError(t, err)
	assert.Equal(t, "c2FsdA==", payload.Salt)
	assert.Equal(t, "a2V5", payload.EncryptedKey)

	// Повторное использование того же кода
	_, err = service.Redeem(context.Background(), userID, codeHash)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestLinkSession_ConcurrentRedeemSingleWinner(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo)

	userID := uuid.New()
	codeHash := testCodeHash("654321")

	_, err := service.Create(context.Background(), userID, codeHash, "c2FsdA==", "a2V5")
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Redeem(context.Background(), userID, codeHash)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// Код достается ровно одному устройству
	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrCodeInvalid)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestLinkSession_Expiry(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo)

	userID := uuid.New()
	codeHash := testCodeHash("111111")

	expiresAt, err := service.Create(context.Background(), userID, codeHash, "c2FsdA==", "a2V5")
	require.NoError(t, err)

	// До истечения срока код работает, после — нет
	repo.now = func() time.Time { return expiresAt.Add(time.Second) }
	_, err = service.Redeem(context.Background(), userID, codeHash)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestLinkSession_ScopedToUser(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo)

	owner := uuid.New()
	codeHash := testCodeHash("222222")

	_, err := service.Create(context.Background(), owner, codeHash, "c2FsdA==", "a2V5")
	require.NoError(t, err)

	// Чужой пользователь получает тот же общий отказ и не сжигает код
	_, err = service.Redeem(context.Background(), uuid.New(), codeHash)
	assert.ErrorIs(t, err, ErrCodeInvalid)

	_, err = service.Redeem(context.Background(), owner, codeHash)
	assert.NoError(t, err)
}

func TestLinkSession_ExpiredCleanedUpOnCreate(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo)

	userID := uuid.New()
	staleHash := testCodeHash("333333")

	expiresAt, err := service.Create(context.Background(), userID, staleHash, "c2FsdA==", "a2V5")
	require.NoError(t, err)

	// Следующее создание сессии попутно вычищает просроченные
	repo.now = func() time.Time { return expiresAt.Add(time.Second) }
	_, err = service.Create(context.Background(), userID, testCodeHash("444444"), "c2FsdA==", "a2V5")
	require.NoError(t, err)

	repo.mu.Lock()
	_, exists := repo.sessions[staleHash]
	repo.mu.Unlock()
	assert.False(t, exists)
}
