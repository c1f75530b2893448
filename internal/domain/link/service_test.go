package link

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, session Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockRepository) Consume(ctx context.Context, userID uuid.UUID, codeHash string) (Payload, error) {
	args := m.Called(ctx, userID, codeHash)
	return args.Get(0).(Payload), args.Error(1)
}

func (m *MockRepository) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testCodeHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.Default(), 5*time.Minute)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := uuid.New()
	codeHash := testCodeHash("123456")

	var saved Session
	mockRepo.On("DeleteExpired", mock.Anything).Return(nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("link.Session")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(Session)
		}).
		Return(nil)

	expiresAt, err := service.Create(context.Background(), userID, codeHash, "c2FsdA==", "a2V5")
	assert.NoError(t, err)
	assert.Equal(t, codeHash, saved.CodeHash)
	assert.Equal(t, userID, saved.UserID)
	assert.False(t, saved.Consumed)

	// TTL пять минут от момента создания
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 2*time.Second)
}

func TestService_Create_InvalidInput(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := uuid.New()

	tests := []struct {
		name     string
		codeHash string
		salt     string
		key      string
	}{
		{"короткий хеш", "abcd", "c2FsdA==", "a2V5"},
		{"не hex", testCodeHash("1")[:63] + "z", "c2FsdA==", "a2V5"},
		{"пустая соль", testCodeHash("123456"), "", "a2V5"},
		{"пустой ключ", testCodeHash("123456"), "c2FsdA==", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), userID, tt.codeHash, tt.salt, tt.key)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Redeem(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := uuid.New()
	codeHash := testCodeHash("654321")
	payload := Payload{Salt: "c2FsdA==", EncryptedKey: "a2V5"}

	mockRepo.On("Consume", mock.Anything, userID, codeHash).Return(payload, nil)

	got, err := service.Redeem(context.Background(), userID, codeHash)
	assert.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestService_Redeem_Invalid(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := uuid.New()
	codeHash := testCodeHash("000000")

	mockRepo.On("Consume", mock.Anything, userID, codeHash).
		Return(Payload{}, ErrCodeInvalid)

	// Неизвестный, просроченный и использованный код неразличимы
	_, err := service.Redeem(context.Background(), userID, codeHash)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestService_Redeem_MalformedHash(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	// Кривой хеш отбрасывается без похода в репозиторий
	_, err := service.Redeem(context.Background(), uuid.New(), "not-a-hash")
	assert.ErrorIs(t, err, ErrCodeInvalid)
	mockRepo.AssertNotCalled(t, "Consume")
}
