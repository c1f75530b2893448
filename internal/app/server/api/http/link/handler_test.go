package link

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/link"
	"clipsync/internal/domain/session"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID uuid.UUID, codeHash, salt, encryptedKey string) (time.Time, error) {
	args := m.Called(ctx, userID, codeHash, salt, encryptedKey)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockService) Redeem(ctx context.Context, userID uuid.UUID, codeHash string) (link.Payload, error) {
	args := m.Called(ctx, userID, codeHash)
	return args.Get(0).(link.Payload), args.Error(1)
}

func authedCtx(userID uuid.UUID) context.Context {
	return auth.WithIdentity(context.Background(), session.Identity{UserID: userID})
}

func testHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func TestHandler_create(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, slog.Default(), huma.Middlewares{})

	userID := uuid.New()
	codeHash := testHash("123456")
	expiresAt := time.Now().Add(5 * time.Minute)

	mockService.On("Create", mock.Anything, userID, codeHash, "c2FsdA==", "a2V5").
		Return(expiresAt, nil)

	output, err := handler.create(authedCtx(userID), &createInput{
		Body: CreateRequest{CodeHash: codeHash, Salt: "c2FsdA==", EncryptedKey: "a2V5"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", output.Body.Status)
	assert.Equal(t, expiresAt, output.Body.ExpiresAt)
}

func TestHandler_create_Unauthorized(t *testing.T) {
	handler := NewHandler(new(MockService), slog.Default(), huma.Middlewares{})

	_, err := handler.create(context.Background(), &createInput{})
	assert.Error(t, err)
}

func TestHandler_redeem_InvalidCode(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, slog.Default(), huma.Middlewares{})

	userID := uuid.New()
	codeHash := testHash("000000")

	mockService.On("Redeem", mock.Anything, userID, codeHash).
		Return(link.Payload{}, link.ErrCodeInvalid)

	_, err := handler.redeem(authedCtx(userID), &redeemInput{
		Body: RedeemRequest{CodeHash: codeHash},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired code")
}

func TestHandler_redeem_RateLimited(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, slog.Default(), huma.Middlewares{})

	userID := uuid.New()
	codeHash := testHash("111111")

	mockService.On("Redeem", mock.Anything, userID, codeHash).
		Return(link.Payload{}, link.ErrCodeInvalid)

	// Выбираем burst и упираемся в лимит
	var limited bool
	for i := 0; i < redeemBurst+1; i++ {
		_, err := handler.redeem(authedCtx(userID), &redeemInput{
			Body: RedeemRequest{CodeHash: codeHash},
		})
		if err != nil && err.Error() != "Invalid or expired code" {
			limited = true
		}
	}
	assert.True(t, limited)

	// Лимит у каждого пользователя свой
	otherUser := uuid.New()
	mockService.On("Redeem", mock.Anything, otherUser, codeHash).
		Return(link.Payload{Salt: "c2FsdA==", EncryptedKey: "a2V5"}, nil)

	output, err := handler.redeem(authedCtx(otherUser), &redeemInput{
		Body: RedeemRequest{CodeHash: codeHash},
	})
	assert.NoError(t, err)
	assert.Equal(t, "a2V5", output.Body.EncryptedKey)
}
